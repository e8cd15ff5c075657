/*
Copyright © 2020 Marvin

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package oracle

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// DBMS_SQL 字段元信息，col_type 是 DBMS_SQL describe_columns 返回的类型代码
type ColumnDesc struct {
	Name     string
	TypeCode int
}

// 记录分隔符 chr(30) / 字段分隔符 chr(31)，避免与字段名冲突
const (
	descRecordSep = "\x1e"
	descFieldSep  = "\x1f"
)

// 查询仅 parse + describe_columns，不 execute
const describeColumnsPLSQL = `DECLARE
  l_cursor INTEGER;
  l_count  INTEGER;
  l_desc   DBMS_SQL.DESC_TAB;
  l_result VARCHAR2(32767);
BEGIN
  l_cursor := DBMS_SQL.OPEN_CURSOR;
  DBMS_SQL.PARSE(l_cursor, :1, DBMS_SQL.NATIVE);
  DBMS_SQL.DESCRIBE_COLUMNS(l_cursor, l_count, l_desc);
  FOR i IN 1 .. l_count LOOP
    IF i > 1 THEN
      l_result := l_result || CHR(30);
    END IF;
    l_result := l_result || l_desc(i).col_name || CHR(31) || TO_CHAR(l_desc(i).col_type);
  END LOOP;
  DBMS_SQL.CLOSE_CURSOR(l_cursor);
  :2 := l_result;
EXCEPTION
  WHEN OTHERS THEN
    IF DBMS_SQL.IS_OPEN(l_cursor) THEN
      DBMS_SQL.CLOSE_CURSOR(l_cursor);
    END IF;
    RAISE;
END;`

// 通过 DBMS_SQL 描述查询字段名以及类型代码，查询不执行
func (o *Oracle) DescribeQueryColumns(querySQL string) ([]ColumnDesc, error) {
	var out string
	_, err := o.OracleDB.ExecContext(o.Ctx, describeColumnsPLSQL, querySQL, sql.Out{Dest: &out})
	if err != nil {
		return nil, fmt.Errorf("oracle dbms_sql describe columns failed: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}

	var descs []ColumnDesc
	for _, record := range strings.Split(out, descRecordSep) {
		fields := strings.SplitN(record, descFieldSep, 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("oracle dbms_sql describe columns malformed record [%q]", record)
		}
		typeCode, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("oracle dbms_sql describe columns type code parse failed [%q]: %v", record, err)
		}
		descs = append(descs, ColumnDesc{
			Name:     fields[0],
			TypeCode: typeCode,
		})
	}
	return descs, nil
}
