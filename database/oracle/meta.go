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
	"fmt"

	"github.com/wentaojin/verifydb/common"
)

// 获取数据库版本
func (o *Oracle) GetOracleDBVersion() (string, error) {
	querySQL := `SELECT VALUE FROM NLS_DATABASE_PARAMETERS WHERE PARAMETER = 'NLS_RDBMS_VERSION'`
	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return "", err
	}
	if len(res) == 0 {
		return "", fmt.Errorf("oracle database version query returned no rows")
	}
	return res[0]["VALUE"], nil
}

// 获取 schema 下所有表，格式 OWNER.TABLE_NAME
func (o *Oracle) GetSchemaTables(schemaName string) ([]string, error) {
	querySQL := fmt.Sprintf(`SELECT OWNER || '.' || TABLE_NAME AS TABLE_FULL_NAME
  FROM DBA_TABLES
 WHERE OWNER = '%s'
 ORDER BY OWNER, TABLE_NAME`, common.StringUPPER(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, r := range res {
		tables = append(tables, r["TABLE_FULL_NAME"])
	}
	return tables, nil
}

// 按统计信息行数降序排序表，NUM_ROWS 为空按 0 排序，DBA_TABLES 中不存在的表不在结果中
func (o *Oracle) GetTablesOrderedByNumRows(qualifiedTables []string) ([]string, error) {
	if len(qualifiedTables) == 0 {
		return nil, nil
	}
	querySQL := fmt.Sprintf(`SELECT OWNER || '.' || TABLE_NAME AS TABLE_FULL_NAME
  FROM DBA_TABLES
 WHERE OWNER || '.' || TABLE_NAME IN (%s)
 ORDER BY NVL(NUM_ROWS, 0) DESC`, common.StringArrayToCapitalChar(qualifiedTables))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, r := range res {
		tables = append(tables, r["TABLE_FULL_NAME"])
	}
	return tables, nil
}
