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
package check

import (
	"strings"

	"github.com/wentaojin/verifydb/common"
	"github.com/wentaojin/verifydb/database/oracle"
)

// 字段类型归类，依据 DBMS_SQL describe_columns 返回的类型代码
type ColumnKind int

const (
	ColumnKindNumeric ColumnKind = iota
	ColumnKindCharFixed
	ColumnKindCharVar
	ColumnKindDate
	ColumnKindTimestamp
	ColumnKindTimestampTZ
	ColumnKindTimestampLocalTZ
	ColumnKindBinaryFloat
	ColumnKindBinaryDouble
	ColumnKindExcluded
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnKindNumeric:
		return "NUMERIC"
	case ColumnKindCharFixed:
		return "CHAR_FIXED"
	case ColumnKindCharVar:
		return "CHAR_VAR"
	case ColumnKindDate:
		return "DATE"
	case ColumnKindTimestamp:
		return "TIMESTAMP"
	case ColumnKindTimestampTZ:
		return "TIMESTAMP_TZ"
	case ColumnKindTimestampLocalTZ:
		return "TIMESTAMP_LOCAL_TZ"
	case ColumnKindBinaryFloat:
		return "BINARY_FLOAT"
	case ColumnKindBinaryDouble:
		return "BINARY_DOUBLE"
	case ColumnKindExcluded:
		return "EXCLUDED"
	default:
		return "UNKNOWN"
	}
}

// DBMS_SQL 类型代码
const (
	oraTypeVarchar2     = 1
	oraTypeNumber       = 2
	oraTypeLong         = 8
	oraTypeDate         = 12
	oraTypeRaw          = 23
	oraTypeLongRaw      = 24
	oraTypeChar         = 96
	oraTypeBinaryFloat  = 100
	oraTypeBinaryDouble = 101
	oraTypeMLSLabel     = 106
	oraTypeUserDefined  = 109
	oraTypeRef          = 111
	oraTypeClob         = 112
	oraTypeBlob         = 113
	oraTypeBFile        = 114
	oraTypeTimestamp    = 180
	oraTypeTimestampTZ  = 181
	oraTypeIntervalYM   = 182
	oraTypeIntervalDS   = 183
	oraTypeUrowid       = 208
	oraTypeTimestampLTZ = 231
)

// 类型代码归类，大对象/二进制/区间等不可比对类型排除
func KindFromTypeCode(typeCode int) ColumnKind {
	switch typeCode {
	case oraTypeNumber:
		return ColumnKindNumeric
	case oraTypeBinaryFloat:
		return ColumnKindBinaryFloat
	case oraTypeBinaryDouble:
		return ColumnKindBinaryDouble
	case oraTypeDate:
		return ColumnKindDate
	case oraTypeTimestamp:
		return ColumnKindTimestamp
	case oraTypeTimestampTZ:
		return ColumnKindTimestampTZ
	case oraTypeTimestampLTZ:
		return ColumnKindTimestampLocalTZ
	case oraTypeChar:
		return ColumnKindCharFixed
	case oraTypeVarchar2:
		return ColumnKindCharVar
	case oraTypeRaw, oraTypeLongRaw, oraTypeLong, oraTypeMLSLabel, oraTypeUserDefined,
		oraTypeRef, oraTypeClob, oraTypeBlob, oraTypeBFile,
		oraTypeIntervalYM, oraTypeIntervalDS, oraTypeUrowid:
		return ColumnKindExcluded
	default:
		// 其余类型按字符原样参与比对
		return ColumnKindCharVar
	}
}

const (
	numericFormatMask   = "fm99999999999999999999999999999.00000000"
	dateFormatMask      = "yyyymmddhh24miss"
	timestampFormatMask = "yyyymmddhh24missff6"
)

// 字段规范化表达式，两侧方言均接受相同写法，保留成对返回以便单侧调整
func CanonicalExprPair(kind ColumnKind, columnName string) (string, string) {
	var expr string
	switch kind {
	case ColumnKindNumeric, ColumnKindBinaryFloat, ColumnKindBinaryDouble:
		expr = common.StringsBuilder("to_char(", columnName, ",'", numericFormatMask, "')")
	case ColumnKindDate:
		expr = common.StringsBuilder("to_char(", columnName, ",'", dateFormatMask, "')||'000000'")
	case ColumnKindTimestamp, ColumnKindTimestampTZ, ColumnKindTimestampLocalTZ:
		expr = common.StringsBuilder("to_char(", columnName, ",'", timestampFormatMask, "')")
	case ColumnKindCharFixed:
		expr = common.StringsBuilder("rtrim(", columnName, ")")
	default:
		expr = columnName
	}
	return expr, expr
}

// 构造两侧投影列表，排除不可比对字段
func BuildProjection(descs []oracle.ColumnDesc) (srcProj, tgtProj string, excluded []string) {
	var srcExprs, tgtExprs []string
	for _, d := range descs {
		kind := KindFromTypeCode(d.TypeCode)
		if kind == ColumnKindExcluded {
			excluded = append(excluded, d.Name)
			continue
		}
		srcExpr, tgtExpr := CanonicalExprPair(kind, d.Name)
		// 别名双引号保留原字段名大小写，两侧 JSON 键一致，字段名内嵌引号剔除
		alias := common.StringsBuilder(" AS \"", common.ReplaceSpecifiedString(d.Name, "\"", ""), "\"")
		srcExprs = append(srcExprs, common.StringsBuilder(srcExpr, alias))
		tgtExprs = append(tgtExprs, common.StringsBuilder(tgtExpr, alias))
	}
	return strings.Join(srcExprs, ","), strings.Join(tgtExprs, ","), excluded
}
