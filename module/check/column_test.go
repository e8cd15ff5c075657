package check

import (
	"strings"
	"testing"

	"github.com/wentaojin/verifydb/database/oracle"
)

func TestKindFromTypeCode(t *testing.T) {
	type args struct {
		typeCode int
	}
	tests := []struct {
		name string
		args args
		want ColumnKind
	}{
		{name: "number", args: args{typeCode: 2}, want: ColumnKindNumeric},
		{name: "varchar2", args: args{typeCode: 1}, want: ColumnKindCharVar},
		{name: "char", args: args{typeCode: 96}, want: ColumnKindCharFixed},
		{name: "date", args: args{typeCode: 12}, want: ColumnKindDate},
		{name: "timestamp", args: args{typeCode: 180}, want: ColumnKindTimestamp},
		{name: "timestamp tz", args: args{typeCode: 181}, want: ColumnKindTimestampTZ},
		{name: "timestamp local tz", args: args{typeCode: 231}, want: ColumnKindTimestampLocalTZ},
		{name: "binary float", args: args{typeCode: 100}, want: ColumnKindBinaryFloat},
		{name: "binary double", args: args{typeCode: 101}, want: ColumnKindBinaryDouble},
		{name: "raw excluded", args: args{typeCode: 23}, want: ColumnKindExcluded},
		{name: "long raw excluded", args: args{typeCode: 24}, want: ColumnKindExcluded},
		{name: "long excluded", args: args{typeCode: 8}, want: ColumnKindExcluded},
		{name: "clob excluded", args: args{typeCode: 112}, want: ColumnKindExcluded},
		{name: "blob excluded", args: args{typeCode: 113}, want: ColumnKindExcluded},
		{name: "bfile excluded", args: args{typeCode: 114}, want: ColumnKindExcluded},
		{name: "mlslabel excluded", args: args{typeCode: 106}, want: ColumnKindExcluded},
		{name: "user defined excluded", args: args{typeCode: 109}, want: ColumnKindExcluded},
		{name: "ref excluded", args: args{typeCode: 111}, want: ColumnKindExcluded},
		{name: "interval ym excluded", args: args{typeCode: 182}, want: ColumnKindExcluded},
		{name: "interval ds excluded", args: args{typeCode: 183}, want: ColumnKindExcluded},
		{name: "urowid excluded", args: args{typeCode: 208}, want: ColumnKindExcluded},
		{name: "unknown passes through", args: args{typeCode: 11}, want: ColumnKindCharVar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindFromTypeCode(tt.args.typeCode); got != tt.want {
				t.Errorf("KindFromTypeCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalExprPair(t *testing.T) {
	type args struct {
		kind       ColumnKind
		columnName string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "numeric",
			args: args{kind: ColumnKindNumeric, columnName: "AMOUNT"},
			want: "to_char(AMOUNT,'fm99999999999999999999999999999.00000000')",
		},
		{
			name: "binary double",
			args: args{kind: ColumnKindBinaryDouble, columnName: "RATIO"},
			want: "to_char(RATIO,'fm99999999999999999999999999999.00000000')",
		},
		{
			name: "date padded to microseconds",
			args: args{kind: ColumnKindDate, columnName: "CREATED"},
			want: "to_char(CREATED,'yyyymmddhh24miss')||'000000'",
		},
		{
			name: "timestamp",
			args: args{kind: ColumnKindTimestamp, columnName: "UPDATED"},
			want: "to_char(UPDATED,'yyyymmddhh24missff6')",
		},
		{
			name: "fixed char trimmed",
			args: args{kind: ColumnKindCharFixed, columnName: "CODE"},
			want: "rtrim(CODE)",
		},
		{
			name: "varchar identity",
			args: args{kind: ColumnKindCharVar, columnName: "NAME"},
			want: "NAME",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, tgt := CanonicalExprPair(tt.args.kind, tt.args.columnName)
			if src != tt.want {
				t.Errorf("CanonicalExprPair() src = %v, want %v", src, tt.want)
			}
			// 两侧方言当前共享同一写法
			if src != tgt {
				t.Errorf("CanonicalExprPair() src/tgt diverge: %v vs %v", src, tgt)
			}
		})
	}
}

func TestBuildProjection(t *testing.T) {
	type args struct {
		descs []oracle.ColumnDesc
	}
	tests := []struct {
		name         string
		args         args
		wantSrc      string
		wantExcluded []string
	}{
		{
			name: "mixed kinds with exclusion",
			args: args{descs: []oracle.ColumnDesc{
				{Name: "ID", TypeCode: 2},
				{Name: "NAME", TypeCode: 1},
				{Name: "PAYLOAD", TypeCode: 113},
			}},
			wantSrc:      `to_char(ID,'fm99999999999999999999999999999.00000000') AS "ID",NAME AS "NAME"`,
			wantExcluded: []string{"PAYLOAD"},
		},
		{
			name: "all excluded yields empty projection",
			args: args{descs: []oracle.ColumnDesc{
				{Name: "LOB1", TypeCode: 112},
				{Name: "LOB2", TypeCode: 113},
			}},
			wantSrc:      "",
			wantExcluded: []string{"LOB1", "LOB2"},
		},
		{
			name: "case preserved in alias",
			args: args{descs: []oracle.ColumnDesc{
				{Name: "MixedCase", TypeCode: 1},
			}},
			wantSrc: `MixedCase AS "MixedCase"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, tgt, excluded := BuildProjection(tt.args.descs)
			if src != tt.wantSrc {
				t.Errorf("BuildProjection() src = %v, want %v", src, tt.wantSrc)
			}
			if src != tgt {
				t.Errorf("BuildProjection() src/tgt diverge: %v vs %v", src, tgt)
			}
			if strings.Join(excluded, ",") != strings.Join(tt.wantExcluded, ",") {
				t.Errorf("BuildProjection() excluded = %v, want %v", excluded, tt.wantExcluded)
			}
		})
	}
}
