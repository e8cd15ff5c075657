package common

import (
	"sort"
	"strings"
	"testing"
)

func TestCompactSQL(t *testing.T) {
	type args struct {
		sqlText string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "multiline",
			args: args{sqlText: "select count(1) as cnt,\n       sum(x) as cksum\n  from t"},
			want: "select count(1) as cnt, sum(x) as cksum from t",
		},
		{
			name: "tabs and spaces",
			args: args{sqlText: "\tselect\t1   from\tdual  "},
			want: "select 1 from dual",
		},
		{
			name: "already compact",
			args: args{sqlText: "select 1 from dual"},
			want: "select 1 from dual",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompactSQL(tt.args.sqlText); got != tt.want {
				t.Errorf("CompactSQL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterDifferenceStringItems(t *testing.T) {
	type args struct {
		originItems  []string
		excludeItems []string
	}
	tests := []struct {
		name string
		args args
		want []string
	}{
		{
			name: "case insensitive exclude",
			args: args{
				originItems:  []string{"marvin.t1", "MARVIN.T2"},
				excludeItems: []string{"Marvin.T1"},
			},
			want: []string{"MARVIN.T2"},
		},
		{
			name: "no exclude",
			args: args{
				originItems:  []string{"A.B"},
				excludeItems: nil,
			},
			want: []string{"A.B"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDifferenceStringItems(tt.args.originItems, tt.args.excludeItems)
			sort.Strings(got)
			sort.Strings(tt.want)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("FilterDifferenceStringItems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsContainString(t *testing.T) {
	type args struct {
		items []string
		item  string
	}
	tests := []struct {
		name string
		args args
		want bool
	}{
		{
			args: args{items: []string{"a", "b"}, item: "b"},
			want: true,
		},
		{
			args: args{items: []string{"a", "b"}, item: "B"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsContainString(tt.args.items, tt.args.item); got != tt.want {
				t.Errorf("IsContainString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkCompactSQL(b *testing.B) {
	sqlText := "select count(1) as cnt,\n       sum(x) as cksum\n  from (select md5(row_to_json(t)::text) a\n          from t)"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		CompactSQL(sqlText)
	}
}
