package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wentaojin/verifydb/common"
)

func TestClassify(t *testing.T) {
	plan := &Plan{
		Keys: []string{"TABLE:A.T1", "TABLE:A.T2", "TABLE:A.T3", "TABLE:A.T4", "CUSTOM:bad"},
		SynthesisErrors: map[string]string{
			"CUSTOM:bad": "synthesis failed [EMPTY_PROJECTION]",
		},
	}
	rs := NewResultSet()
	rs.SrcResults["TABLE:A.T1"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.TgtResults["TABLE:A.T1"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.SrcResults["TABLE:A.T2"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.TgtResults["TABLE:A.T2"] = ChecksumResult{Count: 4, Checksum: decimal.NewFromInt(90)}
	rs.SrcResults["TABLE:A.T3"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.Errors["TABLE:A.T3_TGT"] = "connection refused"
	rs.SrcResults["TABLE:A.T4"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.TgtResults["TABLE:A.T4"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(101)}

	type args struct {
		key string
	}
	tests := []struct {
		name           string
		args           args
		want           string
		wantDivergence int
	}{
		{name: "pass", args: args{key: "TABLE:A.T1"}, want: common.TaskStatusPass},
		{name: "inconsistent count and checksum", args: args{key: "TABLE:A.T2"}, want: common.TaskStatusFailInconsistent, wantDivergence: 2},
		{name: "execution failure wins over comparison", args: args{key: "TABLE:A.T3"}, want: common.TaskStatusFailExecution},
		{name: "checksum only mismatch", args: args{key: "TABLE:A.T4"}, want: common.TaskStatusFailInconsistent, wantDivergence: 1},
		{name: "synthesis failure wins", args: args{key: "CUSTOM:bad"}, want: common.TaskStatusFailSynthesis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(plan, rs, tt.args.key)
			if outcome.Status != tt.want {
				t.Errorf("Classify() = %v, want %v", outcome.Status, tt.want)
			}
			if len(outcome.Divergence) != tt.wantDivergence {
				t.Errorf("Classify() divergence = %v, want %d items", outcome.Divergence, tt.wantDivergence)
			}
		})
	}
}

func TestClassifyCountMismatchMessage(t *testing.T) {
	plan := &Plan{Keys: []string{"TABLE:A.T1"}, SynthesisErrors: map[string]string{}}
	rs := NewResultSet()
	rs.SrcResults["TABLE:A.T1"] = ChecksumResult{Count: 7, Checksum: decimal.Zero}
	rs.TgtResults["TABLE:A.T1"] = ChecksumResult{Count: 3, Checksum: decimal.Zero}

	outcome := Classify(plan, rs, "TABLE:A.T1")
	if outcome.Status != common.TaskStatusFailInconsistent {
		t.Fatalf("Classify() = %v, want %v", outcome.Status, common.TaskStatusFailInconsistent)
	}
	if len(outcome.Divergence) != 1 {
		t.Fatalf("Classify() divergence = %v, want 1 item", outcome.Divergence)
	}
	if !strings.Contains(outcome.Divergence[0], "source=7") || !strings.Contains(outcome.Divergence[0], "target=3") {
		t.Errorf("divergence message = %v, want both side counts", outcome.Divergence[0])
	}
}

func TestReporterReport(t *testing.T) {
	dir := t.TempDir()

	plan := &Plan{
		Keys: []string{"TABLE:A.T1", "TABLE:A.T2", "CUSTOM:monthly"},
		Tasks: []*CheckTask{
			{
				Key:             "TABLE:A.T1",
				SrcSQL:          "select count(1) as cnt\n  from a.t1",
				TgtSQL:          "select count(1) as cnt\n  from a_pg.t1",
				ExcludedColumns: []string{"DOC"},
			},
			{
				Key:    "TABLE:A.T2",
				SrcSQL: "select 1 from a.t2",
				TgtSQL: "select 1 from a_pg.t2",
			},
		},
		SynthesisErrors: map[string]string{
			"CUSTOM:monthly": "synthesis failed [DESCRIBE_FAILED]: ORA-00904",
		},
	}

	rs := NewResultSet()
	rs.SrcResults["TABLE:A.T1"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.TgtResults["TABLE:A.T1"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.SrcResults["TABLE:A.T2"] = ChecksumResult{Count: 5, Checksum: decimal.NewFromInt(100)}
	rs.TgtResults["TABLE:A.T2"] = ChecksumResult{Count: 6, Checksum: decimal.NewFromInt(101)}

	r := NewReporter(dir)
	detailPath, summaryPath, err := r.Report(plan, rs)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	detail, err := os.ReadFile(detailPath)
	if err != nil {
		t.Fatalf("read detail report failed: %v", err)
	}
	detailText := string(detail)

	// 每个任务标识在明细报告出现且仅出现一次
	for _, key := range plan.Keys {
		if got := strings.Count(detailText, "task:   "+key+"\n"); got != 1 {
			t.Errorf("detail report task %s blocks = %d, want 1", key, got)
		}
	}
	// SQL 输出压缩为单行
	if !strings.Contains(detailText, "select count(1) as cnt from a.t1") {
		t.Errorf("detail report missing compacted source sql:\n%s", detailText)
	}
	if !strings.Contains(detailText, "excluded columns: DOC") {
		t.Errorf("detail report missing excluded columns")
	}
	if !strings.Contains(detailText, common.TaskStatusFailInconsistent) {
		t.Errorf("detail report missing inconsistent status")
	}
	if !strings.Contains(detailText, "ORA-00904") {
		t.Errorf("detail report missing synthesis error text")
	}

	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read summary report failed: %v", err)
	}
	summaryText := string(summary)

	// 合成失败计入总数，一致率分母剔除合成失败项：1 PASS / 2 checked
	if !strings.Contains(summaryText, "total configured items: 3") {
		t.Errorf("summary report missing total:\n%s", summaryText)
	}
	if !strings.Contains(summaryText, "consistency rate: 50.00%") {
		t.Errorf("summary report missing consistency rate:\n%s", summaryText)
	}
	if !strings.Contains(summaryText, common.TaskStatusFailSynthesis+": 1") {
		t.Errorf("summary report missing synthesis failure count")
	}
	if !strings.Contains(summaryText, "- CUSTOM:monthly") {
		t.Errorf("summary report missing synthesis failure list entry")
	}

	for _, p := range []string{detailPath, summaryPath} {
		if filepath.Dir(p) != dir {
			t.Errorf("report path %s not under %s", p, dir)
		}
	}
}

func TestReporterAllSynthesisFailed(t *testing.T) {
	dir := t.TempDir()
	plan := &Plan{
		Keys: []string{"CUSTOM:only"},
		SynthesisErrors: map[string]string{
			"CUSTOM:only": "synthesis failed [EMPTY_PROJECTION]",
		},
	}
	r := NewReporter(dir)
	_, summaryPath, err := r.Report(plan, NewResultSet())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read summary report failed: %v", err)
	}
	if !strings.Contains(string(summary), "consistency rate: N/A") {
		t.Errorf("summary report rate = %s, want N/A", string(summary))
	}
}
