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
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/wentaojin/verifydb/common"
	"go.uber.org/zap"
)

// 任务比对结论
type TaskOutcome struct {
	Key        string
	Status     string
	Divergence []string
}

type Reporter struct {
	ReportDir string
	RunID     string
}

func NewReporter(reportDir string) *Reporter {
	return &Reporter{
		ReportDir: reportDir,
		RunID:     uuid.New().String(),
	}
}

// 任务状态判定：合成失败 -> 执行失败 -> 比对
func Classify(plan *Plan, rs *ResultSet, key string) TaskOutcome {
	outcome := TaskOutcome{Key: key}
	if _, ok := plan.SynthesisErrors[key]; ok {
		outcome.Status = common.TaskStatusFailSynthesis
		return outcome
	}
	_, srcErr := rs.Errors[common.StringsBuilder(key, common.TaskErrorSuffixSource)]
	_, tgtErr := rs.Errors[common.StringsBuilder(key, common.TaskErrorSuffixTarget)]
	if srcErr || tgtErr {
		outcome.Status = common.TaskStatusFailExecution
		return outcome
	}

	srcRes := rs.SrcResults[key]
	tgtRes := rs.TgtResults[key]
	if srcRes.Count != tgtRes.Count {
		outcome.Divergence = append(outcome.Divergence,
			fmt.Sprintf("row count mismatch: source=%d target=%d", srcRes.Count, tgtRes.Count))
	}
	if !srcRes.Checksum.Equal(tgtRes.Checksum) {
		outcome.Divergence = append(outcome.Divergence,
			fmt.Sprintf("checksum mismatch: source=%s target=%s", srcRes.Checksum.String(), tgtRes.Checksum.String()))
	}
	if len(outcome.Divergence) > 0 {
		outcome.Status = common.TaskStatusFailInconsistent
		return outcome
	}
	outcome.Status = common.TaskStatusPass
	return outcome
}

// 输出明细以及汇总报告，返回两个报告文件路径
func (r *Reporter) Report(plan *Plan, rs *ResultSet) (string, string, error) {
	if err := common.PathExist(r.ReportDir); err != nil {
		return "", "", err
	}
	ts := time.Now().Format(common.ReportTimestampLayout)
	detailPath := filepath.Join(r.ReportDir,
		common.StringsBuilder(common.DetailReportPrefix, ts, common.ReportFileSuffix))
	summaryPath := filepath.Join(r.ReportDir,
		common.StringsBuilder(common.SummaryReportPrefix, ts, common.ReportFileSuffix))

	taskByKey := make(map[string]*CheckTask, len(plan.Tasks))
	for _, t := range plan.Tasks {
		taskByKey[t.Key] = t
	}

	outcomes := make([]TaskOutcome, 0, len(plan.Keys))
	for _, key := range plan.Keys {
		outcomes = append(outcomes, Classify(plan, rs, key))
	}

	if err := r.writeDetail(detailPath, plan, rs, taskByKey, outcomes); err != nil {
		return "", "", err
	}
	if err := r.writeSummary(summaryPath, plan, outcomes); err != nil {
		return "", "", err
	}

	zap.L().Info("check report generated",
		zap.String("run", r.RunID),
		zap.String("detail", detailPath),
		zap.String("summary", summaryPath))
	return detailPath, summaryPath, nil
}

func (r *Reporter) writeDetail(detailPath string, plan *Plan, rs *ResultSet, taskByKey map[string]*CheckTask, outcomes []TaskOutcome) error {
	fw, err := NewWriter(detailPath)
	if err != nil {
		return err
	}
	defer fw.Close()

	writeLine := func(format string, args ...interface{}) error {
		_, err := fw.CWriteFile(fmt.Sprintf(format+"\n", args...))
		return err
	}

	if err := writeLine("verifydb check detail report"); err != nil {
		return err
	}
	if err := writeLine("run id: %s", r.RunID); err != nil {
		return err
	}
	if err := writeLine("generated at: %s", time.Now().Format("2006-01-02 15:04:05")); err != nil {
		return err
	}

	for _, outcome := range outcomes {
		if err := writeLine("\n%s", strings.Repeat("=", 100)); err != nil {
			return err
		}
		if err := writeLine("task:   %s", outcome.Key); err != nil {
			return err
		}
		if err := writeLine("status: %s", outcome.Status); err != nil {
			return err
		}

		if outcome.Status == common.TaskStatusFailSynthesis {
			if err := writeLine("error:  %s", plan.SynthesisErrors[outcome.Key]); err != nil {
				return err
			}
			continue
		}

		task := taskByKey[outcome.Key]
		if task == nil {
			continue
		}
		if err := writeLine("source sql: %s", common.CompactSQL(task.SrcSQL)); err != nil {
			return err
		}
		if err := writeLine("target sql: %s", common.CompactSQL(task.TgtSQL)); err != nil {
			return err
		}
		if len(task.ExcludedColumns) > 0 {
			if err := writeLine("excluded columns: %s", strings.Join(task.ExcludedColumns, ",")); err != nil {
				return err
			}
		}

		srcErrKey := common.StringsBuilder(outcome.Key, common.TaskErrorSuffixSource)
		tgtErrKey := common.StringsBuilder(outcome.Key, common.TaskErrorSuffixTarget)
		if msg, ok := rs.Errors[srcErrKey]; ok {
			if err := writeLine("source error: %s", msg); err != nil {
				return err
			}
		} else if res, ok := rs.SrcResults[outcome.Key]; ok {
			if err := writeLine("source result: %s", res.String()); err != nil {
				return err
			}
		}
		if msg, ok := rs.Errors[tgtErrKey]; ok {
			if err := writeLine("target error: %s", msg); err != nil {
				return err
			}
		} else if res, ok := rs.TgtResults[outcome.Key]; ok {
			if err := writeLine("target result: %s", res.String()); err != nil {
				return err
			}
		}

		if err := writeLine("source duration: %dms", rs.SrcDurations[outcome.Key].Milliseconds()); err != nil {
			return err
		}
		if err := writeLine("target duration: %dms", rs.TgtDurations[outcome.Key].Milliseconds()); err != nil {
			return err
		}
		for _, d := range outcome.Divergence {
			if err := writeLine("divergence: %s", d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reporter) writeSummary(summaryPath string, plan *Plan, outcomes []TaskOutcome) error {
	fw, err := NewWriter(summaryPath)
	if err != nil {
		return err
	}
	defer fw.Close()

	writeLine := func(format string, args ...interface{}) error {
		_, err := fw.CWriteFile(fmt.Sprintf(format+"\n", args...))
		return err
	}

	statusCounts := make(map[string]int)
	keysByStatus := make(map[string][]string)
	for _, outcome := range outcomes {
		statusCounts[outcome.Status]++
		keysByStatus[outcome.Status] = append(keysByStatus[outcome.Status], outcome.Key)
	}

	total := len(outcomes)
	passed := statusCounts[common.TaskStatusPass]
	synthesisFailed := statusCounts[common.TaskStatusFailSynthesis]

	if err := writeLine("verifydb check summary report"); err != nil {
		return err
	}
	if err := writeLine("run id: %s", r.RunID); err != nil {
		return err
	}
	if err := writeLine("generated at: %s", time.Now().Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if err := writeLine(""); err != nil {
		return err
	}
	if err := writeLine("total configured items: %d", total); err != nil {
		return err
	}
	if err := writeLine("%s: %d", common.TaskStatusPass, passed); err != nil {
		return err
	}
	if err := writeLine("%s: %d", common.TaskStatusFailInconsistent, statusCounts[common.TaskStatusFailInconsistent]); err != nil {
		return err
	}
	if err := writeLine("%s: %d", common.TaskStatusFailExecution, statusCounts[common.TaskStatusFailExecution]); err != nil {
		return err
	}
	if err := writeLine("%s: %d", common.TaskStatusFailSynthesis, synthesisFailed); err != nil {
		return err
	}

	checked := total - synthesisFailed
	if checked > 0 {
		rate := float64(passed) / float64(checked) * 100
		if err := writeLine("consistency rate: %.2f%%", rate); err != nil {
			return err
		}
	} else {
		if err := writeLine("consistency rate: N/A"); err != nil {
			return err
		}
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"STATUS", "COUNT"})
	t.AppendRows([]table.Row{
		{common.TaskStatusPass, passed},
		{common.TaskStatusFailInconsistent, statusCounts[common.TaskStatusFailInconsistent]},
		{common.TaskStatusFailExecution, statusCounts[common.TaskStatusFailExecution]},
		{common.TaskStatusFailSynthesis, synthesisFailed},
	})
	t.AppendFooter(table.Row{"TOTAL", total})
	if err := writeLine("\n%s", t.Render()); err != nil {
		return err
	}

	for _, status := range []string{
		common.TaskStatusFailInconsistent,
		common.TaskStatusFailExecution,
		common.TaskStatusFailSynthesis,
	} {
		keys := keysByStatus[status]
		if len(keys) == 0 {
			continue
		}
		if err := writeLine("\n%s tasks:", status); err != nil {
			return err
		}
		for _, key := range keys {
			if err := writeLine("  - %s", key); err != nil {
				return err
			}
		}
	}
	return nil
}
