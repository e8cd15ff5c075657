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
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/scylladb/go-set"
	"github.com/scylladb/go-set/strset"
	"github.com/wentaojin/verifydb/common"
	"github.com/wentaojin/verifydb/config"
	"github.com/wentaojin/verifydb/database/oracle"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 单个校验任务，上下游查询文本已合成
type CheckTask struct {
	Key             string
	BaseSQL         string
	SrcSQL          string
	TgtSQL          string
	ExcludedColumns []string
}

// 校验计划，Keys 保留全部任务标识（含合成失败项），按排序后的表任务在前、自定义 SQL 在后；合成失败任务不进入 Tasks，仅记录在 SynthesisErrors
type Plan struct {
	Keys            []string
	Tasks           []*CheckTask
	SynthesisErrors map[string]string
}

// 表排除过滤器，精确匹配忽略大小写，* 通配，全串锚定
type ExcludeFilter struct {
	exacts   *strset.Set
	patterns []*regexp.Regexp
}

func NewExcludeFilter(excludePatterns []string) *ExcludeFilter {
	f := &ExcludeFilter{
		exacts: set.NewStringSet(),
	}
	for _, p := range excludePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "*") {
			expr := common.StringsBuilder("(?i)^", strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, ".*"), "$")
			f.patterns = append(f.patterns, regexp.MustCompile(expr))
		} else {
			f.exacts.Add(common.StringUPPER(p))
		}
	}
	return f
}

func (f *ExcludeFilter) Match(name string) bool {
	if f.exacts.Has(common.StringUPPER(name)) {
		return true
	}
	for _, p := range f.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

type Planner struct {
	Ctx     context.Context
	Cfg     *config.Config
	Oracle  *oracle.Oracle
	Synth   *Synthesizer
	Threads int
}

func NewPlanner(ctx context.Context, cfg *config.Config, oracleDB *oracle.Oracle) *Planner {
	return &Planner{
		Ctx:     ctx,
		Cfg:     cfg,
		Oracle:  oracleDB,
		Synth:   NewSynthesizer(cfg.CheckConfig.SchemaMapping),
		Threads: cfg.AppConfig.Threads,
	}
}

// 生成校验计划：schema 展开、去重排除、统计信息排序、逐任务合成
func (p *Planner) Plan() (*Plan, error) {
	filter := NewExcludeFilter(p.Cfg.CheckConfig.ExcludeTables)

	tables, err := p.expandTables(filter)
	if err != nil {
		return nil, err
	}
	tables = p.orderTablesBySize(tables)

	plan := &Plan{
		SynthesisErrors: make(map[string]string),
	}

	type pendingTask struct {
		key     string
		baseSQL string
	}
	var pendings []pendingTask
	for _, t := range tables {
		pendings = append(pendings, pendingTask{
			key:     common.StringsBuilder(common.TaskKeyTablePrefix, t),
			baseSQL: common.StringsBuilder("SELECT * FROM ", t),
		})
	}
	for _, cs := range p.Cfg.CheckConfig.CustomSQLs {
		pendings = append(pendings, pendingTask{
			key:     common.StringsBuilder(common.TaskKeyCustomPrefix, cs.Name),
			baseSQL: cs.SQL,
		})
	}

	synthesized := make([]*CheckTask, len(pendings))

	mu := &sync.Mutex{}
	g := &errgroup.Group{}
	if p.Threads > 0 {
		g.SetLimit(p.Threads)
	}
	for i, pt := range pendings {
		i, pt := i, pt
		plan.Keys = append(plan.Keys, pt.key)
		g.Go(func() error {
			task, err := p.synthesizeTask(pt.key, pt.baseSQL)
			if err != nil {
				zap.L().Warn("task synthesis failed",
					zap.String("task", pt.key),
					zap.Error(err))
				mu.Lock()
				plan.SynthesisErrors[pt.key] = err.Error()
				mu.Unlock()
				return nil
			}
			synthesized[i] = task
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range synthesized {
		if t != nil {
			plan.Tasks = append(plan.Tasks, t)
		}
	}

	zap.L().Info("check plan generated",
		zap.Int("total", len(plan.Keys)),
		zap.Int("synthesized", len(plan.Tasks)),
		zap.Int("synthesis-failed", len(plan.SynthesisErrors)))
	return plan, nil
}

// schema 展开与显式表合并，展开与合并后各做一次排除过滤，去重保序
func (p *Planner) expandTables(filter *ExcludeFilter) ([]string, error) {
	seen := set.NewStringSet()
	var tables []string

	appendTable := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if filter.Match(t) {
			return
		}
		upper := common.StringUPPER(t)
		if seen.Has(upper) {
			return
		}
		seen.Add(upper)
		tables = append(tables, t)
	}

	for _, schema := range p.Cfg.CheckConfig.Schemas {
		schemaTables, err := p.Oracle.GetSchemaTables(schema)
		if err != nil {
			return nil, err
		}
		before := len(tables)
		for _, t := range schemaTables {
			appendTable(t)
		}
		zap.L().Info("schema expanded",
			zap.String("schema", schema),
			zap.Int("catalog-tables", len(schemaTables)),
			zap.Int("accepted", len(tables)-before))
	}

	before := len(tables)
	for _, t := range p.Cfg.CheckConfig.Tables {
		appendTable(t)
	}
	zap.L().Info("declared tables merged",
		zap.Int("declared", len(p.Cfg.CheckConfig.Tables)),
		zap.Int("accepted", len(tables)-before))
	return tables, nil
}

// 统计信息行数降序排序，目录中不存在的表保持声明顺序追加，目录查询失败保持声明顺序
func (p *Planner) orderTablesBySize(tables []string) []string {
	if len(tables) == 0 {
		return tables
	}
	ordered, err := p.Oracle.GetTablesOrderedByNumRows(tables)
	if err != nil {
		zap.L().Warn("table size ordering skipped, keep declared order", zap.Error(err))
		return tables
	}

	orderedSet := set.NewStringSet()
	for _, t := range ordered {
		orderedSet.Add(common.StringUPPER(t))
	}

	// 目录返回大写限定名，回写为用户声明写法
	declaredByUpper := make(map[string]string, len(tables))
	for _, t := range tables {
		declaredByUpper[common.StringUPPER(t)] = t
	}

	var result []string
	for _, t := range ordered {
		if declared, ok := declaredByUpper[common.StringUPPER(t)]; ok {
			result = append(result, declared)
		}
	}
	for _, t := range tables {
		if !orderedSet.Has(common.StringUPPER(t)) {
			zap.L().Warn("table missing from catalog statistics, appended in declared order",
				zap.String("table", t))
			result = append(result, t)
		}
	}
	return result
}

// 单任务合成：DBMS_SQL 描述字段后生成上下游查询
func (p *Planner) synthesizeTask(key, baseSQL string) (*CheckTask, error) {
	descs, err := p.Oracle.DescribeQueryColumns(baseSQL)
	if err != nil {
		return nil, &SynthesisError{
			Kind:  SynthesisDescribeFailed,
			Cause: err,
		}
	}
	syn, err := p.Synth.Synthesize(descs, baseSQL)
	if err != nil {
		return nil, err
	}
	if len(syn.ExcludedColumns) > 0 {
		zap.L().Warn("columns excluded from comparison",
			zap.String("task", key),
			zap.Strings("columns", syn.ExcludedColumns))
	}
	return &CheckTask{
		Key:             key,
		BaseSQL:         baseSQL,
		SrcSQL:          syn.SrcSQL,
		TgtSQL:          syn.TgtSQL,
		ExcludedColumns: syn.ExcludedColumns,
	}, nil
}
