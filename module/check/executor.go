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
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wentaojin/verifydb/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 单侧校验和查询结果，校验和通道各除 4 存在小数，使用 decimal 保存
type ChecksumResult struct {
	Count    int64
	Checksum decimal.Decimal
}

func (r ChecksumResult) Equal(o ChecksumResult) bool {
	return r.Count == o.Count && r.Checksum.Equal(o.Checksum)
}

func (r ChecksumResult) String() string {
	return fmt.Sprintf("count=%d checksum=%s", r.Count, r.Checksum.String())
}

// 校验执行结果集，按任务标识分侧记录，错误键带 _SRC/_TGT 后缀
type ResultSet struct {
	mu           sync.Mutex
	SrcResults   map[string]ChecksumResult
	TgtResults   map[string]ChecksumResult
	Errors       map[string]string
	SrcDurations map[string]time.Duration
	TgtDurations map[string]time.Duration
}

func NewResultSet() *ResultSet {
	return &ResultSet{
		SrcResults:   make(map[string]ChecksumResult),
		TgtResults:   make(map[string]ChecksumResult),
		Errors:       make(map[string]string),
		SrcDurations: make(map[string]time.Duration),
		TgtDurations: make(map[string]time.Duration),
	}
}

func (rs *ResultSet) recordSource(key string, res ChecksumResult, cost time.Duration, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.SrcDurations[key] = cost
	if err != nil {
		rs.Errors[common.StringsBuilder(key, common.TaskErrorSuffixSource)] = err.Error()
		return
	}
	rs.SrcResults[key] = res
}

func (rs *ResultSet) recordTarget(key string, res ChecksumResult, cost time.Duration, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.TgtDurations[key] = cost
	if err != nil {
		rs.Errors[common.StringsBuilder(key, common.TaskErrorSuffixTarget)] = err.Error()
		return
	}
	rs.TgtResults[key] = res
}

// 查询函数签名，便于测试注入
type queryFunc func(ctx context.Context, querySQL string) (ChecksumResult, error)

type Executor struct {
	Ctx     context.Context
	Threads int
	SrcDB   *sql.DB
	TgtDB   *sql.DB
}

func NewExecutor(ctx context.Context, threads int, srcDB, tgtDB *sql.DB) *Executor {
	return &Executor{
		Ctx:     ctx,
		Threads: threads,
		SrcDB:   srcDB,
		TgtDB:   tgtDB,
	}
}

// 上下游双池并发执行，两侧全部完成后返回
func (e *Executor) Run(tasks []*CheckTask) *ResultSet {
	return e.run(tasks,
		func(ctx context.Context, querySQL string) (ChecksumResult, error) {
			return sessionQuery(ctx, e.SrcDB, querySQL)
		},
		func(ctx context.Context, querySQL string) (ChecksumResult, error) {
			return sessionQuery(ctx, e.TgtDB, querySQL)
		})
}

func (e *Executor) run(tasks []*CheckTask, srcQuery, tgtQuery queryFunc) *ResultSet {
	rs := NewResultSet()
	poolSize := e.Threads / 2
	if poolSize < 1 {
		poolSize = 1
	}

	srcGroup := &errgroup.Group{}
	srcGroup.SetLimit(poolSize)
	tgtGroup := &errgroup.Group{}
	tgtGroup.SetLimit(poolSize)

	for _, task := range tasks {
		task := task
		srcGroup.Go(func() error {
			startTime := time.Now()
			res, err := srcQuery(e.Ctx, task.SrcSQL)
			cost := time.Since(startTime)
			rs.recordSource(task.Key, res, cost, err)
			if err != nil {
				zap.L().Error("checksum query failed",
					zap.String("worker", "oracle-worker"),
					zap.String("task", task.Key),
					zap.String("cost", cost.String()),
					zap.Error(err))
				// 单任务失败不影响其余任务
				return nil
			}
			zap.L().Info("checksum query finished",
				zap.String("worker", "oracle-worker"),
				zap.String("task", task.Key),
				zap.String("cost", cost.String()))
			return nil
		})
		tgtGroup.Go(func() error {
			startTime := time.Now()
			res, err := tgtQuery(e.Ctx, task.TgtSQL)
			cost := time.Since(startTime)
			rs.recordTarget(task.Key, res, cost, err)
			if err != nil {
				zap.L().Error("checksum query failed",
					zap.String("worker", "postgres-worker"),
					zap.String("task", task.Key),
					zap.String("cost", cost.String()),
					zap.Error(err))
				return nil
			}
			zap.L().Info("checksum query finished",
				zap.String("worker", "postgres-worker"),
				zap.String("task", task.Key),
				zap.String("cost", cost.String()))
			return nil
		})
	}

	_ = srcGroup.Wait()
	_ = tgtGroup.Wait()
	return rs
}

// 每任务独立会话执行单条查询，期望单行 (cnt, cksum)
func sessionQuery(ctx context.Context, db *sql.DB, querySQL string) (ChecksumResult, error) {
	var result ChecksumResult
	conn, err := db.Conn(ctx)
	if err != nil {
		return result, fmt.Errorf("acquire session failed: %v", err)
	}
	defer conn.Close()

	var (
		cnt   int64
		cksum sql.NullString
	)
	if err := conn.QueryRowContext(ctx, querySQL).Scan(&cnt, &cksum); err != nil {
		return result, fmt.Errorf("checksum sql [%v] query failed: [%v]", querySQL, err)
	}

	checksum := decimal.Zero
	if cksum.Valid && strings.TrimSpace(cksum.String) != "" {
		checksum, err = decimal.NewFromString(strings.TrimSpace(cksum.String))
		if err != nil {
			return result, fmt.Errorf("checksum value [%v] parse failed: [%v]", cksum.String, err)
		}
	}
	result.Count = cnt
	result.Checksum = checksum
	return result, nil
}
