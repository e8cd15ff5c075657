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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wentaojin/verifydb/config"
	"github.com/wentaojin/verifydb/database/oracle"
	"github.com/wentaojin/verifydb/database/postgres"
	"go.uber.org/zap"
)

type Check struct {
	Ctx      context.Context
	Cfg      *config.Config
	Oracle   *oracle.Oracle
	Postgres *postgres.Postgres
}

func NewCheck(ctx context.Context, cfg *config.Config) (*Check, error) {
	oracleDB, err := oracle.NewOracleDBEngine(ctx, cfg.OracleConfig)
	if err != nil {
		return nil, err
	}
	postgresDB, err := postgres.NewPostgresDBEngine(ctx, cfg.PostgresConfig)
	if err != nil {
		return nil, err
	}
	return &Check{
		Ctx:      ctx,
		Cfg:      cfg,
		Oracle:   oracleDB,
		Postgres: postgresDB,
	}, nil
}

// oracle 12.1 起支持内联 WITH FUNCTION，版本不可解析时不拦截
func oracleSupportsInlineFunction(version string) bool {
	major := strings.SplitN(strings.TrimSpace(version), ".", 2)[0]
	v, err := strconv.Atoi(major)
	if err != nil {
		return true
	}
	return v >= 12
}

// 校验流程：计划 -> 并发执行 -> 比对报告
func (c *Check) Verify() error {
	startTime := time.Now()
	zap.L().Info("check verify starting")

	oraVersion, err := c.Oracle.GetOracleDBVersion()
	if err != nil {
		return err
	}
	pgVersion, err := c.Postgres.GetPostgresDBVersion()
	if err != nil {
		return err
	}
	zap.L().Info("database engines connected",
		zap.String("oracle", oraVersion),
		zap.String("postgres", pgVersion))
	if !oracleSupportsInlineFunction(oraVersion) {
		return fmt.Errorf("oracle database version [%s] can not run inline function checksum sql, requires oracle 12.1 and above", oraVersion)
	}

	planner := NewPlanner(c.Ctx, c.Cfg, c.Oracle)
	plan, err := planner.Plan()
	if err != nil {
		return err
	}

	executor := NewExecutor(c.Ctx, c.Cfg.AppConfig.Threads, c.Oracle.OracleDB, c.Postgres.PGDB)
	rs := executor.Run(plan.Tasks)

	reporter := NewReporter(c.Cfg.AppConfig.ReportDir)
	detailPath, summaryPath, err := reporter.Report(plan, rs)
	if err != nil {
		return err
	}

	zap.L().Info("check verify finished",
		zap.String("detail report", detailPath),
		zap.String("summary report", summaryPath),
		zap.String("cost", time.Since(startTime).String()))
	return nil
}
