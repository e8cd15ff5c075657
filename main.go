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
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/wentaojin/verifydb/common"
	"github.com/wentaojin/verifydb/config"
	"github.com/wentaojin/verifydb/logger"
	"github.com/wentaojin/verifydb/module/check"
	"github.com/wentaojin/verifydb/signal"
	"go.uber.org/zap"
)

var (
	conf    = flag.String("config", common.DefaultConfigFile, "specify the configuration file, default is config.toml")
	version = flag.Bool("version", false, "view verifydb version info")
)

func main() {
	flag.Parse()

	// 获取程序版本
	config.GetAppVersion(*version)

	// 读取配置文件
	cfg, err := config.ReadConfigFile(*conf)
	if err != nil {
		log.Fatalf("read config file [%s] failed: %v", *conf, err)
	}

	// 初始化日志 logger
	logger.NewZapLogger(cfg)
	config.RecordAppVersion("verifydb", cfg)

	if cfg.AppConfig.PprofPort != "" {
		go func() {
			if err := http.ListenAndServe(cfg.AppConfig.PprofPort, nil); err != nil {
				zap.L().Fatal("listen and serve pprof failed", zap.Error(errors.Cause(err)))
			}
			os.Exit(0)
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	// 信号量监听处理，取消后在途任务 60s 宽限期收尾
	signal.SetupSignalHandler(func() {
		cancel()
		go func() {
			time.Sleep(60 * time.Second)
			zap.L().Error("shutdown grace period exceeded, exit")
			os.Exit(1)
		}()
	})

	// 程序运行
	c, err := check.NewCheck(ctx, cfg)
	if err != nil {
		zap.L().Fatal("check init failed", zap.Error(errors.Cause(err)))
	}
	if err = check.IVerify(c); err != nil {
		zap.L().Fatal("check run failed", zap.Error(errors.Cause(err)))
	}
}
