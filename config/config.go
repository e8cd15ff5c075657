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
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wentaojin/verifydb/common"
)

// 程序配置文件
type Config struct {
	AppConfig      AppConfig      `toml:"app" json:"app"`
	OracleConfig   OracleConfig   `toml:"oracle" json:"oracle"`
	PostgresConfig PostgresConfig `toml:"postgres" json:"postgres"`
	CheckConfig    CheckConfig    `toml:"check" json:"check"`
	LogConfig      LogConfig      `toml:"log" json:"log"`
}

type AppConfig struct {
	Threads   int    `toml:"threads" json:"threads"`
	ReportDir string `toml:"report-dir" json:"report-dir"`
	PprofPort string `toml:"pprof-port" json:"pprof-port"`
}

type OracleConfig struct {
	Username      string   `toml:"username" json:"username"`
	Password      string   `toml:"password" json:"password"`
	ConnectString string   `toml:"connect-string" json:"connect-string"`
	LibDir        string   `toml:"lib-dir" json:"lib-dir"`
	SessionParams []string `toml:"session-params" json:"session-params"`
	Timezone      string   `toml:"timezone" json:"timezone"`
}

type PostgresConfig struct {
	Username      string `toml:"username" json:"username"`
	Password      string `toml:"password" json:"password"`
	Host          string `toml:"host" json:"host"`
	Port          int    `toml:"port" json:"port"`
	DBName        string `toml:"db-name" json:"db-name"`
	SSLMode       string `toml:"ssl-mode" json:"ssl-mode"`
	ConnectParams string `toml:"connect-params" json:"connect-params"`
}

type CheckConfig struct {
	SchemaMapping map[string]string `toml:"schema-mapping" json:"schema-mapping"`
	Schemas       []string          `toml:"schemas" json:"schemas"`
	Tables        []string          `toml:"tables" json:"tables"`
	ExcludeTables []string          `toml:"exclude-tables" json:"exclude-tables"`
	CustomSQLs    []CustomSQL       `toml:"custom-sqls" json:"custom-sqls"`
}

type CustomSQL struct {
	Name string `toml:"name" json:"name"`
	SQL  string `toml:"sql" json:"sql"`
}

type LogConfig struct {
	LogLevel   string `toml:"log-level" json:"log-level"`
	LogFile    string `toml:"log-file" json:"log-file"`
	MaxSize    int    `toml:"max-size" json:"max-size"`
	MaxDays    int    `toml:"max-days" json:"max-days"`
	MaxBackups int    `toml:"max-backups" json:"max-backups"`
}

// 读取配置文件
func ReadConfigFile(file string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.configFromFile(file); err != nil {
		return cfg, err
	}
	cfg.AdjustConfig()
	if err := cfg.ValidateConfig(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// 加载配置文件并解析
func (c *Config) configFromFile(file string) error {
	if _, err := toml.DecodeFile(file, c); err != nil {
		return fmt.Errorf("failed decode toml config file %s: %v", file, err)
	}
	return nil
}

// 配置默认值
func (c *Config) AdjustConfig() {
	if c.AppConfig.Threads <= 0 {
		c.AppConfig.Threads = common.DefaultAppThreads
	}
	if strings.TrimSpace(c.AppConfig.ReportDir) == "" {
		c.AppConfig.ReportDir = common.DefaultReportDir
	}
	if strings.TrimSpace(c.LogConfig.LogFile) == "" {
		c.LogConfig.LogFile = "verifydb.log"
	}
	if c.LogConfig.MaxSize <= 0 {
		c.LogConfig.MaxSize = 128
	}
	if c.LogConfig.MaxDays <= 0 {
		c.LogConfig.MaxDays = 7
	}
	if c.LogConfig.MaxBackups <= 0 {
		c.LogConfig.MaxBackups = 30
	}
	if strings.TrimSpace(c.PostgresConfig.SSLMode) == "" {
		c.PostgresConfig.SSLMode = common.DefaultPGSSLMode
	}
	if c.PostgresConfig.Port == 0 {
		c.PostgresConfig.Port = common.DefaultPGPort
	}
	c.OracleConfig.LibDir = adjustLibDir(c.OracleConfig.LibDir)
}

// lib-dir 相对路径处理，依次尝试当前目录和 lib 目录
func adjustLibDir(libDir string) string {
	libDir = strings.TrimSpace(libDir)
	if libDir == "" || filepath.IsAbs(libDir) {
		return libDir
	}
	if _, err := os.Stat(libDir); err == nil {
		return libDir
	}
	under := filepath.Join("lib", libDir)
	if _, err := os.Stat(under); err == nil {
		return under
	}
	return libDir
}

// 配置合法性检查
func (c *Config) ValidateConfig() error {
	if strings.TrimSpace(c.OracleConfig.Username) == "" || strings.TrimSpace(c.OracleConfig.ConnectString) == "" {
		return fmt.Errorf("config [oracle] username and connect-string can not be null")
	}
	if strings.TrimSpace(c.PostgresConfig.Username) == "" || strings.TrimSpace(c.PostgresConfig.Host) == "" || strings.TrimSpace(c.PostgresConfig.DBName) == "" {
		return fmt.Errorf("config [postgres] username, host and db-name can not be null")
	}
	if len(c.CheckConfig.Schemas) == 0 && len(c.CheckConfig.Tables) == 0 && len(c.CheckConfig.CustomSQLs) == 0 {
		return fmt.Errorf("config [check] requires at least one of schemas, tables or custom-sqls")
	}
	for _, cs := range c.CheckConfig.CustomSQLs {
		if strings.TrimSpace(cs.Name) == "" || strings.TrimSpace(cs.SQL) == "" {
			return fmt.Errorf("config [check] custom-sqls entry requires both name and sql")
		}
	}
	return nil
}

func (c *Config) String() string {
	dup := *c
	dup.OracleConfig.Password = "******"
	dup.PostgresConfig.Password = "******"
	cfg, err := json.Marshal(&dup)
	if err != nil {
		return "<nil>"
	}
	return string(cfg)
}
