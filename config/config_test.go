package config

import (
	"strings"
	"testing"
)

func testValidConfig() *Config {
	return &Config{
		OracleConfig: OracleConfig{
			Username:      "marvin",
			Password:      "secret",
			ConnectString: "oracle-host:1521/orclpdb",
		},
		PostgresConfig: PostgresConfig{
			Username: "marvin",
			Password: "secret",
			Host:     "pg-host",
			DBName:   "marvindb",
		},
		CheckConfig: CheckConfig{
			Tables: []string{"MARVIN.T1"},
		},
	}
}

func TestValidateConfig(t *testing.T) {
	type args struct {
		mutate func(*Config)
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name:    "valid",
			args:    args{mutate: func(c *Config) {}},
			wantErr: false,
		},
		{
			name:    "missing oracle connect string",
			args:    args{mutate: func(c *Config) { c.OracleConfig.ConnectString = "" }},
			wantErr: true,
		},
		{
			name:    "missing postgres db name",
			args:    args{mutate: func(c *Config) { c.PostgresConfig.DBName = "" }},
			wantErr: true,
		},
		{
			name: "no check scope",
			args: args{mutate: func(c *Config) {
				c.CheckConfig.Tables = nil
				c.CheckConfig.Schemas = nil
				c.CheckConfig.CustomSQLs = nil
			}},
			wantErr: true,
		},
		{
			name: "custom sql without name",
			args: args{mutate: func(c *Config) {
				c.CheckConfig.CustomSQLs = []CustomSQL{{Name: "", SQL: "select 1"}}
			}},
			wantErr: true,
		},
		{
			name: "schemas only is enough",
			args: args{mutate: func(c *Config) {
				c.CheckConfig.Tables = nil
				c.CheckConfig.Schemas = []string{"MARVIN"}
			}},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testValidConfig()
			tt.args.mutate(cfg)
			if err := cfg.ValidateConfig(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdjustConfigDefaults(t *testing.T) {
	cfg := testValidConfig()
	cfg.AdjustConfig()
	if cfg.AppConfig.Threads != 4 {
		t.Errorf("Threads = %d, want 4", cfg.AppConfig.Threads)
	}
	if cfg.AppConfig.ReportDir != "reports" {
		t.Errorf("ReportDir = %s, want reports", cfg.AppConfig.ReportDir)
	}
	if cfg.PostgresConfig.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.PostgresConfig.Port)
	}
	if cfg.PostgresConfig.SSLMode != "disable" {
		t.Errorf("SSLMode = %s, want disable", cfg.PostgresConfig.SSLMode)
	}
}

func TestConfigStringDesensitized(t *testing.T) {
	cfg := testValidConfig()
	out := cfg.String()
	if strings.Contains(out, "secret") {
		t.Errorf("String() leaks password: %s", out)
	}
	if !strings.Contains(out, "******") {
		t.Errorf("String() missing masked password: %s", out)
	}
}
