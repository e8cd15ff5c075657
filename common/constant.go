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
package common

// 校验任务标识前缀
const (
	TaskKeyTablePrefix  = "TABLE:"
	TaskKeyCustomPrefix = "CUSTOM:"

	// 执行错误记录后缀，按上下游分别记录
	TaskErrorSuffixSource = "_SRC"
	TaskErrorSuffixTarget = "_TGT"
)

// 校验任务状态
const (
	TaskStatusPass             = "PASS"
	TaskStatusFailInconsistent = "FAIL_INCONSISTENT"
	TaskStatusFailSynthesis    = "FAIL_SYNTHESIS"
	TaskStatusFailExecution    = "FAIL_EXECUTION"
)

// 校验报告
const (
	ReportTimestampLayout = "20060102_150405"
	DetailReportPrefix    = "detail_report_"
	SummaryReportPrefix   = "summary_report_"
	ReportFileSuffix      = ".txt"
)

// 默认值
const (
	DefaultConfigFile  = "config.toml"
	DefaultAppThreads  = 4
	DefaultReportDir   = "reports"
	DefaultPGPort      = 5432
	DefaultPGSSLMode   = "disable"
	DefaultOraTimezone = "Local"
)
