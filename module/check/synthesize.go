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
	"regexp"
	"sort"
	"strings"

	"github.com/wentaojin/verifydb/common"
	"github.com/wentaojin/verifydb/database/oracle"
)

// 查询合成错误分类
const (
	SynthesisDescribeFailed  = "DESCRIBE_FAILED"
	SynthesisEmptyProjection = "EMPTY_PROJECTION"
	SynthesisEmptyEmission   = "EMPTY_EMISSION"
)

type SynthesisError struct {
	Kind  string
	Cause error
}

func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("synthesis failed [%s]: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("synthesis failed [%s]", e.Kind)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// 上下游校验和查询文本，成对生成
type Synthesis struct {
	SrcSQL          string
	TgtSQL          string
	ExcludedColumns []string
}

type schemaRule struct {
	pattern *regexp.Regexp
	replace string
}

// 上下游 schema 映射改写器，映射键值加载时统一小写
type Synthesizer struct {
	schemaRules []schemaRule
}

func NewSynthesizer(schemaMapping map[string]string) *Synthesizer {
	var srcSchemas []string
	for src := range schemaMapping {
		srcSchemas = append(srcSchemas, src)
	}
	// 规则按源 schema 排序，保证改写顺序稳定
	sort.Strings(srcSchemas)

	var rules []schemaRule
	for _, src := range srcSchemas {
		tgt := strings.ToLower(strings.TrimSpace(schemaMapping[src]))
		srcLower := strings.ToLower(strings.TrimSpace(src))
		if srcLower == "" || tgt == "" {
			continue
		}
		rules = append(rules, schemaRule{
			pattern: regexp.MustCompile(common.StringsBuilder(`(?i)\b`, regexp.QuoteMeta(srcLower), `\.`)),
			replace: common.StringsBuilder(tgt, "."),
		})
	}
	return &Synthesizer{schemaRules: rules}
}

// oracle 12c+ WITH FUNCTION，MD5 按 4 字节通道取整求和，通道各除 4 防止求和溢出
const srcChecksumTemplate = `with function uf_raw2int(input raw,pos number,len number) return number is
begin
  return utl_raw.cast_to_binary_integer(utl_raw.substr(input,pos,len));
end;
select count(1) as cnt,
       sum(uf_raw2int(a,1,4)/4+uf_raw2int(a,5,4)/4+uf_raw2int(a,9,4)/4+uf_raw2int(a,13,4)/4) as cksum
  from (select dbms_crypto.hash(JSON_OBJECT(T.* RETURNING blob),2) a
          from (select %s from (%s)) T)`

// postgres md5 十六进制文本，按 8 字符通道切分与上游逐通道对齐
const tgtChecksumTemplate = `select count(1) as cnt,
       sum(('x'||substr(a,1,8))::bit(32)::int4::numeric/4 +
           ('x'||substr(a,9,8))::bit(32)::int4::numeric/4 +
           ('x'||substr(a,17,8))::bit(32)::int4::numeric/4 +
           ('x'||substr(a,25,8))::bit(32)::int4::numeric/4) as cksum
  from (select md5(row_to_json(t)::text) a
          from (select %s from (%s)) t)`

// 基于字段元信息合成上下游校验和查询，相同元信息以及基础查询输出字节一致
func (s *Synthesizer) Synthesize(descs []oracle.ColumnDesc, baseSQL string) (*Synthesis, error) {
	srcProj, tgtProj, excluded := BuildProjection(descs)
	if srcProj == "" {
		return nil, &SynthesisError{
			Kind:  SynthesisEmptyProjection,
			Cause: fmt.Errorf("all %d columns are excluded from comparison", len(descs)),
		}
	}

	srcSQL := fmt.Sprintf(srcChecksumTemplate, srcProj, baseSQL)
	tgtSQL := s.RewriteSchemas(fmt.Sprintf(tgtChecksumTemplate, tgtProj, baseSQL))

	if strings.TrimSpace(srcSQL) == "" || strings.TrimSpace(tgtSQL) == "" {
		return nil, &SynthesisError{
			Kind:  SynthesisEmptyEmission,
			Cause: fmt.Errorf("emitted query text is empty"),
		}
	}
	return &Synthesis{
		SrcSQL:          srcSQL,
		TgtSQL:          tgtSQL,
		ExcludedColumns: excluded,
	}, nil
}

// schema 映射改写，忽略大小写，单词边界防止局部命中
func (s *Synthesizer) RewriteSchemas(sqlText string) string {
	for _, rule := range s.schemaRules {
		sqlText = rule.pattern.ReplaceAllLiteralString(sqlText, rule.replace)
	}
	return sqlText
}
