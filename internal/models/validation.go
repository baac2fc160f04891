// internal/models/validation.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ViolationKind 违规类型
type ViolationKind string

const (
	ViolationContractError  ViolationKind = "contract_error"
	ViolationStartMissing   ViolationKind = "start_condition_missing"
	ViolationEndMissing     ViolationKind = "end_condition_missing"
	ViolationEndExceeded    ViolationKind = "end_condition_exceeded"
	ViolationIncludeMissing ViolationKind = "must_include_missing"
	ViolationScopeDrift     ViolationKind = "scope_drift"
	ViolationTimeJump       ViolationKind = "time_jump"
)

// ViolationSeverity 违规严重级别
type ViolationSeverity string

const (
	SeverityCritical ViolationSeverity = "critical"
	SeverityMajor    ViolationSeverity = "major"
	SeverityMinor    ViolationSeverity = "minor"
)

// Violation 一次不合格的偏离，附带修复建议
type Violation struct {
	Kind        ViolationKind     `json:"kind"`
	Severity    ViolationSeverity `json:"severity"`
	Description string            `json:"description"`
	Suggestion  string            `json:"suggestion,omitempty"`
}

// Warning 可疑但不构成否决的偏离
type Warning struct {
	Kind        ViolationKind `json:"kind"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion,omitempty"`
}

// CheckResult 单项检查的结论
type CheckResult struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// CheckResults 五项检查各自的结论。
// 五项检查彼此独立、全部执行，不做短路。
type CheckResults struct {
	StartCondition CheckResult `json:"start_condition"`
	EndCondition   CheckResult `json:"end_condition"`
	MustInclude    CheckResult `json:"must_include"`
	Scope          CheckResult `json:"scope"`
	TimeJump       CheckResult `json:"time_jump"`
}

// ValidationResult 对一对 (契约, 生成文本) 的评分结果。
// 不变式: IsValid == (Score >= 及格线 && 无 critical 违规)
type ValidationResult struct {
	ID          string       `json:"id"`
	Score       int          `json:"score"`
	IsValid     bool         `json:"is_valid"`
	Violations  []Violation  `json:"violations"`
	Warnings    []Warning    `json:"warnings"`
	Suggestions []string     `json:"suggestions"`
	Checks      CheckResults `json:"checks"`
	CreatedAt   time.Time    `json:"created_at"`
}

// HasCritical 是否存在 critical 级违规
func (r *ValidationResult) HasCritical() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// FormatReport 把验证结果渲染成给人看的多行报告。
// 纯格式化函数，不含任何判定逻辑。
func (r *ValidationResult) FormatReport() string {
	var sb strings.Builder

	status := "FAIL"
	if r.IsValid {
		status = "PASS"
	}
	sb.WriteString(fmt.Sprintf("[%s] score=%d/100\n", status, r.Score))

	if len(r.Violations) > 0 {
		sb.WriteString("violations:\n")
		for _, v := range r.Violations {
			sb.WriteString(fmt.Sprintf("  ✗ [%s] %s: %s\n", v.Severity, v.Kind, v.Description))
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", w.Kind, w.Description))
		}
	}
	if len(r.Suggestions) > 0 {
		sb.WriteString("suggestions:\n")
		for _, s := range r.Suggestions {
			sb.WriteString(fmt.Sprintf("  - %s\n", s))
		}
	}

	sb.WriteString("checks:\n")
	writeCheck := func(name string, c CheckResult) {
		mark := "ok"
		if !c.Passed {
			mark = "failed"
		}
		if c.Detail != "" {
			sb.WriteString(fmt.Sprintf("  %-16s %s (%s)\n", name, mark, c.Detail))
		} else {
			sb.WriteString(fmt.Sprintf("  %-16s %s\n", name, mark))
		}
	}
	writeCheck("start_condition", r.Checks.StartCondition)
	writeCheck("end_condition", r.Checks.EndCondition)
	writeCheck("must_include", r.Checks.MustInclude)
	writeCheck("scope", r.Checks.Scope)
	writeCheck("time_jump", r.Checks.TimeJump)

	return sb.String()
}
