// Package sandbox executes model-generated Go code against a table binding
// inside a restricted yaegi interpreter and normalizes what comes back.
package sandbox

import (
	"fmt"
	"strings"
)

// ValidationResult represents the outcome of pre-execution code validation
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	HasChart bool     `json:"has_chart"`
}

// CodeValidator screens generated code before it reaches the interpreter.
// The sandbox only loads whitelisted symbols, so the validator is a first
// line of defense that produces readable errors instead of obscure
// undefined-symbol failures.
type CodeValidator struct {
	blockedPrefixes []string
}

// Identifier prefixes that reference capabilities the sandbox never binds.
var defaultBlockedPrefixes = []string{
	"os.", "exec.", "syscall.", "unsafe.", "net.", "http.",
	"ioutil.", "runtime.", "reflect.", "plugin.", "cgo.",
}

// NewCodeValidator creates a validator with the default block list.
func NewCodeValidator() *CodeValidator {
	return &CodeValidator{blockedPrefixes: defaultBlockedPrefixes}
}

// ValidateCode checks generated code against the sandbox contract.
func (v *CodeValidator) ValidateCode(code string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(code) == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "generated code is empty")
		return result
	}

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "import(") {
			result.Valid = false
			result.Errors = append(result.Errors, "import statements are not allowed; the sandbox provides its bindings")
			continue
		}
		if strings.HasPrefix(trimmed, "package ") {
			result.Valid = false
			result.Errors = append(result.Errors, "package declarations are not allowed in sandbox code")
			continue
		}
		if strings.HasPrefix(trimmed, "go ") || strings.Contains(trimmed, "go func") {
			result.Valid = false
			result.Errors = append(result.Errors, "goroutines are not allowed in sandbox code")
			continue
		}

		for _, prefix := range v.blockedPrefixes {
			if containsIdentifier(trimmed, prefix) {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("use of blocked package %q", strings.TrimSuffix(prefix, ".")))
			}
		}
	}

	if strings.Contains(code, "plot.") {
		result.HasChart = true
	}
	if strings.Contains(code, "for {") && !strings.Contains(code, "break") {
		result.Warnings = append(result.Warnings, "potential infinite loop: for loop without break")
	}

	return result
}

// containsIdentifier reports whether the line uses prefix as a package
// selector (not merely as a substring of a longer identifier).
func containsIdentifier(line, prefix string) bool {
	idx := 0
	for {
		pos := strings.Index(line[idx:], prefix)
		if pos < 0 {
			return false
		}
		pos += idx
		if pos == 0 {
			return true
		}
		prev := line[pos-1]
		if !isIdentChar(prev) {
			return true
		}
		idx = pos + len(prefix)
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
