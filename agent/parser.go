package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// ExtractJSONBlock pulls the JSON payload out of a model reply. Models
// routinely wrap structured output in markdown fences; preference order is
// a ```json fence, then any fence, then the raw text.
func ExtractJSONBlock(raw string) string {
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// ParseJSON extracts the JSON payload from a model reply and unmarshals it
// into v. A reply that does not contain valid JSON yields a
// MalformedResponseError carrying the original text.
func ParseJSON(raw string, v interface{}) error {
	block := ExtractJSONBlock(raw)
	if err := json.Unmarshal([]byte(block), v); err != nil {
		return &MalformedResponseError{Raw: raw, Err: err}
	}
	return nil
}
