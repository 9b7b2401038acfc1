package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/arcade/internal/domain/types"
)

// bodySchema validates a syntactically valid JSON body. It returns the
// payload to forward (validated fields only) or the list of problems.
type bodySchema func(raw json.RawMessage) (any, []string)

// fields reads top-level members of a JSON object and collects problems.
type fields struct {
	values  map[string]json.RawMessage
	details []string
}

func readFields(raw json.RawMessage) *fields {
	f := &fields{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		f.details = append(f.details, "body: expected object")
		return f
	}
	if err := json.Unmarshal(trimmed, &f.values); err != nil {
		f.details = append(f.details, "body: expected object")
	}
	return f
}

func (f *fields) fail(name, format string, args ...any) {
	f.details = append(f.details, name+": "+fmt.Sprintf(format, args...))
}

func (f *fields) lookup(name string) (json.RawMessage, bool) {
	if f.values == nil {
		return nil, false
	}
	v, ok := f.values[name]
	return v, ok
}

func (f *fields) text(name string, required bool) *string {
	v, ok := f.lookup(name)
	if !ok {
		if required && f.values != nil {
			f.fail(name, "required")
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		f.fail(name, "expected string")
		return nil
	}
	if required && s == "" {
		f.fail(name, "must contain at least 1 character")
		return nil
	}
	return &s
}

func (f *fields) number(name string, lo, hi float64) *float64 {
	v, ok := f.lookup(name)
	if !ok {
		return nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		f.fail(name, "expected number")
		return nil
	}
	if n < lo || n > hi {
		f.fail(name, "must be between %g and %g", lo, hi)
		return nil
	}
	return &n
}

func (f *fields) stringList(name string) []string {
	v, ok := f.lookup(name)
	if !ok {
		if f.values != nil {
			f.fail(name, "required")
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(v, &list); err != nil || list == nil {
		f.fail(name, "expected array of strings")
		return nil
	}
	if len(list) == 0 {
		f.fail(name, "must contain at least 1 element")
		return nil
	}
	for i, s := range list {
		if s == "" {
			f.fail(fmt.Sprintf("%s[%d]", name, i), "must not be empty")
		}
	}
	return list
}

func (f *fields) result(payload any) (any, []string) {
	if len(f.details) > 0 {
		return nil, f.details
	}
	return payload, nil
}

func submitSchema(raw json.RawMessage) (any, []string) {
	f := readFields(raw)
	img := f.text("image_url", true)
	prompt := f.text("prompt", true)
	if len(f.details) > 0 {
		return f.result(nil)
	}
	return f.result(types.SubmitRequest{ImageURL: *img, Prompt: *prompt})
}

func voteSchema(raw json.RawMessage) (any, []string) {
	f := readFields(raw)
	teams := f.stringList("voted_teams")
	return f.result(types.VoteRequest{VotedTeams: teams})
}

func chatSchema(raw json.RawMessage) (any, []string) {
	f := readFields(raw)
	msg := f.text("message", true)
	if len(f.details) > 0 {
		return f.result(nil)
	}
	return f.result(types.ChatRequest{Message: *msg})
}

func stateSchema(raw json.RawMessage) (any, []string) {
	f := readFields(raw)
	update := types.StateUpdate{
		SystemMessage:  f.text("system_message", false),
		Temperature:    f.number("temperature", 0, 2),
		LastResponseID: f.text("last_response_id", false),
	}
	return f.result(update)
}

func toolSchema(raw json.RawMessage) (any, []string) {
	f := readFields(raw)
	name := f.text("tool_name", true)
	desc := f.text("description", true)
	if len(f.details) > 0 {
		return f.result(nil)
	}
	return f.result(types.ToolRequest{ToolName: *name, Description: *desc})
}
