package logview

import (
	"encoding/json"
	"strings"
	"time"
)

// Entry is one node log line. Raw is kept for lines that are not the node's
// JSON format so nothing gets swallowed.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Raw     string
}

// jsonLine matches the node's structured log format.
type jsonLine struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Time  string `json:"time"`
	File  string `json:"file"`
	Line  int    `json:"line"`
}

// ParseLine decodes a node log line, falling back to raw text for anything
// that isn't JSON.
func ParseLine(line string) Entry {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(strings.TrimSpace(line), "{") {
		return Entry{Raw: line}
	}

	var jl jsonLine
	if err := json.Unmarshal([]byte(line), &jl); err != nil || jl.Msg == "" {
		return Entry{Raw: line}
	}

	e := Entry{
		Level:   strings.ToLower(jl.Level),
		Message: strings.TrimSpace(jl.Msg),
	}
	if ts, err := time.Parse(time.RFC3339Nano, jl.Time); err == nil {
		e.Time = ts
	}
	return e
}
