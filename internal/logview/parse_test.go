package logview

import (
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantMsg  string
		wantLvl  string
		wantRaw  string
		wantTime bool
	}{
		{
			name:     "structured line",
			line:     `{"file":"server.go","function":"startNode","level":"info","line":73,"msg":"Node running","time":"2023-04-01T12:30:45.123456Z"}`,
			wantMsg:  "Node running",
			wantLvl:  "info",
			wantTime: true,
		},
		{
			name:    "level is lowercased",
			line:    `{"level":"WARNING","msg":"catchup stalled","time":"bad-timestamp"}`,
			wantMsg: "catchup stalled",
			wantLvl: "warning",
		},
		{
			name:    "plain text falls back to raw",
			line:    "Logging Starting...",
			wantRaw: "Logging Starting...",
		},
		{
			name:    "broken json falls back to raw",
			line:    `{"level":"info","msg":`,
			wantRaw: `{"level":"info","msg":`,
		},
		{
			name:    "trailing newline stripped",
			line:    "raw line\n",
			wantRaw: "raw line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseLine(tt.line)
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
			if e.Level != tt.wantLvl {
				t.Errorf("Level = %q, want %q", e.Level, tt.wantLvl)
			}
			if e.Raw != tt.wantRaw {
				t.Errorf("Raw = %q, want %q", e.Raw, tt.wantRaw)
			}
			if tt.wantTime && e.Time.IsZero() {
				t.Error("expected a parsed timestamp")
			}
			if tt.wantTime {
				want := time.Date(2023, 4, 1, 12, 30, 45, 123456000, time.UTC)
				if !e.Time.Equal(want) {
					t.Errorf("Time = %v, want %v", e.Time, want)
				}
			}
		})
	}
}
