package jsonutil

import (
	"strings"
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"fence with padding", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Here is the region you asked for: {\"top\": 100} — let me know!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"top": 100}` {
		t.Errorf("ExtractJSON = %q", got)
	}

	if _, err := ExtractJSON("no json here"); err == nil {
		t.Error("expected error for text without JSON")
	}
}

func TestParseJSON(t *testing.T) {
	type region struct {
		Top  int `json:"top"`
		Left int `json:"left"`
	}

	r, err := ParseJSON[region]("```json\n{\"top\": 250, \"left\": 410}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Top != 250 || r.Left != 410 {
		t.Errorf("ParseJSON = %+v", r)
	}

	_, err = ParseJSON[region]("{\"top\": \"not-a-number\"}")
	if err == nil {
		t.Fatal("expected error for mismatched type")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("error should mention invalid JSON, got %v", err)
	}
}
