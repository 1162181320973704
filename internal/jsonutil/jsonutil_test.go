package jsonutil

import (
	"strings"
	"testing"
	"time"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"fence with tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  \n```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"inner fence untouched", "before ```x``` after", "before ```x``` after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFence(tt.in); got != tt.want {
				t.Errorf("StripFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type node struct {
	Name string `json:"name"`
	Next *node  `json:"next,omitempty"`
}

func TestMarshalCutsCycles(t *testing.T) {
	a := &node{Name: "a"}
	b := &node{Name: "b", Next: a}
	a.Next = b

	out, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"[Circular]"`) {
		t.Errorf("output missing placeholder: %s", s)
	}
	if !strings.Contains(s, `"name":"b"`) {
		t.Errorf("non-cyclic part lost: %s", s)
	}
}

func TestMarshalSharedNonCyclicPointer(t *testing.T) {
	shared := &node{Name: "shared"}
	list := []*node{shared, shared}

	out, err := Marshal(list)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Sharing without a cycle must serialize both occurrences in full.
	if got := strings.Count(string(out), `"shared"`); got != 2 {
		t.Errorf("shared node serialized %d times, want 2: %s", got, out)
	}
}

func TestMarshalCyclicMap(t *testing.T) {
	m := map[string]any{"name": "root"}
	m["self"] = m

	out, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"self":"[Circular]"`) {
		t.Errorf("output = %s", out)
	}
}

func TestMarshalRespectsTagsAndTime(t *testing.T) {
	v := struct {
		ID      string    `json:"id"`
		Hidden  string    `json:"-"`
		Created time.Time `json:"created_at"`
	}{ID: "x", Hidden: "secret", Created: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	out, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "secret") {
		t.Errorf("skipped field serialized: %s", s)
	}
	if !strings.Contains(s, `"created_at":"2025-06-01T12:00:00Z"`) {
		t.Errorf("time not in RFC 3339 form: %s", s)
	}
}
