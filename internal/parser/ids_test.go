package parser

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

func TestIDMap(t *testing.T) {
	m := NewIDMap()

	if id := m.ID("a"); id != 0 {
		t.Errorf("expected 0, got %d", id)
	}
	if id := m.ID("b"); id != 1 {
		t.Errorf("expected 1, got %d", id)
	}
	if id := m.ID("a"); id != 0 {
		t.Errorf("expected same id for same name, got %d", id)
	}
	if _, ok := m.Lookup("c"); ok {
		t.Error("expected c to be unknown")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 names, got %d", m.Len())
	}

	m.Reset()
	if id := m.ID("b"); id != 0 {
		t.Errorf("expected ids to restart after reset, got %d", id)
	}
}

func TestChomp(t *testing.T) {
	tests := map[string]string{
		"line\r\n": "line",
		"line":     "line",
		"a b \t\r": "a b ",
		"":         "",
	}
	for in, expected := range tests {
		if got := Chomp(in); got != expected {
			t.Errorf("Chomp(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func TestReadLines(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	input := "first\r\n" + long + "\n\nlast"

	var lines []string
	err := ReadLines(strings.NewReader(input), func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "first" || lines[1] != long || lines[2] != "" || lines[3] != "last" {
		t.Errorf("unexpected lines: %q %d %q %q", lines[0], len(lines[1]), lines[2], lines[3])
	}
}

func TestReadLines_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := ReadLines(strings.NewReader("a\nb\nc\n"), func(string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected stop error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
