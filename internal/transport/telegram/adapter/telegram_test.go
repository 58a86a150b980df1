package adapter

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tele "gopkg.in/telebot.v4"

	kit "dogcare/internal/transport"
)

func TestSplitTelegramTextShort(t *testing.T) {
	t.Parallel()
	in := "🔔 Пора сделать обработку: От глистов (01.07.2025)"
	got := splitTelegramText(in, 0)
	if len(got) != 1 || got[0] != in {
		t.Fatalf("split = %q", got)
	}
}

func TestSplitTelegramTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	line := strings.Repeat("я", 30)
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, line)
	}
	in := strings.Join(lines, "\n")

	got := splitTelegramText(in, 100)
	if len(got) < 2 {
		t.Fatalf("expected several chunks, got %d", len(got))
	}
	for i, c := range got {
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
		for _, l := range strings.Split(c, "\n") {
			if l != line {
				t.Fatalf("chunk %d split a line: %q", i, l)
			}
		}
	}
	if joined := strings.Join(got, "\n"); joined != in {
		t.Fatalf("chunks do not reassemble the input")
	}
}

func TestSplitTelegramTextHardCut(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("a", 250)
	got := splitTelegramText(in, 100)
	if len(got) != 3 || len(got[0]) != 100 || len(got[2]) != 50 {
		t.Fatalf("chunk sizes unexpected: %d chunks", len(got))
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"blocked", tele.ErrBlockedByUser, true},
		{"chat not found", tele.ErrChatNotFound, true},
		{"other forbidden", &tele.Error{Code: 403, Description: "Forbidden: something"}, true},
		{"server", &tele.Error{Code: 502, Description: "Bad Gateway"}, false},
		{"network", errors.New("dial tcp: i/o timeout"), false},
	}
	for _, tt := range tests {
		got := classify(tt.err)
		if errors.Is(got, kit.ErrUndeliverable) != tt.permanent {
			t.Fatalf("%s: classify = %v, permanent=%v", tt.name, got, tt.permanent)
		}
	}
}
