package label

import (
	"testing"
	"unicode/utf8"
)

func TestText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "plain collapses whitespace", in: "  Rex\n at   the beach ", want: "Rex at the beach"},
		{name: "markup stripped", in: "<p>Good <b>boy</b></p><p>Rex</p>", want: "Good boy Rex"},
		{name: "entities decoded", in: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "script skipped", in: "<script>alert(1)</script>Hello", want: "Hello"},
		{name: "line breaks separate words", in: "one<br>two", want: "one two"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.in); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate_IsRuneSafe(t *testing.T) {
	if got := Truncate("héllo wörld", 7); got != "héllo w" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := Truncate("short", 20); got != "short" {
		t.Fatalf("expected short input untouched, got %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
	got := Truncate("🐶🐶🐶🐶", 2)
	if !utf8.ValidString(got) || got != "🐶🐶" {
		t.Fatalf("expected two whole runes, got %q", got)
	}
}

func TestFor_LimitsCaption(t *testing.T) {
	got := For("<p>A very good dog sitting on the porch</p>")
	if got != "A very good dog sitt" {
		t.Fatalf("unexpected caption: %q", got)
	}
	if utf8.RuneCountInString(got) != MaxRunes {
		t.Fatalf("expected %d runes, got %d", MaxRunes, utf8.RuneCountInString(got))
	}
}

func FuzzText(f *testing.F) {
	for _, s := range []string{"", "<p>Hello</p>", "<<<<", "\x00<script>x</script>", "a &amp; b"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		if len(raw) > 4096 {
			raw = raw[:4096]
		}
		got := For(raw)
		if utf8.RuneCountInString(got) > MaxRunes {
			t.Fatalf("caption too long: %q", got)
		}
	})
}
