package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestToValidUTF8(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"café", "café"},
		{"caf\xe9", "café"},
		{"\x80 5", "€ 5"},
	}
	for _, tc := range cases {
		if got := ToValidUTF8(tc.in); got != tc.want {
			t.Errorf("ToValidUTF8(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripBOM(t *testing.T) {
	if got := StripBOM("\ufeffname,age"); got != "name,age" {
		t.Fatalf("got %q", got)
	}
	if got := StripBOM("name"); got != "name" {
		t.Fatalf("got %q", got)
	}
}

func TestULID(t *testing.T) {
	a, b := NewULID(), NewULID()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if a >= b {
		t.Fatalf("expected monotonic ids: %s >= %s", a, b)
	}
	if got := ShortID(a); len(got) != 7 || got != strings.ToLower(a[len(a)-7:]) {
		t.Fatalf("ShortID(%s) = %s", a, got)
	}
	if got := ShortID("AbC"); got != "abc" {
		t.Fatalf("ShortID(AbC) = %s", got)
	}
}

func TestFindGridFileFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := FindGridFileFrom(nested); !errors.Is(err, ErrNoGridFile) {
		t.Fatalf("expected ErrNoGridFile, got %v", err)
	}

	want := filepath.Join(root, GridFile)
	if err := os.WriteFile(want, []byte("[table]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindGridFileFrom(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestResolveRelative(t *testing.T) {
	grid := filepath.Join("proj", GridFile)
	if got := ResolveRelative(grid, "data/x.csv"); got != filepath.Join("proj", "data", "x.csv") {
		t.Fatalf("got %s", got)
	}
	if got := ResolveRelative(grid, "postgres://h/db"); got != "postgres://h/db" {
		t.Fatalf("got %s", got)
	}
}

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "a.csv")
	bin := filepath.Join(dir, "a.bin")
	os.WriteFile(text, []byte("a,b\n1,2\n"), 0o644)
	os.WriteFile(bin, []byte{'a', 0, 'b'}, 0o644)

	if isBin, err := IsBinaryFile(text); err != nil || isBin {
		t.Fatalf("text file: binary=%v err=%v", isBin, err)
	}
	if isBin, err := IsBinaryFile(bin); err != nil || !isBin {
		t.Fatalf("binary file: binary=%v err=%v", isBin, err)
	}
}

func TestInvalidGridError_ListsEveryCause(t *testing.T) {
	err := errors.Join(errors.New("first"), errors.New("second"))
	ge := InvalidGridError("grid.toml", err)

	if len(ge.Causes) != 2 {
		t.Fatalf("expected 2 causes, got %v", ge.Causes)
	}
	if !errors.Is(ge, err) {
		t.Fatal("expected wrapped error")
	}
	out := ge.Format()
	for _, want := range []string{"Invalid grid definition", "• first", "• second", "$ grid validate"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestRelativeTimeShort(t *testing.T) {
	ts := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		diff time.Duration
		want string
	}{
		{10 * time.Second, "now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{48 * time.Hour, "2d ago"},
		{-time.Hour, "now"},
		{30 * 24 * time.Hour, "Mar 5"},
		{400 * 24 * time.Hour, "Mar 5 2024"},
	}
	for _, tc := range cases {
		if got := relativeTimeShort(tc.diff, ts); got != tc.want {
			t.Errorf("relativeTimeShort(%v) = %q, want %q", tc.diff, got, tc.want)
		}
	}
}
