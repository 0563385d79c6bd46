// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"  free_page   0x1000 ", []string{"free_page", "0x1000"}},
		{"help", []string{"help"}},
		{"\tpage_status\r\n0x2000\n", []string{"page_status", "0x2000"}},
		{"a b\x00c d", []string{"a", "b"}},
		{"", nil},
		{" \t\r\n ", nil},
	}
	for _, test := range tests {
		buf := []byte(test.line)
		got, err := Tokenize(buf, MaxArgs)
		if err != nil {
			t.Errorf("Tokenize(%q): %v", test.line, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", test.line, got, test.want)
		}
	}
}

func TestTokenizeClearsWhitespace(t *testing.T) {
	buf := []byte(" ab\tc ")
	if _, err := Tokenize(buf, MaxArgs); err != nil {
		t.Fatal(err)
	}
	if got, want := string(buf), "\x00ab\x00c\x00"; got != want {
		t.Errorf("buffer after Tokenize is %q, want %q", got, want)
	}
}

func TestTokenizeLimit(t *testing.T) {
	line := strings.Repeat("x ", 4)
	got, err := Tokenize([]byte(line), 4)
	if err != nil || len(got) != 4 {
		t.Fatalf("4 arguments with limit 4: %q, %v", got, err)
	}
	got, err = Tokenize([]byte(line+"y"), 4)
	if !errors.Is(err, ErrTooManyArgs) || got != nil {
		t.Fatalf("5 arguments with limit 4: %q, %v", got, err)
	}
}
