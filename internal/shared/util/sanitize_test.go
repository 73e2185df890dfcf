package util

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "error.png", want: "error.png"},
		{in: "  Screenshot 2026-04-02 at 10.15.png ", want: "Screenshot 2026-04-02 at 10.15.png"},
		{in: "dir/sub\\error.png", want: "error.png"},
		{in: "../etc/passwd", want: "passwd"},
		{in: "C:\\Users\\me\\Desktop\\crash.jpg", want: "crash.jpg"},
		{in: "shot\n\x00.png", want: "shot.png"},
		{in: "ошибка.png", want: "ошибка.png"},
		{in: "..", wantErr: true},
		{in: "uploads/", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFileName) {
				t.Fatalf("SanitizeFileName(%q) err = %v, want ErrInvalidFileName", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("é", 300) + ".png")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if n := utf8.RuneCountInString(got); n != MaxFileNameRunes {
		t.Fatalf("expected %d runes, got %d", MaxFileNameRunes, n)
	}
}
