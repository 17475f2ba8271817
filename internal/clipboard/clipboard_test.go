package clipboard

import (
	"testing"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		excerpts []string
		want     string
	}{
		{"empty", nil, ""},
		{"single", []string{"Ethics matters"}, "Ethics matters\n"},
		{"trims and drops blanks", []string{"  Ethics matters ", "   ", "AI regulation"}, "Ethics matters\nAI regulation\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lines(tt.excerpts); got != tt.want {
				t.Errorf("Lines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		if err := Copy("x"); err != ErrUnavailable {
			t.Errorf("Copy() error = %v, want ErrUnavailable", err)
		}
		t.Skip("clipboard not available on this system")
	}
	if err := Copy("test clipboard content"); err != nil {
		t.Skipf("clipboard tool present but not usable: %v", err)
	}
}
