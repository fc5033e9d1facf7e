package ui

import (
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		code  int
		color string
		text  string
	}{
		{0, ColorDim, "HTTP -"},
		{200, ColorGreen, "HTTP 200"},
		{301, ColorYellow, "HTTP 301"},
		{404, ColorRed, "HTTP 404"},
		{503, ColorRed, "HTTP 503"},
	}
	for _, tt := range tests {
		got := Status(tt.code)
		if !strings.HasPrefix(got, tt.color) || !strings.Contains(got, tt.text) || !strings.HasSuffix(got, ColorReset) {
			t.Errorf("Status(%d) = %q", tt.code, got)
		}
	}
}
