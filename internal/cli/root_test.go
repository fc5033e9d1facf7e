package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/law-makers/vision-researcher/internal/ui"
)

func TestAuditArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"valid", []string{"https://example.com", "Is there a logo?", "3"}, false},
		{"too few", []string{"https://example.com", "prompt"}, true},
		{"too many", []string{"https://example.com", "prompt", "3", "x"}, true},
		{"relative url", []string{"example.com", "prompt", "3"}, true},
		{"ftp url", []string{"ftp://example.com", "prompt", "3"}, true},
		{"blank prompt", []string{"https://example.com", "   ", "3"}, true},
		{"zero budget", []string{"https://example.com", "prompt", "0"}, true},
		{"negative budget", []string{"https://example.com", "prompt", "-2"}, true},
		{"non-numeric budget", []string{"https://example.com", "prompt", "many"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auditArgs(rootCmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("auditArgs(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"https://example.com":               "example.com",
		"https://example.com/":              "example.com",
		"https://example.com/docs/intro":    "example.com_docs_intro",
		"https://example.com/search?q=a&b=2": "example.com_search_q_a_b_2",
		"https://sub.example.com:8080/a.b/": "sub.example.com_a.b",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:         "512 B",
		2048:        "2.0 KB",
		5 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"capture", "usage", "keys"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("expected %q subcommand, got %v (%v)", name, c, err)
		}
	}
}

func TestHelp_Root(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	customHelpFunc(rootCmd, nil)
	out := buf.String()

	for _, want := range []string{
		"VISION-RESEARCHER",
		"$ vision-researcher https://example.com",
		"capture",
		"keys",
		"--band-height",
		"SCREENSHOTONE_API_KEY",
		"OPENAI_API_KEY",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestHelp_SubcommandHasNoEnvironment(t *testing.T) {
	var buf bytes.Buffer
	usageCmd.SetOut(&buf)
	defer usageCmd.SetOut(nil)

	customHelpFunc(usageCmd, nil)
	if strings.Contains(buf.String(), "Environment") {
		t.Error("environment section belongs to the root help only")
	}
	if !strings.Contains(buf.String(), "Global Flags") {
		t.Error("expected inherited flags on a subcommand")
	}
}

func TestPrintFlagsTo(t *testing.T) {
	var buf bytes.Buffer
	printFlagsTo(&buf, "  -o, --output string   Write the report\n      second line\n      --json   JSON only\n")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	// descriptions start in the same column
	first := strings.Index(lines[0], ui.ColorDim)
	third := strings.Index(lines[2], ui.ColorDim)
	if first != third || first < 0 {
		t.Errorf("expected aligned descriptions, got %q and %q", lines[0], lines[2])
	}
	if !strings.Contains(lines[1], "second line") {
		t.Errorf("expected continuation line, got %q", lines[1])
	}
}
