package version

import (
	"strings"
	"testing"
)

// stripANSI removes terminal escape sequences so the assembled version can
// be compared regardless of whether color output is enabled.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func TestVersionComposition(t *testing.T) {
	plain := stripANSI(Version)
	if plain != "0.2.0" {
		t.Fatalf("stripped version = %q, want %q", plain, "0.2.0")
	}
	parts := strings.Split(plain, ".")
	if len(parts) != 3 {
		t.Fatalf("version %q has %d components, want 3", plain, len(parts))
	}
	for _, part := range parts {
		if part == "" {
			t.Fatalf("version %q has an empty component", plain)
		}
	}
}

func TestBuildMetadataDefaults(t *testing.T) {
	// GitCommit and BuildDate are empty unless injected via ldflags.
	if GitCommit != "" {
		t.Fatalf("GitCommit = %q, want empty default", GitCommit)
	}
	if BuildDate != "" {
		t.Fatalf("BuildDate = %q, want empty default", BuildDate)
	}
}
