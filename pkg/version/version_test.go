package version

import "testing"

func TestString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	if got := String(); got != "v1.2.3" {
		t.Errorf("String() = %q", got)
	}

	Version = ""
	if got := String(); got == "" {
		t.Error("String() must fall back to a non-empty version")
	}
}
