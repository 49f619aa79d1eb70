package cmd

import (
	"bytes"
	"testing"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	if want := "recase dev (commit: none, built: unknown)\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
