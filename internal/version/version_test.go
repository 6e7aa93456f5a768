package version

import (
	"strings"
	"testing"
)

func TestInfoTruncatesCommit(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })
	Commit = "0123456789abcdef"

	got := Info()
	if !strings.Contains(got, "commit: 0123456,") {
		t.Errorf("Info() = %q, want a seven character commit", got)
	}
	if !strings.HasPrefix(got, "skillsim "+Short()) {
		t.Errorf("Info() = %q, want skillsim prefix", got)
	}
}
