package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar_NonTTYOnlyPrintsOnCompletion(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(3, "Sorting images")
	p.SetWriter(buf)

	p.Increment()
	p.Increment()
	if buf.Len() != 0 {
		t.Errorf("non-TTY progress should stay silent before completion, got %q", buf.String())
	}

	p.Increment()
	out := buf.String()
	if !strings.Contains(out, "3/3") || !strings.Contains(out, "100%") {
		t.Errorf("completion line should show 3/3 and 100%%, got %q", out)
	}
	if !strings.Contains(out, "Sorting images") {
		t.Errorf("completion line should carry the description, got %q", out)
	}
}

func TestProgressBar_FinishDoesNotDuplicate(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(2, "Copying")
	p.SetWriter(buf)

	p.Increment()
	p.Increment()
	p.Finish()

	if got := strings.Count(buf.String(), "100%"); got != 1 {
		t.Errorf("100%% line emitted %d times, want 1\nOutput: %q", got, buf.String())
	}
}

func TestProgressBar_FinishFromPartial(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(4, "Copying")
	p.SetWriter(buf)

	p.Increment()
	p.Finish()

	if !strings.Contains(buf.String(), "4/4") {
		t.Errorf("Finish() should complete the bar, got %q", buf.String())
	}
}

func TestProgressBar_Overflow(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(1, "x")
	p.SetWriter(buf)

	p.Increment()
	p.Increment() // past total; must clamp, not panic

	if !strings.Contains(buf.String(), "1/1") {
		t.Errorf("overflow should clamp at total, got %q", buf.String())
	}
}

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Loading results")
	s.SetWriter(buf)

	s.Start()
	s.Start() // second Start is a no-op
	s.StopWithMessage("done")

	out := buf.String()
	if got := strings.Count(out, "Loading results..."); got != 1 {
		t.Errorf("message printed %d times, want 1\nOutput: %q", got, out)
	}
	if !strings.Contains(out, "done") {
		t.Errorf("final message missing, got %q", out)
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner("idle")
	s.SetWriter(&bytes.Buffer{})
	s.Stop() // must not panic or print
}
