package agent

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestRepeatDetectorIdenticalRun(t *testing.T) {
	d := newRepeatDetector()
	args := json.RawMessage(`{"command":"ls"}`)

	for i := 0; i < identicalRunLen-1; i++ {
		d.Observe("execute_shell", args)
		if d.Repeating() {
			t.Fatalf("should not trip before %d identical calls", identicalRunLen)
		}
	}
	d.Observe("execute_shell", args)
	if !d.Repeating() {
		t.Errorf("expected detection after %d identical calls", identicalRunLen)
	}
}

func TestRepeatDetectorDistinctCalls(t *testing.T) {
	d := newRepeatDetector()
	for i := 0; i < repeatWindow; i++ {
		d.Observe("read_file", json.RawMessage(fmt.Sprintf(`{"path":"f%d"}`, i)))
	}
	if d.Repeating() {
		t.Error("distinct calls must not be flagged")
	}
}

func TestRepeatDetectorAlternating(t *testing.T) {
	d := newRepeatDetector()
	a := json.RawMessage(`{"path":"a"}`)
	b := json.RawMessage(`{"path":"b"}`)

	for i := 0; i < alternatingLen; i++ {
		if i%2 == 0 {
			d.Observe("read_file", a)
		} else {
			d.Observe("read_file", b)
		}
	}
	if !d.Repeating() {
		t.Error("expected detection of A-B alternating cycle")
	}
}

func TestRepeatDetectorSameNameDifferentInput(t *testing.T) {
	d := newRepeatDetector()
	d.Observe("execute_shell", json.RawMessage(`{"command":"ls"}`))
	d.Observe("execute_shell", json.RawMessage(`{"command":"pwd"}`))
	d.Observe("execute_shell", json.RawMessage(`{"command":"ls -la"}`))
	d.Observe("execute_shell", json.RawMessage(`{"command":"cat go.mod"}`))
	if d.Repeating() {
		t.Error("same tool with varying input must not be flagged")
	}
}

func TestRepeatDetectorReset(t *testing.T) {
	d := newRepeatDetector()
	args := json.RawMessage(`{}`)
	for i := 0; i < identicalRunLen; i++ {
		d.Observe("list_dir", args)
	}
	if !d.Repeating() {
		t.Fatal("precondition: detector should be tripped")
	}
	d.Reset()
	if d.Repeating() {
		t.Error("reset should clear the window")
	}
}

func TestCallSignatureStability(t *testing.T) {
	a := callSignature("read_file", json.RawMessage(`{"path":"x"}`))
	b := callSignature("read_file", json.RawMessage(`{"path":"x"}`))
	if a != b {
		t.Error("identical calls must hash identically")
	}
	c := callSignature("write_file", json.RawMessage(`{"path":"x"}`))
	if a == c {
		t.Error("different tool names must hash differently")
	}
}
