// Repeat-call detection over tool-call fingerprints.

package agent

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

const (
	// repeatWindow is how many trailing tool calls are inspected.
	repeatWindow = 10
	// identicalRunLen flags a run of identical calls.
	identicalRunLen = 4
	// alternatingLen flags an A-B-A-B cycle.
	alternatingLen = 6
)

// callSignature fingerprints one tool call by name and input.
func callSignature(name string, input json.RawMessage) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(input)
	return h.Sum64()
}

// repeatDetector watches the trailing window of tool-call signatures for
// degenerate repetition: the same call over and over, or a two-call cycle.
// Detection only warns and steers; termination stays with the turn budget.
type repeatDetector struct {
	sigs []uint64
}

func newRepeatDetector() *repeatDetector {
	return &repeatDetector{}
}

// Observe appends one call signature, keeping only the trailing window.
func (d *repeatDetector) Observe(name string, input json.RawMessage) {
	d.sigs = append(d.sigs, callSignature(name, input))
	if len(d.sigs) > repeatWindow {
		d.sigs = d.sigs[len(d.sigs)-repeatWindow:]
	}
}

// Repeating reports whether the trailing calls have degenerated into a
// repeating pattern.
func (d *repeatDetector) Repeating() bool {
	return d.identicalRun() || d.alternating()
}

// Reset clears the window, used after steering the model.
func (d *repeatDetector) Reset() {
	d.sigs = nil
}

func (d *repeatDetector) identicalRun() bool {
	if len(d.sigs) < identicalRunLen {
		return false
	}
	tail := d.sigs[len(d.sigs)-identicalRunLen:]
	for _, s := range tail[1:] {
		if s != tail[0] {
			return false
		}
	}
	return true
}

func (d *repeatDetector) alternating() bool {
	if len(d.sigs) < alternatingLen {
		return false
	}
	tail := d.sigs[len(d.sigs)-alternatingLen:]
	if tail[0] == tail[1] {
		return false
	}
	for i := 2; i < len(tail); i++ {
		if tail[i] != tail[i-2] {
			return false
		}
	}
	return true
}
