package llm

import (
	"fmt"
	"sync"
	"testing"
)

func TestGeminiCallNamesConcurrentAccess(t *testing.T) {
	p := &GeminiProvider{callNames: make(map[string]string)}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("call-%d-%d", g, i)
				p.rememberCallName(id, "list_dir")
				if got := p.callName(id); got != "list_dir" {
					t.Errorf("callName(%q) = %q, want list_dir", id, got)
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestGeminiCallNameUnknownID(t *testing.T) {
	p := &GeminiProvider{callNames: make(map[string]string)}
	if got := p.callName("never-seen"); got != "" {
		t.Errorf("expected empty name for unknown id, got %q", got)
	}
}
