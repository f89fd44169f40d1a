package embedding

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
)

// NewFromProvider constructs an Embedder by provider name.
// "auto" (default) tries ollama first, falls back to openai.
// "ollama": model and baseURL are optional (defaults apply).
// "openai": reads OPENAI_API_KEY from environment.
func NewFromProvider(provider, model, baseURL string) (Embedder, error) {
	switch provider {
	case "auto", "":
		if ollamaReachable(baseURL) {
			return NewOllama(model, baseURL), nil
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return NewOpenAI(key), nil
		}
		return nil, fmt.Errorf("no embedder available — install ollama or set OPENAI_API_KEY")
	case "ollama":
		return NewOllama(model, baseURL), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return NewOpenAI(key), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q (available: auto, ollama, openai)", provider)
	}
}

// availability memoizes the ollama liveness probe so repeated calls to
// NewFromProvider("auto", ...) in a hot path don't each pay a network round
// trip. resetAvailability clears the memo, for tests that spin up a fresh
// httptest server per case.
var availability = struct {
	sync.Mutex
	checked map[string]bool
	result  map[string]bool
}{
	checked: make(map[string]bool),
	result:  make(map[string]bool),
}

func ollamaReachable(baseURL string) bool {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}

	availability.Lock()
	if availability.checked[baseURL] {
		r := availability.result[baseURL]
		availability.Unlock()
		return r
	}
	availability.Unlock()

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(baseURL + "/api/version")
	reachable := err == nil
	if reachable {
		resp.Body.Close()
		reachable = resp.StatusCode == http.StatusOK
	}

	availability.Lock()
	availability.checked[baseURL] = true
	availability.result[baseURL] = reachable
	availability.Unlock()

	return reachable
}

// resetAvailability clears the memoized liveness results. Tests that stand
// up a new Ollama stub per case must call this first, since the same
// baseURL string would otherwise be reused across httptest servers.
func resetAvailability() {
	availability.Lock()
	defer availability.Unlock()
	availability.checked = make(map[string]bool)
	availability.result = make(map[string]bool)
}
