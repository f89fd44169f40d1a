package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generator is the black-box generation provider contract: prompt in,
// text out.
type Generator interface {
	Generate(prompt string) (string, error)
}

const generateTimeout = 60 * time.Second

// OllamaGenerator implements Generator against POST {endpoint}/api/generate
// with {model, prompt, stream:false}, per §6. Grounded on the embedding
// package's Ollama HTTP client shape, adapted to the generation endpoint.
type OllamaGenerator struct {
	model   string
	baseURL string
	client  *http.Client
}

func NewOllamaGenerator(model, baseURL string) *OllamaGenerator {
	return &OllamaGenerator{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: generateTimeout},
	}
}

func (g *OllamaGenerator) Generate(prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("entity: marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("entity: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("entity: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("entity: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("entity: provider returned %d: %s", resp.StatusCode, respBody)
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("entity: unmarshal response: %w", err)
	}
	return result.Response, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
