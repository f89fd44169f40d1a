package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ollamaDefaultModel   = "mxbai-embed-large"
	ollamaDefaultBaseURL = "http://localhost:11434"
	ollamaDims           = 512
)

// Ollama implements Embedder against the external provider contract: POST
// {endpoint}/api/embeddings with a single {model, prompt}, returning
// {embedding: [...]}. There is no batch endpoint, so a multi-text Embed
// call issues one request per text.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

func NewOllama(model, baseURL string) *Ollama {
	if model == "" {
		model = ollamaDefaultModel
	}
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &Ollama{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (o *Ollama) Dims() int    { return ollamaDims }
func (o *Ollama) Name() string { return "ollama-" + o.model + "-512" }

func (o *Ollama) Embed(texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := o.embedOne(text)
		if err != nil {
			return nil, fmt.Errorf("embedding: text %d: %w", i, err)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (o *Ollama) embedOne(prompt string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding: ollama returned %d: %s", resp.StatusCode, respBody)
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("embedding: unmarshal response: %w", err)
	}

	vec := result.Embedding
	if len(vec) > ollamaDims {
		vec = vec[:ollamaDims]
	}
	return vec, nil
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// probe performs the liveness check: GET {endpoint}/api/version with a
// 3-second timeout.
func (o *Ollama) probe() bool {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(o.baseURL + "/api/version")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
