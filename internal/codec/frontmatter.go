// Package codec implements the markdown-with-YAML-frontmatter encoding used
// to persist smaran entries to disk: a "---" fenced YAML block followed by
// a freeform body.
package codec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode splits YAML frontmatter (fenced by "---" lines) from the body.
// A file with no frontmatter fence yields a nil meta and the whole input
// as body. Malformed YAML inside the fence is returned as an error rather
// than silently discarded, since Decode (unlike the read-only memory-file
// loader it is grounded on) is also used to round-trip entries this
// process itself wrote.
func Decode(data []byte) (meta map[string]any, body string, err error) {
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		return nil, content, nil
	}

	end := strings.Index(content[4:], "\n---")
	if end < 0 {
		return nil, content, nil
	}

	yamlBlock := content[4 : 4+end]
	body = content[4+end+4:]
	body = strings.TrimLeft(body, "\n")

	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, "", fmt.Errorf("codec: parse frontmatter: %w", err)
	}
	return meta, body, nil
}

// Encode renders meta as a "---"-fenced YAML block followed by body. A nil
// or empty meta produces no frontmatter fence at all, so Encode(nil, body)
// round-trips through Decode back to (nil, body).
func Encode(meta map[string]any, body string) (string, error) {
	if len(meta) == 0 {
		return body, nil
	}
	yamlBytes, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("codec: marshal frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlBytes)
	b.WriteString("---\n")
	if body != "" && !strings.HasPrefix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(body)
	return b.String(), nil
}
