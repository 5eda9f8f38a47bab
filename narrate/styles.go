package narrate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed styles.json
var defaultStylesJSON []byte

// Style is the phrasebook for one personality style tag. Lines and thoughts
// use {target} as the placeholder for the chosen name.
type Style struct {
	Key      string   `json:"style"`
	Lines    []string `json:"lines"`
	Thoughts []string `json:"thoughts"`
}

// StyleRegistry holds phrasebooks keyed by style tag.
type StyleRegistry struct {
	mu     sync.RWMutex
	styles map[string]*Style
}

func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{styles: make(map[string]*Style)}
}

// DefaultStyles returns a registry loaded with the built-in phrasebooks.
func DefaultStyles() *StyleRegistry {
	r := NewStyleRegistry()
	if err := r.LoadFromJSON(defaultStylesJSON); err != nil {
		panic(fmt.Sprintf("narrate: built-in styles: %v", err))
	}
	return r
}

// LoadFromFile loads phrasebooks from a JSON file, replacing styles with the
// same key.
func (r *StyleRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read styles file: %w", err)
	}
	return r.LoadFromJSON(data)
}

func (r *StyleRegistry) LoadFromJSON(data []byte) error {
	var list []*Style
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse styles JSON: %w", err)
	}
	for _, s := range list {
		if s.Key == "" {
			continue
		}
		if len(s.Lines) == 0 || len(s.Thoughts) == 0 {
			return fmt.Errorf("style %q needs at least one line and one thought", s.Key)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range list {
		if s.Key == "" {
			continue
		}
		r.styles[s.Key] = s
	}
	return nil
}

func (r *StyleRegistry) Get(key string) *Style {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.styles[key]
}

func (r *StyleRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.styles)
}

func fill(tmpl, target string) string {
	return strings.ReplaceAll(tmpl, "{target}", target)
}
