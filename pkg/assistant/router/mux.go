// Package router selects among multiple registered assistant.Client
// adapters by name, so the Agent can be pointed at OpenAI or Gemini (or a
// test fake) purely through configuration.
package router

import (
	"context"
	"fmt"

	"github.com/xpanvictor/xarvis/pkg/assistant"
)

// AdapterPack names one registered provider.
type AdapterPack struct {
	Name   string
	Client assistant.Client
}

// Mux implements assistant.Client itself, dispatching every call to
// whichever adapter its policy selects. A single-adapter Mux (the common
// case today) always selects that one adapter.
type Mux struct {
	adapters map[string]assistant.Client
	active   string
}

// NewMux builds a Mux preloaded with the given adapters, defaulting the
// active provider to the first pack.
func NewMux(packs ...AdapterPack) (*Mux, error) {
	if len(packs) == 0 {
		return nil, fmt.Errorf("router: at least one adapter is required")
	}
	m := &Mux{adapters: make(map[string]assistant.Client, len(packs))}
	for _, p := range packs {
		m.adapters[p.Name] = p.Client
	}
	m.active = packs[0].Name
	return m, nil
}

// Use switches the active provider for subsequent Complete calls.
func (m *Mux) Use(name string) error {
	if _, ok := m.adapters[name]; !ok {
		return fmt.Errorf("router: unknown adapter %q", name)
	}
	m.active = name
	return nil
}

func (m *Mux) Complete(ctx context.Context, req assistant.CompletionRequest) (assistant.CompletionResult, error) {
	client, ok := m.adapters[m.active]
	if !ok {
		return assistant.CompletionResult{}, fmt.Errorf("router: no adapter registered for %q", m.active)
	}
	return client.Complete(ctx, req)
}

var _ assistant.Client = (*Mux)(nil)
