// Package providers implements the translation adapters for the supported
// LLM backends and the registry the router dispatches through.
package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind identifies a provider backend. It is also the model id prefix.
type Kind string

const (
	KindOpenAI     Kind = "openai"
	KindAnthropic  Kind = "anthropic"
	KindOpenRouter Kind = "openrouter"
)

var (
	// ErrUnrecognizedProvider is returned when a model id carries no known provider prefix.
	ErrUnrecognizedProvider = errors.New("unrecognized provider")
	// ErrUnsupportedProvider is returned when a known provider has no registered adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Kinds returns the closed set of provider kinds
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindAnthropic, KindOpenRouter}
}

// ResolveKind maps a model id of the form "<kind>/<model>" to its provider.
// The prefix match is exact and case-sensitive.
func ResolveKind(modelID string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.HasPrefix(modelID, string(k)+"/") {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedProvider, modelID)
}

// ModelName strips the provider prefix from a model id.
// "openrouter/openai/gpt-4o-mini" becomes "openai/gpt-4o-mini".
func ModelName(modelID string) string {
	if _, rest, ok := strings.Cut(modelID, "/"); ok {
		return rest
	}
	return modelID
}

// Adapter defines the contract every provider backend implements
type Adapter interface {
	// Kind returns the provider this adapter serves
	Kind() Kind
	// Translate performs exactly one completion call and normalizes the result.
	// Failures are always returned as *TranslationError.
	Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error)
	// TestConnection probes the provider with the given key. It never fails loudly.
	TestConnection(ctx context.Context, apiKey string) bool
}

// Registry holds the adapters available to a router
type Registry struct {
	mu       sync.RWMutex
	adapters map[Kind]Adapter
}

// NewRegistry creates a registry populated with the given adapters
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[Kind]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for its kind
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Kind()] = a
}

// Get returns the adapter registered for kind
func (r *Registry) Get(kind Kind) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, kind)
	}
	return a, nil
}

// List returns the registered kinds in sorted order
func (r *Registry) List() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Kind, 0, len(r.adapters))
	for k := range r.adapters {
		list = append(list, k)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Endpoints overrides provider base URLs. Empty fields keep the defaults.
type Endpoints struct {
	OpenAI     string
	Anthropic  string
	OpenRouter string
}

// NewDefaultRegistry builds a registry with all three built-in adapters
func NewDefaultRegistry(endpoints Endpoints, opts ...Option) *Registry {
	with := func(base string) []Option {
		if base == "" {
			return opts
		}
		return append(append([]Option{}, opts...), WithBaseURL(base))
	}
	return NewRegistry(
		NewOpenAI(with(endpoints.OpenAI)...),
		NewAnthropic(with(endpoints.Anthropic)...),
		NewOpenRouter(with(endpoints.OpenRouter)...),
	)
}
