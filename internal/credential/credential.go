// Package credential holds and validates the per-session API keys that gate
// access to the model provider and the search provider.
//
// A credential is "connected" only when it is non-empty and carries the
// provider's required prefix. Failed validation never mutates stored state.
//
// Thread Safety: Store is not safe for concurrent use - the owning session
// must synchronize access.
package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Provider identifies a credentialed external service.
type Provider string

// Supported providers.
const (
	// ProviderOpenAI is the language model provider. Keys start with "sk-".
	ProviderOpenAI Provider = "openai"

	// ProviderTavily is the web search provider. Keys start with "tvly-".
	ProviderTavily Provider = "tavily"
)

// Required key prefixes per provider.
const (
	OpenAIKeyPrefix = "sk-"
	TavilyKeyPrefix = "tvly-"
)

// Sentinel errors for credential operations. Check with errors.Is().
var (
	// ErrInvalidFormat indicates a key is empty or lacks the required prefix.
	ErrInvalidFormat = errors.New("invalid credential format")

	// ErrUnknownProvider indicates the provider is not supported.
	ErrUnknownProvider = errors.New("unknown provider")
)

// prefixes maps each provider to its required key prefix.
var prefixes = map[Provider]string{
	ProviderOpenAI: OpenAIKeyPrefix,
	ProviderTavily: TavilyKeyPrefix,
}

// Store holds the two secrets for one session.
// The zero value is usable: both providers start disconnected.
type Store struct {
	keys map[Provider]string
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{keys: make(map[Provider]string)}
}

// Set validates and stores a credential for the given provider.
// Rejects empty values and values lacking the provider's required prefix
// with ErrInvalidFormat; prior state is left unchanged on rejection.
func (s *Store) Set(provider Provider, raw string) error {
	prefix, ok := prefixes[provider]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	if raw == "" {
		return fmt.Errorf("%w: %s key is empty", ErrInvalidFormat, provider)
	}
	if !strings.HasPrefix(raw, prefix) {
		return fmt.Errorf("%w: %s key must start with %q", ErrInvalidFormat, provider, prefix)
	}

	if s.keys == nil {
		s.keys = make(map[Provider]string)
	}
	s.keys[provider] = raw
	return nil
}

// Get returns the stored key for the provider, or "" if unset.
func (s *Store) Get(provider Provider) string {
	return s.keys[provider]
}

// Connected reports whether the provider has a non-empty, prefix-valid key.
func (s *Store) Connected(provider Provider) bool {
	key := s.keys[provider]
	return key != "" && strings.HasPrefix(key, prefixes[provider])
}

// AllConnected reports whether every supported provider is connected.
func (s *Store) AllConnected() bool {
	return s.Connected(ProviderOpenAI) && s.Connected(ProviderTavily)
}

// Reset clears both credentials. The owning session is responsible for
// discarding any agent handle built from them.
func (s *Store) Reset() {
	s.keys = make(map[Provider]string)
}
