package credential

import (
	"errors"
	"testing"
)

func TestSet_ValidKeys(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		key      string
	}{
		{name: "openai", provider: ProviderOpenAI, key: "sk-proj-abc123"},
		{name: "openai_bare_prefix_suffix", provider: ProviderOpenAI, key: "sk-x"},
		{name: "tavily", provider: ProviderTavily, key: "tvly-abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if err := s.Set(tt.provider, tt.key); err != nil {
				t.Fatalf("Set(%s, %q) error = %v", tt.provider, tt.key, err)
			}
			if !s.Connected(tt.provider) {
				t.Errorf("Connected(%s) = false after valid Set", tt.provider)
			}
			if got := s.Get(tt.provider); got != tt.key {
				t.Errorf("Get(%s) = %q, want %q", tt.provider, got, tt.key)
			}
		})
	}
}

func TestSet_InvalidFormat(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		key      string
	}{
		{name: "empty_openai", provider: ProviderOpenAI, key: ""},
		{name: "empty_tavily", provider: ProviderTavily, key: ""},
		{name: "missing_prefix", provider: ProviderOpenAI, key: "proj-abc123"},
		{name: "wrong_provider_prefix", provider: ProviderOpenAI, key: "tvly-abc123"},
		{name: "tavily_with_openai_prefix", provider: ProviderTavily, key: "sk-abc123"},
		{name: "prefix_not_at_start", provider: ProviderOpenAI, key: "xsk-abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			err := s.Set(tt.provider, tt.key)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("Set(%s, %q) error = %v, want ErrInvalidFormat", tt.provider, tt.key, err)
			}
			if s.Connected(tt.provider) {
				t.Errorf("Connected(%s) = true after rejected Set", tt.provider)
			}
		})
	}
}

func TestSet_RejectionLeavesStateUnchanged(t *testing.T) {
	s := NewStore()
	if err := s.Set(ProviderOpenAI, "sk-original"); err != nil {
		t.Fatalf("Set(valid) error = %v", err)
	}

	if err := s.Set(ProviderOpenAI, "bogus"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("Set(invalid) error = %v, want ErrInvalidFormat", err)
	}

	if got := s.Get(ProviderOpenAI); got != "sk-original" {
		t.Errorf("Get() = %q after rejected Set, want original key preserved", got)
	}
}

func TestSet_UnknownProvider(t *testing.T) {
	s := NewStore()
	if err := s.Set(Provider("brave"), "key"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Set(unknown provider) error = %v, want ErrUnknownProvider", err)
	}
}

func TestReset_DisconnectsBothProviders(t *testing.T) {
	s := NewStore()
	if err := s.Set(ProviderOpenAI, "sk-abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ProviderTavily, "tvly-abc"); err != nil {
		t.Fatal(err)
	}
	if !s.AllConnected() {
		t.Fatal("AllConnected() = false with both keys set")
	}

	s.Reset()

	if s.Connected(ProviderOpenAI) {
		t.Error("Connected(openai) = true after Reset")
	}
	if s.Connected(ProviderTavily) {
		t.Error("Connected(tavily) = true after Reset")
	}
}

func TestReset_OnEmptyStore(t *testing.T) {
	s := NewStore()
	s.Reset() // must not panic

	if s.AllConnected() {
		t.Error("AllConnected() = true on empty store")
	}
}

func TestZeroValueStore(t *testing.T) {
	var s Store
	if s.Connected(ProviderOpenAI) {
		t.Error("zero-value store reports connected")
	}
	if err := s.Set(ProviderOpenAI, "sk-abc"); err != nil {
		t.Fatalf("Set on zero-value store error = %v", err)
	}
	if !s.Connected(ProviderOpenAI) {
		t.Error("Connected = false after Set on zero-value store")
	}
}
