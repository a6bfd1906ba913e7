package tools

import (
	"strings"
	"testing"

	"github.com/scoutchat/scout/internal/credential"
	"github.com/scoutchat/scout/internal/log"
)

func TestResultCaps(t *testing.T) {
	// The caps are functional contracts; agents and prompts depend on them.
	if WebMaxResults != 3 {
		t.Errorf("WebMaxResults = %d, want 3", WebMaxResults)
	}
	if LookupMaxResults != 2 {
		t.Errorf("LookupMaxResults = %d, want 2", LookupMaxResults)
	}
	if LookupContentMax != 500 {
		t.Errorf("LookupContentMax = %d, want 500", LookupContentMax)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "under budget", in: "short", max: 10, want: "short"},
		{name: "exactly at budget", in: "12345", max: 5, want: "12345"},
		{name: "over budget", in: "123456", max: 5, want: "12345..."},
		{name: "empty", in: "", max: 5, want: ""},
		{name: "multibyte runes counted not bytes", in: "héllo wörld", max: 5, want: "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestErrorResult(t *testing.T) {
	r := errorResult(ErrCodeUpstream, "boom")
	if r.Status != StatusError {
		t.Errorf("Status = %q, want %q", r.Status, StatusError)
	}
	if r.Error == nil {
		t.Fatal("Error is nil")
	}
	if r.Error.Code != ErrCodeUpstream {
		t.Errorf("Code = %q, want %q", r.Error.Code, ErrCodeUpstream)
	}
	if r.Error.Message != "boom" {
		t.Errorf("Message = %q, want %q", r.Error.Message, "boom")
	}
	if r.Content != "" {
		t.Errorf("Content = %q, want empty", r.Content)
	}
}

func TestNew(t *testing.T) {
	connected := credential.NewStore()
	if err := connected.Set(credential.ProviderOpenAI, "sk-test"); err != nil {
		t.Fatalf("Set(openai) error = %v", err)
	}
	if err := connected.Set(credential.ProviderTavily, "tvly-test"); err != nil {
		t.Fatalf("Set(tavily) error = %v", err)
	}

	tests := []struct {
		name    string
		creds   *credential.Store
		logger  log.Logger
		wantErr bool
	}{
		{name: "connected store", creds: connected, logger: log.NewNop()},
		{name: "missing tavily key", creds: credential.NewStore(), logger: log.NewNop(), wantErr: true},
		{name: "nil store", creds: nil, logger: log.NewNop(), wantErr: true},
		{name: "nil logger", creds: connected, logger: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := New(tt.creds, tt.logger)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if len(ts) != 3 {
				t.Fatalf("New() returned %d tools, want 3", len(ts))
			}

			wantNames := []string{WebToolName, EncyclopediaToolName, PapersToolName}
			for i, tool := range ts {
				if tool.Name() != wantNames[i] {
					t.Errorf("tool[%d].Name() = %q, want %q", i, tool.Name(), wantNames[i])
				}
				if tool.Description() == "" {
					t.Errorf("tool[%d] has empty description", i)
				}
			}
		})
	}
}

func TestToolNames(t *testing.T) {
	names := ToolNames()
	want := []string{WebToolName, EncyclopediaToolName, PapersToolName}
	if len(names) != len(want) {
		t.Fatalf("ToolNames() len = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ToolNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	// Mutating the returned slice must not affect later calls.
	names[0] = "mutated"
	if again := ToolNames(); again[0] != WebToolName {
		t.Errorf("ToolNames() after mutation = %q, want %q", again[0], WebToolName)
	}
}

func TestDescriptionsCarryRoutingIntent(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []string
	}{
		{name: "web", desc: WebToolDescription, want: []string{"current", "news", "web"}},
		{name: "encyclopedia", desc: EncyclopediaToolDescription, want: []string{"Wikipedia", "Who was", "What is"}},
		{name: "papers", desc: PapersToolDescription, want: []string{"ArXiv", "research", "Papers about"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, phrase := range tt.want {
				if !strings.Contains(tt.desc, phrase) {
					t.Errorf("description missing routing phrase %q", phrase)
				}
			}
		})
	}
}
