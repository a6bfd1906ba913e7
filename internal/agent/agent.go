// Package agent builds and invokes the tool-calling chat agent.
//
// An Agent is built once per session from validated credentials and keeps a
// stable identity until the session resets. It is stateless across turns:
// every invocation receives the full conversation history and returns only
// the final text response.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"

	"github.com/scoutchat/scout/internal/credential"
	"github.com/scoutchat/scout/internal/log"
	"github.com/scoutchat/scout/internal/tools"
)

// Defaults applied when Config leaves the field zero.
const (
	// DefaultModelName is the provider-qualified chat model.
	DefaultModelName = "openai/gpt-4o-mini"

	// DefaultMaxTurns bounds the tool-calling loop per invocation.
	DefaultMaxTurns = 5
)

// fallbackResponse is returned when the model produces an empty final text.
const fallbackResponse = "I apologize, but I couldn't generate a response. " +
	"Please try rephrasing your question."

// Sentinel errors for agent operations. Check with errors.Is().
var (
	// ErrBuild indicates agent construction failed. Credentials that passed
	// format validation can still be rejected here by the provider.
	ErrBuild = errors.New("agent build failed")

	// ErrExecution indicates the model invocation failed.
	ErrExecution = errors.New("agent execution failed")
)

// Config contains the parameters for building an Agent.
type Config struct {
	// Creds must have both providers connected.
	Creds  *credential.Store
	Logger log.Logger

	ModelName string // empty = DefaultModelName
	MaxTurns  int    // zero = DefaultMaxTurns

	// Genkit overrides the per-agent Genkit instance, and Tools the
	// registered tool set. Both are for tests; production leaves them nil
	// and the agent initializes its own instance from Creds.
	Genkit *genkit.Genkit
	Tools  []ai.Tool
}

func (cfg Config) validate() error {
	if cfg.Creds == nil {
		return errors.New("credential store is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if !cfg.Creds.AllConnected() {
		return errors.New("both providers must be connected")
	}
	return nil
}

// Agent is a stateless tool-calling conversational agent.
//
// All configuration is captured immutably at construction, so a built Agent
// is safe for concurrent invocations. Model temperature is pinned to zero:
// tool routing must stay deterministic for a given history.
type Agent struct {
	g         *genkit.Genkit
	toolRefs  []ai.ToolRef
	modelName string
	maxTurns  int
	logger    log.Logger
}

// New builds the agent: initializes a Genkit instance against the model
// provider, registers the search tools, and captures the generation
// parameters. Each session owns its Agent because the provider key is
// session-scoped.
//
// Construction performs no network calls. A key that passes format
// validation but is rejected by the provider fails at invocation time.
func New(ctx context.Context, cfg Config) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = DefaultModelName
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	g := cfg.Genkit
	if g == nil {
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{
			APIKey: cfg.Creds.Get(credential.ProviderOpenAI),
		}))
		if g == nil {
			return nil, fmt.Errorf("%w: initializing genkit with openai provider", ErrBuild)
		}
	}

	registered := cfg.Tools
	if registered == nil {
		var err error
		registered, err = tools.Register(g, cfg.Creds, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBuild, err)
		}
	}

	toolRefs := make([]ai.ToolRef, len(registered))
	names := make([]string, len(registered))
	for i, t := range registered {
		toolRefs[i] = t
		names[i] = t.Name()
	}

	a := &Agent{
		g:         g,
		toolRefs:  toolRefs,
		modelName: modelName,
		maxTurns:  maxTurns,
		logger:    cfg.Logger,
	}

	a.logger.Info("agent built",
		"model", modelName,
		"maxTurns", maxTurns,
		"tools", names,
	)
	return a, nil
}

// Invoke runs one conversational turn. The caller supplies the full history
// including the current user message; the agent holds no conversational
// state of its own.
func (a *Agent) Invoke(ctx context.Context, history []*ai.Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("%w: history is empty", ErrExecution)
	}

	a.logger.Debug("invoking agent",
		"model", a.modelName,
		"messages", len(history),
	)

	resp, err := genkit.Generate(ctx, a.g,
		ai.WithModelName(a.modelName),
		ai.WithMessages(deepCopyMessages(history)...),
		ai.WithTools(a.toolRefs...),
		ai.WithMaxTurns(a.maxTurns),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: 0}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecution, err)
	}

	text := resp.Text()
	if text == "" {
		a.logger.Warn("model returned empty response")
		return fallbackResponse, nil
	}
	return text, nil
}

// deepCopyMessages creates independent copies of Message and Part structs.
//
// WORKAROUND: Genkit's renderMessages() modifies msg.Content in-place,
// causing data races when concurrent invocations share message objects.
// Tested version: github.com/firebase/genkit/go v1.4.0.
func deepCopyMessages(msgs []*ai.Message) []*ai.Message {
	if msgs == nil {
		return nil
	}
	copied := make([]*ai.Message, len(msgs))
	for i, msg := range msgs {
		parts := make([]*ai.Part, len(msg.Content))
		for j, part := range msg.Content {
			p := *part
			parts[j] = &p
		}
		copied[i] = &ai.Message{
			Role:    msg.Role,
			Content: parts,
		}
	}
	return copied
}
