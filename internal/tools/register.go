package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/scoutchat/scout/internal/credential"
	"github.com/scoutchat/scout/internal/log"
)

// toolNames lists all registered tool names in registration order.
// Single source of truth to avoid duplication elsewhere.
var toolNames = []string{
	WebToolName,
	EncyclopediaToolName,
	PapersToolName,
}

// ToolNames returns all registered tool names.
func ToolNames() []string {
	names := make([]string, len(toolNames))
	copy(names, toolNames)
	return names
}

// New builds the closed set of search tools from validated credentials.
// Pure construction: no network calls happen here, so an unreachable
// external API fails the tool invocation, never the build.
func New(creds *credential.Store, logger log.Logger) ([]Tool, error) {
	if creds == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	web, err := NewWeb(WebConfig{
		APIKey: creds.Get(credential.ProviderTavily),
		Logger: logger.With("tool", WebToolName),
	})
	if err != nil {
		return nil, fmt.Errorf("creating web search tool: %w", err)
	}

	encyclopedia, err := NewEncyclopedia(EncyclopediaConfig{
		Logger: logger.With("tool", EncyclopediaToolName),
	})
	if err != nil {
		return nil, fmt.Errorf("creating encyclopedia tool: %w", err)
	}

	papers, err := NewPapers(PapersConfig{
		Logger: logger.With("tool", PapersToolName),
	})
	if err != nil {
		return nil, fmt.Errorf("creating papers tool: %w", err)
	}

	return []Tool{web, encyclopedia, papers}, nil
}

// Register registers the web, encyclopedia, and papers tools with Genkit
// and returns the registered references for ai.WithTools().
func Register(g *genkit.Genkit, creds *credential.Store, logger log.Logger) ([]ai.Tool, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}

	ts, err := New(creds, logger)
	if err != nil {
		return nil, err
	}

	registered := make([]ai.Tool, 0, len(ts))
	for _, t := range ts {
		registered = append(registered, defineTool(g, t))
	}
	return registered, nil
}

// defineTool wraps a Tool in a Genkit tool definition. Failures surface
// through the Result envelope (nil Go error) so a downstream outage becomes
// model-visible text instead of aborting the turn.
func defineTool(g *genkit.Genkit, t Tool) ai.Tool {
	return genkit.DefineTool(g, t.Name(), t.Description(),
		func(ctx *ai.ToolContext, input QueryInput) (Result, error) {
			return t.Run(ctx, input)
		})
}
