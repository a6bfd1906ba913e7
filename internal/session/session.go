// Package session owns per-conversation state: the credential store, the
// lazily built agent, and the append-only message history.
//
// A Session serializes its turns. The agent is built at most once per
// credential set and keeps a stable identity until the credentials change
// or the session resets.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/scoutchat/scout/internal/credential"
	"github.com/scoutchat/scout/internal/log"
)

// DefaultTurnTimeout bounds a single conversational turn, including any
// tool calls the model makes along the way.
const DefaultTurnTimeout = 2 * time.Minute

// Sentinel errors for session operations. Check with errors.Is().
var (
	// ErrNotConnected indicates a chat was attempted before both providers
	// were connected.
	ErrNotConnected = errors.New("both API keys must be connected before chatting")

	// ErrTurnTimeout indicates a turn exceeded the configured time budget.
	ErrTurnTimeout = errors.New("turn timed out")

	// ErrEmptyInput indicates a blank chat message.
	ErrEmptyInput = errors.New("message is empty")
)

// Invoker runs one conversational turn over the full history.
// *agent.Agent satisfies this; tests substitute their own.
type Invoker interface {
	Invoke(ctx context.Context, history []*ai.Message) (string, error)
}

// BuildFunc builds an agent from connected credentials.
type BuildFunc func(ctx context.Context, creds *credential.Store) (Invoker, error)

// Config contains the parameters for creating a Session.
type Config struct {
	Build  BuildFunc
	Logger log.Logger

	// TurnTimeout bounds each Submit call. Zero = DefaultTurnTimeout.
	TurnTimeout time.Duration
}

func (cfg Config) validate() error {
	if cfg.Build == nil {
		return errors.New("build func is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Session is one user conversation.
type Session struct {
	ID uuid.UUID

	// turnMu serializes Submit and Reset so turns never interleave.
	turnMu sync.Mutex

	// mu guards creds, agent, and lastActive. Held briefly; never across
	// a model invocation.
	mu         sync.Mutex
	creds      *credential.Store
	agent      Invoker
	lastActive time.Time

	history     *History
	build       BuildFunc
	turnTimeout time.Duration
	logger      log.Logger
}

// New creates an empty session: no credentials, no agent, no history.
func New(cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}

	id := uuid.New()
	return &Session{
		ID:          id,
		creds:       credential.NewStore(),
		history:     NewHistory(),
		build:       cfg.Build,
		turnTimeout: timeout,
		logger:      cfg.Logger.With("session_id", id),
		lastActive:  time.Now(),
	}, nil
}

// SetCredential validates and stores a provider key.
// Changing a key discards any built agent so the next turn rebuilds
// against the new credentials; history is preserved.
func (s *Session) SetCredential(provider credential.Provider, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.creds.Get(provider) != key
	if err := s.creds.Set(provider, key); err != nil {
		return err
	}

	if changed && s.agent != nil {
		s.agent = nil
		s.logger.Info("credentials changed, discarding agent", "provider", provider)
	}
	s.lastActive = time.Now()
	return nil
}

// Status is the connection snapshot the UI renders.
type Status struct {
	OpenAIConnected bool `json:"openai_connected"`
	TavilyConnected bool `json:"tavily_connected"`
	Ready           bool `json:"ready"`
	MessageCount    int  `json:"message_count"`
}

// Status reports per-provider connection state and readiness.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	openai := s.creds.Connected(credential.ProviderOpenAI)
	tavily := s.creds.Connected(credential.ProviderTavily)
	return Status{
		OpenAIConnected: openai,
		TavilyConnected: tavily,
		Ready:           openai && tavily,
		MessageCount:    s.history.Count(),
	}
}

// History returns the rendered transcript.
func (s *Session) History() []Entry {
	return s.history.Entries()
}

// Submit runs one turn: ensures the agent exists, invokes it with the full
// history plus the new user message, and appends the exchange on success.
//
// A failed or timed-out turn appends nothing - the history never holds a
// user message without its assistant response.
func (s *Session) Submit(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", ErrEmptyInput
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	agent, err := s.ensureAgent(ctx)
	if err != nil {
		return "", err
	}

	messages := append(s.history.Messages(), ai.NewUserMessage(ai.NewTextPart(input)))

	turnCtx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	start := time.Now()
	reply, err := agent.Invoke(turnCtx, messages)
	if err != nil {
		if turnCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			s.logger.Warn("turn timed out", "timeout", s.turnTimeout)
			return "", fmt.Errorf("%w after %s", ErrTurnTimeout, s.turnTimeout)
		}
		s.logger.Warn("turn failed", "error", err)
		return "", err
	}

	s.history.Add(input, reply)
	s.touch()

	s.logger.Info("turn completed",
		"duration", time.Since(start),
		"messages", s.history.Count(),
	)
	return reply, nil
}

// ensureAgent builds the agent on first use after both providers connect.
func (s *Session) ensureAgent(ctx context.Context) (Invoker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.creds.AllConnected() {
		return nil, ErrNotConnected
	}
	if s.agent != nil {
		return s.agent, nil
	}

	agent, err := s.build(ctx, s.creds)
	if err != nil {
		return nil, err
	}
	s.agent = agent
	s.logger.Info("agent ready")
	return agent, nil
}

// Reset clears credentials, discards the agent, and clears the history.
// The session returns to its initial disconnected state. Waits for any
// in-flight turn to finish first.
func (s *Session) Reset() {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	s.creds.Reset()
	s.agent = nil
	s.lastActive = time.Now()
	s.mu.Unlock()

	s.history.Clear()
	s.logger.Info("session reset")
}

// LastActive returns the time of the last credential change or completed
// turn. Used by the manager for idle eviction.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}
