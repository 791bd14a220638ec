// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package assistant

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyhelper/studyhelper/internal/knowledge"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// Role is the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation shown to the user. Turns are never
// persisted.
type Turn struct {
	Role    Role
	Content string
	// Provenance is set on assistant turns only.
	Provenance string
	Source     Source
	Failed     bool
	At         time.Time
}

// Session is one interactive conversation. It owns the knowledge base loaded
// at start and the store it is saved to.
type Session struct {
	id       string
	store    knowledge.Store
	answerer *Answerer
	logger   *slog.Logger

	mu      sync.Mutex
	kb      *knowledge.Base
	history []Turn
	closed  bool
}

// NewSession loads the knowledge base from store and starts a session. An
// unreadable store is logged and replaced by an empty base.
func NewSession(ctx context.Context, store knowledge.Store, answerer *Answerer, logger *slog.Logger) *Session {
	id := uuid.NewString()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", id)

	kb, err := store.Load(ctx)
	if err != nil {
		logger.Warn("knowledge base unreadable, starting empty",
			"path", store.Location(),
			"code", sherr.CodeOf(err),
			"error", err,
		)
		kb = knowledge.NewBase()
	}
	logger.Info("session started", "records", kb.Len(), "path", store.Location())

	return &Session{
		id:       id,
		store:    store,
		answerer: answerer,
		logger:   logger,
		kb:       kb,
	}
}

// ID returns the session UUID.
func (s *Session) ID() string { return s.id }

// Label returns the display label of the remote model.
func (s *Session) Label() string { return s.answerer.Label().Source }

// Ask answers query and records both turns. The error is non-nil only for
// empty input, a closed session, or a failed save.
func (s *Session) Ask(ctx context.Context, query string) (Turn, error) {
	if strings.TrimSpace(query) == "" {
		return Turn{}, sherr.New(sherr.CodeAssistantInputInvalid, "question is empty", sherr.FieldSessionID(s.id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Turn{}, sherr.New(sherr.CodeAssistantSessionClosed, "session is closed", sherr.FieldSessionID(s.id))
	}

	n := len(s.history)
	s.history = append(s.history, Turn{Role: RoleUser, Content: query, At: time.Now()})

	res, err := s.answerer.Answer(ctx, query, s.kb)
	if err != nil {
		// A turn that could not be saved is not part of the conversation.
		s.history = s.history[:n]
		s.logger.Error("saving knowledge base failed", "path", s.store.Location(), "error", err)
		return Turn{}, sherr.With(err, sherr.FieldSessionID(s.id))
	}

	label := s.answerer.Label()
	turn := Turn{
		Role:       RoleAssistant,
		Content:    res.Message(label.Name),
		Provenance: res.Provenance(label.Source),
		Source:     res.Source,
		Failed:     res.Failed(),
		At:         time.Now(),
	}
	s.history = append(s.history, turn)
	return turn, nil
}

// History returns a copy of the turns so far.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// Knowledge returns the live knowledge base. It must not be modified while
// a question is being answered.
func (s *Session) Knowledge() *knowledge.Base {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kb
}

// Close releases the store. Calling it again is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("session closed", "turns", len(s.history), "records", s.kb.Len())
	return s.store.Close()
}
