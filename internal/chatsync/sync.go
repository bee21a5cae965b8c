// Package chatsync keeps the ordered message sequence of one chat session.
//
// A session sees its own neighborhood channel, or the global channel when it
// has no neighborhood. Messages reach the sequence from two producers: Send,
// which appends an optimistic copy before the store has seen it, and Receive,
// which is fed from the realtime change feed. Optimistic entries are matched
// with their confirmed copy through the client idempotency token.
package chatsync

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johndosdos/atalaia/internal/model"
)

// Session is the identity a synchronizer acts for.
type Session struct {
	UserID         uuid.UUID
	Username       string
	Role           model.Role
	NeighborhoodID *uuid.UUID
}

// Submitter hands a message to the backing store.
type Submitter interface {
	Submit(ctx context.Context, msg model.ChatMessage) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, msg model.ChatMessage) error

func (f SubmitterFunc) Submit(ctx context.Context, msg model.ChatMessage) error {
	return f(ctx, msg)
}

// Draft is what a caller wants to send.
type Draft struct {
	Content     string
	ClientMsgID string
	AlertType   model.AlertType
	Image       string
}

// Outcome says what Receive did with an inbound message.
type Outcome int

const (
	// Discarded means the message belongs to another channel.
	Discarded Outcome = iota
	// Duplicate means a message with the same ID is already displayed.
	Duplicate
	// Appended means the message was added at the end of the sequence.
	Appended
	// Confirmed means the message replaced a pending optimistic entry.
	Confirmed
)

func (o Outcome) String() string {
	switch o {
	case Discarded:
		return "discarded"
	case Duplicate:
		return "duplicate"
	case Appended:
		return "appended"
	case Confirmed:
		return "confirmed"
	}
	return "unknown"
}

// Update is the result of Receive.
type Update struct {
	Outcome Outcome
	Message model.ChatMessage
	// TempID is the identifier of the optimistic entry a confirmation
	// replaced or dropped.
	TempID uuid.UUID
}

// Visible reports whether the update changed the sequence.
func (u Update) Visible() bool {
	return u.Outcome == Appended || u.Outcome == Confirmed
}

// Synchronizer owns one session's message sequence.
type Synchronizer struct {
	mu        sync.Mutex
	session   Session
	messages  []model.ChatMessage
	byID      map[uuid.UUID]int
	pending   map[string]int
	// confirmed holds the tokens of this session's messages the store has
	// already accepted.
	confirmed map[string]struct{}

	submitter Submitter
	logger    *slog.Logger
	newID     func() uuid.UUID
	now       func() time.Time
	inflight  sync.WaitGroup
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for failed submissions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithIDGenerator overrides uuid.New for temporary identifiers and tokens.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *Synchronizer) { s.newID = gen }
}

// New returns an empty synchronizer for session.
func New(session Session, submitter Submitter, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		session:   session,
		byID:      make(map[uuid.UUID]int),
		pending:   make(map[string]int),
		confirmed: make(map[string]struct{}),
		submitter: submitter,
		logger:    slog.Default(),
		newID:     uuid.New,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accepts reports whether a message scoped to msgHood belongs to a session
// scoped to sessionHood: the associations are equal, or both are absent.
func Accepts(sessionHood, msgHood *uuid.UUID) bool {
	return model.SameNeighborhood(sessionHood, msgHood)
}

// Session returns the session the synchronizer acts for.
func (s *Synchronizer) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Load replaces the sequence with history. Messages outside the session's
// channel and repeated identifiers are dropped.
func (s *Synchronizer) Load(history []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	for _, msg := range history {
		if !Accepts(s.session.NeighborhoodID, msg.NeighborhoodID) {
			continue
		}
		if _, ok := s.byID[msg.ID]; ok {
			continue
		}
		s.appendLocked(msg)
	}
}

// Send appends an optimistic message and submits it in the background. It
// returns false and leaves the sequence untouched when there is nothing to
// send.
func (s *Synchronizer) Send(ctx context.Context, d Draft) (model.ChatMessage, bool) {
	content := strings.TrimSpace(d.Content)
	if content == "" && d.AlertType != "" {
		content = d.AlertType.DefaultText()
	}
	if content == "" {
		return model.ChatMessage{}, false
	}

	s.mu.Lock()
	token := d.ClientMsgID
	if token == "" {
		token = s.newID().String()
	}
	if s.tokenUsedLocked(token) {
		s.mu.Unlock()
		return model.ChatMessage{}, false
	}

	msg := model.ChatMessage{
		ID:             s.newID(),
		NeighborhoodID: s.session.NeighborhoodID,
		UserID:         s.session.UserID,
		Username:       s.session.Username,
		UserRole:       s.session.Role,
		Content:        content,
		CreatedAt:      s.now(),
		IsSystemAlert:  d.AlertType != "",
		AlertType:      d.AlertType,
		Image:          d.Image,
		ClientMsgID:    token,
		Pending:        true,
	}
	s.appendLocked(msg)
	s.pending[token] = len(s.messages) - 1
	s.mu.Unlock()

	if s.submitter == nil {
		return msg, true
	}

	out := msg
	out.Pending = false
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.submitter.Submit(ctx, out); err != nil {
			s.logger.WarnContext(ctx, "chat message submission failed",
				slog.String("client_msg_id", out.ClientMsgID),
				slog.String("user_id", out.UserID.String()),
				slog.Any("error", err))
		}
	}()

	return msg, true
}

// Receive merges a message from the realtime feed into the sequence.
func (s *Synchronizer) Receive(msg model.ChatMessage) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !Accepts(s.session.NeighborhoodID, msg.NeighborhoodID) {
		return Update{Outcome: Discarded, Message: msg}
	}

	msg.Pending = false
	if msg.ClientMsgID != "" {
		if idx, ok := s.pending[msg.ClientMsgID]; ok {
			tempID := s.messages[idx].ID
			s.confirmed[msg.ClientMsgID] = struct{}{}
			if _, shown := s.byID[msg.ID]; shown {
				// The confirmed copy is already in the sequence, so the
				// optimistic entry goes away instead of replacing it.
				s.removeLocked(idx)
				return Update{Outcome: Duplicate, Message: msg, TempID: tempID}
			}
			delete(s.pending, msg.ClientMsgID)
			delete(s.byID, tempID)
			s.messages[idx] = msg
			s.byID[msg.ID] = idx
			return Update{Outcome: Confirmed, Message: msg, TempID: tempID}
		}
	}

	if _, ok := s.byID[msg.ID]; ok {
		return Update{Outcome: Duplicate, Message: msg}
	}

	s.appendLocked(msg)
	return Update{Outcome: Appended, Message: msg}
}

// Messages returns a copy of the displayed sequence.
func (s *Synchronizer) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of displayed messages.
func (s *Synchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Reset drops the sequence and switches to session.
func (s *Synchronizer) Reset(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.clear()
}

// Wait blocks until every background submission has returned.
func (s *Synchronizer) Wait() {
	s.inflight.Wait()
}

func (s *Synchronizer) appendLocked(msg model.ChatMessage) {
	s.messages = append(s.messages, msg)
	s.byID[msg.ID] = len(s.messages) - 1
	if msg.ClientMsgID != "" && !msg.Pending && msg.UserID == s.session.UserID {
		s.confirmed[msg.ClientMsgID] = struct{}{}
	}
}

// removeLocked drops the entry at idx and shifts the indexes after it.
func (s *Synchronizer) removeLocked(idx int) {
	gone := s.messages[idx]
	s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	if i, ok := s.byID[gone.ID]; ok && i == idx {
		delete(s.byID, gone.ID)
	}
	if i, ok := s.pending[gone.ClientMsgID]; ok && i == idx {
		delete(s.pending, gone.ClientMsgID)
	}

	for id, i := range s.byID {
		if i > idx {
			s.byID[id] = i - 1
		}
	}
	for tok, i := range s.pending {
		if i > idx {
			s.pending[tok] = i - 1
		}
	}
}

// tokenUsedLocked reports whether token is pending or already confirmed.
func (s *Synchronizer) tokenUsedLocked(token string) bool {
	if _, ok := s.pending[token]; ok {
		return true
	}
	_, ok := s.confirmed[token]
	return ok
}

func (s *Synchronizer) clear() {
	s.messages = nil
	s.byID = make(map[uuid.UUID]int)
	s.pending = make(map[string]int)
	s.confirmed = make(map[string]struct{})
}
