package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sgmi/proddash/internal/fetch"
	"github.com/sgmi/proddash/internal/logging"
)

// HistoryLimit is the number of most recent messages sent with each request.
const HistoryLimit = 20

// Send errors. Both leave the conversation untouched.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrBusy           = errors.New("a message is already being sent")
	ErrNothingToRetry = errors.New("no user message to retry")
)

// Sender produces the assistant reply to a conversation.
type Sender interface {
	Reply(ctx context.Context, history []Turn) (string, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, history []Turn) (string, error)

// Reply implements Sender.
func (f SenderFunc) Reply(ctx context.Context, history []Turn) (string, error) {
	return f(ctx, history)
}

// Session is one conversation with the assistant. It is safe for
// concurrent use; at most one send is in flight at a time.
type Session struct {
	sender Sender
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	messages []Message
	sending  bool
	err      string
}

// NewSession starts a conversation seeded with initial messages.
func NewSession(sender Sender, logger zerolog.Logger, initial ...Message) *Session {
	return &Session{
		sender:   sender,
		logger:   logging.ComponentLogger(logger, "chat"),
		now:      time.Now,
		messages: append([]Message(nil), initial...),
	}
}

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Sending reports whether a reply is pending.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Err returns the message of the last failed send, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Send appends text as a user message plus a pending assistant placeholder,
// then blocks until the reply replaces the placeholder. On failure the
// placeholder is marked as an error and the error is recorded.
func (s *Session) Send(ctx context.Context, text string) error {
	value := strings.TrimSpace(text)
	if value == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.sending = true
	s.err = ""

	now := s.now()
	user := NewMessage(RoleUser, value, now)
	pending := NewMessage(RoleAssistant, PendingContent, now)
	pending.Pending = true

	history := make([]Turn, 0, HistoryLimit)
	window := append(append([]Message(nil), s.messages...), user)
	if len(window) > HistoryLimit {
		window = window[len(window)-HistoryLimit:]
	}
	for _, m := range window {
		history = append(history, m.Turn())
	}
	s.messages = append(s.messages, user, pending)
	s.mu.Unlock()

	s.logger.Debug().Ctx(ctx).Int("history", len(history)).Msg("sending chat message")
	reply, err := s.sender.Reply(ctx, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false

	idx := s.indexOf(pending.ID)
	if err != nil {
		s.err = fetch.Message(err, DefaultErrorMessage)
		if idx >= 0 {
			s.messages[idx].Content = FailedContent
			s.messages[idx].Pending = false
			s.messages[idx].Error = true
		}
		s.logger.Warn().Ctx(ctx).Err(err).Msg("chat reply failed")
		return err
	}

	answer := NewMessage(RoleAssistant, reply, s.now())
	if idx >= 0 {
		s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	}
	s.messages = append(s.messages, answer)
	return nil
}

// Retry sends the most recent user message again.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	var last string
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleUser {
			last = s.messages[i].Content
			break
		}
	}
	s.mu.Unlock()

	if last == "" {
		return ErrNothingToRetry
	}
	return s.Send(ctx, last)
}

func (s *Session) indexOf(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}
