package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sgmi/proddash/internal/logging"
)

// Offline reply settings.
const (
	MockReply        = "⚠️ (mock) Backend ainda não está ativo. Resposta simulada."
	DefaultMockDelay = 700 * time.Millisecond
)

// FallbackSender answers with MockReply when the wrapped sender fails, so
// the conversation keeps working while the backend is down.
type FallbackSender struct {
	Next   Sender
	Delay  time.Duration
	Logger zerolog.Logger
}

// NewFallbackSender wraps next with the default mock delay.
func NewFallbackSender(next Sender, logger zerolog.Logger) *FallbackSender {
	return &FallbackSender{
		Next:   next,
		Delay:  DefaultMockDelay,
		Logger: logging.ComponentLogger(logger, "chat"),
	}
}

// Reply implements Sender.
func (f *FallbackSender) Reply(ctx context.Context, history []Turn) (string, error) {
	if f.Next != nil {
		reply, err := f.Next.Reply(ctx, history)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.Logger.Warn().Ctx(ctx).Err(err).Msg("chat backend unavailable, using mock reply")
	}

	timer := time.NewTimer(f.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return MockReply, nil
	}
}
