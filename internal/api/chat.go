package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sgmi/proddash/internal/chat"
)

var _ chat.Sender = (*Client)(nil)

// Reply posts the conversation history to the assistant and returns its
// answer. The chat endpoint does not use the data envelope.
func (c *Client) Reply(ctx context.Context, history []chat.Turn) (string, error) {
	body, err := c.do(ctx, http.MethodPost, PathChat, nil, wireChatRequest{Messages: history})
	if err != nil {
		return "", wrap("chat", chat.DefaultErrorMessage, err)
	}
	var reply wireChatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", wrap("chat", chat.DefaultErrorMessage, fmt.Errorf("decode reply: %w", err))
	}
	if reply.Content == "" {
		return "", wrap("chat", chat.DefaultErrorMessage, errors.New("empty reply"))
	}
	return reply.Content, nil
}
