package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/chat"
	"github.com/sgmi/proddash/internal/tui"
)

// NewChatCmd talks to the production assistant.
func NewChatCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the production assistant",
		Long: `With a message, prints the assistant's reply and exits. Without one, opens
an interactive conversation.

With --offline, a simulated reply is shown when the backend does not answer.`,
		Example: `  proddash chat "Quanto produzimos de broa ontem?"
  proddash chat --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}
			session := chat.NewSession(chatSender(e, offline), logger)

			if len(args) > 0 {
				return askOnce(ctx, cmd, session, strings.Join(args, " "))
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			e.startRefresher(ctx)

			p := tea.NewProgram(tui.NewChatModel(ctx, session, true), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running chat: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "answer with a simulated reply when the backend is unreachable")
	return cmd
}

// chatSender is the backend client, wrapped with a simulated reply when
// offline.
func chatSender(e *env, offline bool) chat.Sender {
	if offline {
		return chat.NewFallbackSender(e.client, logger)
	}
	return e.client
}

// askOnce sends a single message and prints the reply.
func askOnce(ctx context.Context, cmd *cobra.Command, session *chat.Session, text string) error {
	if err := session.Send(ctx, text); err != nil {
		if msg := session.Err(); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	msgs := session.Messages()
	if len(msgs) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), msgs[len(msgs)-1].Content)
	return err
}
