package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentshop/agent"
)

const exitCommand = "/bye"

func newChatCommand(flags *globalFlags) *cobra.Command {
	var (
		sessionID string
		message   string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the shop assistant in the console (type /bye to quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			a, err := newApp(s, cmd.ErrOrStderr(), func(o *agent.Options) {
				if s.Stream {
					o.OnDelta = func(delta string) { fmt.Fprint(out, delta) }
				}
			})
			if err != nil {
				return err
			}

			if message != "" {
				return chatOnce(cmd, a, sessionID, message)
			}
			return chatLoop(cmd, a, sessionID, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "default", "Session id")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Send a single message and exit")

	return cmd
}

func chatOnce(cmd *cobra.Command, a *app, sessionID, text string) error {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, "Bot: ")
	reply, err := a.agent.Chat(cmd.Context(), sessionID, text)
	if err != nil {
		fmt.Fprintln(out)
		return err
	}
	if !a.settings.Stream {
		fmt.Fprint(out, reply)
	}
	fmt.Fprintln(out)
	return nil
}

// chatLoop reads one message per line until /bye or end of input. Agent
// errors are printed and the loop continues.
func chatLoop(cmd *cobra.Command, a *app, sessionID string, in io.Reader) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, exitCommand) {
			return nil
		}

		if err := chatOnce(cmd, a, sessionID, line); err != nil {
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
}
