package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/dyike/FinAgentGo/internal/agent"
	"github.com/dyike/FinAgentGo/internal/storage"
	"github.com/dyike/FinAgentGo/pkg/app"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		userID    int64
		noHistory bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the brief agent in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd.OutOrStdout(), opts, userID, !noHistory)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id the session is recorded under")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the session to SQLite")
	return cmd
}

func runChat(ctx context.Context, out io.Writer, opts *rootOptions, userID int64, history bool) error {
	engine, err := app.BuildEngine(*opts.cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	rt, err := engine.Agent()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess, err := rt.StartSession(ctx, userID)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.Close()

	var transcript storage.Transcript = discardTranscript{}
	if history {
		store, err := storage.Open(opts.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
		if transcript, err = store.Begin(ctx, sess.ID(), userID); err != nil {
			return err
		}
	}

	DisplayWelcomeBanner(out, opts.cfg.LLMProvider+"/"+opts.cfg.LLMModel)
	for {
		var question string
		err := survey.AskOne(&survey.Input{Message: "You:"}, &question)
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			transcript.Finish(nil)
			return nil
		}
		if err != nil {
			transcript.Finish(err)
			return err
		}

		question = strings.TrimSpace(question)
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit", "q":
			transcript.Finish(nil)
			DisplaySuccess(out, "Bye.")
			return nil
		}

		transcript.UserTurn(question)
		if err := sess.SendContent(question); err != nil {
			transcript.Finish(err)
			return err
		}
		answer, interrupted, err := drainTurn(ctx, out, sess)
		if err != nil {
			transcript.Finish(err)
			return err
		}
		transcript.AgentTurn(answer, interrupted)
	}
}

// drainTurn prints agent text as it streams and returns once the turn ends.
func drainTurn(ctx context.Context, out io.Writer, sess agent.LiveSession) (string, bool, error) {
	var answer strings.Builder
	fmt.Fprint(out, agentStyle.Render("Agent: "))
	for {
		select {
		case <-ctx.Done():
			return answer.String(), false, ctx.Err()
		case ev, ok := <-sess.Events():
			if !ok {
				return answer.String(), false, errors.New("agent session ended")
			}
			switch {
			case ev.IsTextChunk():
				answer.WriteString(ev.Text)
				fmt.Fprint(out, ev.Text)
			case ev.Interrupted:
				fmt.Fprintln(out, interruptedStyle.Render(" [interrupted]"))
				return answer.String(), true, nil
			case ev.TurnComplete:
				fmt.Fprintln(out)
				return answer.String(), false, nil
			}
		}
	}
}

type discardTranscript struct{}

func (discardTranscript) UserTurn(string) {}

func (discardTranscript) AgentTurn(string, bool) {}

func (discardTranscript) Finish(error) {}
