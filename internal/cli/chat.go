package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voice-assistant/internal/conversation"
	"voice-assistant/internal/models"
)

const (
	userPrompt      = "Vous: "
	assistantPrefix = "Assistant: "
)

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation on standard input. Type /history to print the
conversation, /reset to clear it and /quit (or end of input) to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context(), opts.configPath, opts.logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := conversation.NewSession(a.Generator, a.Logger)
			return runChat(cmd, sess)
		},
	}
}

func runChat(cmd *cobra.Command, sess *conversation.Session) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "Bonjour! Tapez /quit pour quitter.")
	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			return nil
		case "/history":
			printHistory(out, sess.History())
			continue
		case "/reset":
			sess.Reset()
			fmt.Fprintln(out, "Conversation effacée.")
			continue
		}

		ex := sess.Send(cmd.Context(), line)
		fmt.Fprintln(out, assistantPrefix+ex.Result.Reply)
	}
}

func printHistory(out io.Writer, turns []models.Turn) {
	for _, t := range turns {
		label := "Vous"
		if t.Role == models.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", t.CreatedAt.Format("15:04:05"), label, t.Content)
	}
}

func newAskCommand(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context(), opts.configPath, opts.logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.Generator.Respond(cmd.Context(), strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Reply)
			if verbose {
				fmt.Fprintf(out, "route=%s intent=%s score=%.3f sentiment=%s city=%s\n",
					res.Route, res.Intent, res.Score, res.Sentiment, res.City)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print how the reply was chosen")
	return cmd
}

func newListenCommand(opts *rootOptions) *cobra.Command {
	var audioPath string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Transcribe a LINEAR16 recording and reply to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := os.ReadFile(audioPath)
			if err != nil {
				return fmt.Errorf("read audio: %w", err)
			}

			a, err := opts.build(cmd.Context(), opts.configPath, opts.logLevel)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Transcriber == nil {
				return fmt.Errorf("speech recognition is disabled (set speech.enabled)")
			}

			sess := conversation.NewSession(a.Generator, a.Logger)
			ex := sess.SendAudio(cmd.Context(), a.Transcriber, audio)

			out := cmd.OutOrStdout()
			if ex.Failed {
				fmt.Fprintln(out, ex.Input)
				return nil
			}
			fmt.Fprintln(out, userPrompt+ex.Input)
			fmt.Fprintln(out, assistantPrefix+ex.Result.Reply)
			return nil
		},
	}
	cmd.Flags().StringVarP(&audioPath, "file", "f", "", "Raw LINEAR16 audio file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
