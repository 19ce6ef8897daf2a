package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-helper/internal/analyze"
	"github.com/pdiddy/literature-helper/internal/assistant"
	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask the help assistant how to use literature-helper",
	Long: `Ask sends a question to the help assistant. Without arguments it reads
questions from standard input, one per line, and keeps the conversation
until end of input.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("plain", false, "print replies as raw Markdown")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	gen, err := analyze.NewGenerator(ctx, cfg.LLM, httputil.NewClient(cfg.HTTP))
	if err != nil {
		return fmt.Errorf("configuring language model: %w", err)
	}
	a := assistant.New(gen)
	sess := session.NewStore(cfg.Server.SessionTTL).Create()

	plain, _ := cmd.Flags().GetBool("plain")
	var renderer *glamour.TermRenderer
	if !plain {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	}
	out := cmd.OutOrStdout()
	show := func(reply string) {
		if renderer != nil {
			if r, err := renderer.Render(reply); err == nil {
				reply = r
			}
		}
		fmt.Fprintln(out, reply)
	}

	if len(args) > 0 {
		reply, err := a.Ask(ctx, sess, strings.Join(args, " "))
		if err != nil {
			return err
		}
		show(reply)
		return nil
	}
	return askLoop(cmd.InOrStdin(), cmd.ErrOrStderr(), func(q string) error {
		reply, err := a.Ask(ctx, sess, q)
		if err != nil {
			return err
		}
		show(reply)
		return nil
	})
}

// askLoop reads one question per line and hands it to ask. Blank lines are
// skipped; a failed question is reported and the loop continues.
func askLoop(in io.Reader, stderr io.Writer, ask func(string) error) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(stderr, "> ")
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q != "" {
			if err := ask(q); err != nil {
				fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
			}
		}
		fmt.Fprint(stderr, "> ")
	}
	fmt.Fprintln(stderr)
	return scanner.Err()
}
