package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/boat-builder/penpal"
	"github.com/spf13/cobra"
)

var renderReplies bool

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask about the essay",
	Long: `Ask PenPal about the essay. The reply is printed as it streams in.

With a question as argument one exchange is made; without one, questions
are read from standard input, one per line.`,
	RunE: withApp(runChat),
}

func init() {
	chatCmd.Flags().BoolVar(&renderReplies, "render", false, "render the finished reply as markdown")
}

func runChat(cmd *cobra.Command, a *app, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	printer := &streamPrinter{w: out}
	session, err := a.newSession(ctx, printer.observe)
	if err != nil {
		return err
	}

	a.prefs.ActiveView = penpal.ViewChatbot
	a.savePrefs(ctx)

	ask := func(question string) error {
		printer.reset()
		state, err := session.Send(ctx, a.input, question)
		fmt.Fprintln(out)
		if err != nil {
			return err
		}
		if renderReplies {
			rendered, rerr := renderMarkdown(state.AccumulatedText, a.prefs.Theme)
			if rerr == nil {
				fmt.Fprint(out, rendered)
			}
		}
		return nil
	}

	if len(args) > 0 {
		return ask(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		err := ask(scanner.Text())
		if errors.Is(err, penpal.ErrEmptyInput) {
			continue
		}
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
	}
	return scanner.Err()
}

// streamPrinter writes the part of each partial reply it has not printed yet.
type streamPrinter struct {
	w       io.Writer
	printed int
}

func (p *streamPrinter) reset() {
	p.printed = 0
}

func (p *streamPrinter) observe(u penpal.Update) {
	switch u.Type {
	case penpal.UpdatePartialText, penpal.UpdateEnd:
		if len(u.Content) > p.printed {
			fmt.Fprint(p.w, u.Content[p.printed:])
			p.printed = len(u.Content)
		}
	case penpal.UpdateError:
		fmt.Fprint(p.w, "\n", errorStyle.Render(penpal.FallbackText))
	}
}
