package main

import (
	"fmt"
	"log/slog"

	"github.com/boat-builder/penpal"
	"github.com/spf13/cobra"
)

var (
	moreRounds   int
	resolve      []int
	showResolved bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Score the essay against the rubric and list comments",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireEssay(); err != nil {
			return err
		}
		ctx := cmd.Context()
		session, err := a.newSession(ctx, nil)
		if err != nil {
			return err
		}

		a.prefs.ShowFeedback = true
		a.prefs.ActiveView = penpal.ViewFeedback
		a.savePrefs(ctx)

		err = session.GenerateFeedback(ctx, a.input)
		out := cmd.OutOrStdout()
		if rows := session.Rubric.Rows(); len(rows) > 0 {
			fmt.Fprintln(out, renderRubric(rows))
		}
		fmt.Fprintln(out, renderComments(session.Comments.Visible(true)))
		logCost(session)
		return err
	}),
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Generate inline comments for the essay",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireEssay(); err != nil {
			return err
		}
		ctx := cmd.Context()
		session, err := a.newSession(ctx, nil)
		if err != nil {
			return err
		}

		a.prefs.ActiveView = penpal.ViewComments
		a.savePrefs(ctx)

		if err := session.GenerateComments(ctx, a.input, penpal.CommentModeReplace); err != nil {
			return err
		}
		for i := 0; i < moreRounds; i++ {
			if err := session.GenerateComments(ctx, a.input, penpal.CommentModeAppend); err != nil {
				slog.Warn("Could not load more comments", "round", i+1, "error", err)
				break
			}
		}

		for _, n := range resolve {
			if err := session.Comments.SetResolved(n-1, true); err != nil {
				return fmt.Errorf("comment %d: %w", n, err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderComments(session.Comments.Visible(showResolved)))
		logCost(session)
		return nil
	}),
}

func init() {
	commentsCmd.Flags().IntVar(&moreRounds, "more", 0, "extra rounds of comments to append")
	commentsCmd.Flags().IntSliceVar(&resolve, "resolve", nil, "comment numbers to mark resolved")
	commentsCmd.Flags().BoolVar(&showResolved, "show-resolved", false, "include resolved comments")
}

func logCost(session *penpal.Session) {
	if cost, ok := session.Cost(); ok {
		slog.Info("Completion usage", "inputTokens", cost.InputTokens, "outputTokens", cost.OutputTokens, "cost", cost.TotalCost)
	}
}
