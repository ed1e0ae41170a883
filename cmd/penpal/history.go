package main

import (
	"fmt"

	"github.com/boat-builder/penpal"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the saved conversation",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		session, err := a.newSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, msg := range session.Messages.Snapshot() {
			if msg.Sender == penpal.SenderUser {
				fmt.Fprintln(out, promptStyle.Render("you> ")+msg.Text)
				continue
			}
			rendered, err := renderMarkdown(msg.Text, a.prefs.Theme)
			if err != nil {
				rendered = msg.Text + "\n"
			}
			fmt.Fprint(out, rendered)
		}
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start the conversation over and hide feedback",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		session, err := a.newSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if err := session.Reset(cmd.Context()); err != nil {
			return err
		}
		last, _ := session.Messages.Last()
		fmt.Fprintln(cmd.OutOrStdout(), last.Text)
		return nil
	}),
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Switch between the dark and light theme",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		a.prefs.Theme = a.prefs.Theme.Toggle()
		if err := a.storage.Set(cmd.Context(), penpal.KeyTheme, string(a.prefs.Theme)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.prefs.Theme)
		return nil
	}),
}
