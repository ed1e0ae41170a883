package main

import (
	"fmt"
	"strings"

	"github.com/boat-builder/penpal"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	commentStyle  = lipgloss.NewStyle().Bold(true)
	detailStyle   = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
	resolvedStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
)

func renderMarkdown(md string, theme penpal.Theme) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(string(theme)),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

func renderRubric(rows []penpal.RubricRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Criterion", "Score", "Details").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.Criterion, fmt.Sprintf("%g/%g", r.Score, r.Total), r.Details)
	}
	return t.String()
}

func renderComments(views []penpal.CommentView) string {
	if len(views) == 0 {
		return "No comments."
	}
	var b strings.Builder
	for _, v := range views {
		label := fmt.Sprintf("%2d. %s", v.Index+1, v.Comment.Text)
		if v.Resolved {
			label = resolvedStyle.Render(label)
		} else {
			label = commentStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		if v.Comment.Detail != "" {
			b.WriteString(detailStyle.Render(v.Comment.Detail))
			b.WriteString("\n")
		}
	}
	return b.String()
}
