package penpal

import (
	"context"
	"errors"
	"strconv"
)

type View string

const (
	ViewFeedback View = "feedback"
	ViewChatbot  View = "chatbot"
	ViewSummary  View = "summary"
	ViewComments View = "comments"
)

// ParseView accepts the known views and falls back to the feedback view.
func ParseView(s string) View {
	switch v := View(s); v {
	case ViewFeedback, ViewChatbot, ViewSummary, ViewComments:
		return v
	}
	return ViewFeedback
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences is the persisted view state owned by the UI collaborator.
type Preferences struct {
	Essay        string
	ActiveView   View
	ShowFeedback bool
	Theme        Theme
}

func DefaultPreferences() Preferences {
	return Preferences{
		ActiveView: ViewFeedback,
		Theme:      ThemeDark,
	}
}

// LoadPreferences reads the view keys; missing keys keep their defaults.
func LoadPreferences(ctx context.Context, st Storage) (Preferences, error) {
	prefs := DefaultPreferences()

	essay, err := lookup(ctx, st, KeyEssay)
	if err != nil {
		return prefs, err
	}
	prefs.Essay = essay

	view, err := lookup(ctx, st, KeyActiveTab)
	if err != nil {
		return prefs, err
	}
	if view != "" {
		prefs.ActiveView = ParseView(view)
	}

	show, err := lookup(ctx, st, KeyShowFeedback)
	if err != nil {
		return prefs, err
	}
	prefs.ShowFeedback = show == "true"

	theme, err := lookup(ctx, st, KeyTheme)
	if err != nil {
		return prefs, err
	}
	if theme != "" {
		prefs.Theme = Theme(theme)
	}

	return prefs, nil
}

func (p Preferences) Save(ctx context.Context, st Storage) error {
	values := map[string]string{
		KeyEssay:        p.Essay,
		KeyActiveTab:    string(ParseView(string(p.ActiveView))),
		KeyShowFeedback: strconv.FormatBool(p.ShowFeedback),
		KeyTheme:        string(p.Theme),
	}
	for key, value := range values {
		if err := st.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// lookup returns "" for a missing key.
func lookup(ctx context.Context, st Storage, key string) (string, error) {
	value, err := st.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return value, err
}
