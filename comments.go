package penpal

import (
	"strings"
	"sync"
	"unicode/utf16"
)

const (
	// ParagraphThreshold is the trimmed length a line needs to count as a paragraph.
	ParagraphThreshold   = 100
	CommentsPerParagraph = 4
	MinComments          = 10
	MaxComments          = 25
)

// Comment is an inline suggestion: a short label and a longer explanation.
type Comment struct {
	Text   string `json:"text" jsonschema:"description=Short and specific suggestion"`
	Detail string `json:"detail" jsonschema:"description=Expanded explanation and revision advice"`
}

type CommentMode string

const (
	// CommentModeReplace drops the current list and its flags.
	CommentModeReplace CommentMode = "replace"
	// CommentModeAppend adds a batch after the current list, keeping its flags.
	CommentModeAppend CommentMode = "append"
)

// CommentCount is the number of comments to ask for: four per substantial
// paragraph, never fewer than 10 nor more than 25. Length is measured in
// UTF-16 code units.
func CommentCount(essay string) int {
	paragraphs := 0
	for _, line := range strings.Split(essay, "\n") {
		if len(utf16.Encode([]rune(strings.TrimSpace(line)))) > ParagraphThreshold {
			paragraphs++
		}
	}
	return min(max(paragraphs*CommentsPerParagraph, MinComments), MaxComments)
}

// CommentView is a comment with its flags and its position in the board.
type CommentView struct {
	Index    int
	Comment  Comment
	Resolved bool
	Expanded bool
}

// CommentBoard owns the comments and their resolved and expanded flags. The
// three slices always have the same length and are only changed together.
type CommentBoard struct {
	mu        sync.RWMutex
	comments  []Comment
	resolved  []bool
	expanded  []bool
	lastError error
}

func NewCommentBoard() *CommentBoard {
	return &CommentBoard{}
}

// Replace swaps in a new batch with every flag cleared.
func (b *CommentBoard) Replace(batch []Comment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.comments = append([]Comment{}, batch...)
	b.resolved = make([]bool, len(batch))
	b.expanded = make([]bool, len(batch))
	b.lastError = nil
}

// Append adds a batch at the end. Flags of existing comments are left as they are.
func (b *CommentBoard) Append(batch []Comment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.comments = append(b.comments, batch...)
	b.resolved = append(b.resolved, make([]bool, len(batch))...)
	b.expanded = append(b.expanded, make([]bool, len(batch))...)
	b.lastError = nil
}

// Apply dispatches on mode.
func (b *CommentBoard) Apply(mode CommentMode, batch []Comment) {
	if mode == CommentModeAppend {
		b.Append(batch)
		return
	}
	b.Replace(batch)
}

func (b *CommentBoard) SetResolved(index int, resolved bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.comments) {
		return ErrIndexOutOfRange
	}
	b.resolved[index] = resolved
	return nil
}

func (b *CommentBoard) ToggleExpanded(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.comments) {
		return ErrIndexOutOfRange
	}
	b.expanded[index] = !b.expanded[index]
	return nil
}

func (b *CommentBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.comments)
}

func (b *CommentBoard) Snapshot() []CommentView {
	return b.Visible(true)
}

// Visible lists the comments to render. With showResolved off, resolved
// comments are skipped; they stay on the board with their index.
func (b *CommentBoard) Visible(showResolved bool) []CommentView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	views := make([]CommentView, 0, len(b.comments))
	for i, c := range b.comments {
		if !showResolved && b.resolved[i] {
			continue
		}
		views = append(views, CommentView{
			Index:    i,
			Comment:  c,
			Resolved: b.resolved[i],
			Expanded: b.expanded[i],
		})
	}
	return views
}

// LastError is the failure of the latest request, cleared by the next success.
func (b *CommentBoard) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

func (b *CommentBoard) setError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastError = err
}

func (b *CommentBoard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.comments = nil
	b.resolved = nil
	b.expanded = nil
	b.lastError = nil
}
