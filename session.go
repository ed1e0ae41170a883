// Package penpal implements the writing-assistant session: a streamed chat
// about the student's essay, generated inline comments and rubric scoring.
package penpal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/boat-builder/penpal/prompts"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

type SessionOption func(*Session)

// WithStorage sets where messages and view state are persisted. The default
// is an in-memory store.
func WithStorage(st Storage) SessionOption {
	return func(s *Session) {
		s.storage = st
	}
}

func WithObserver(observer Observer) SessionOption {
	return func(s *Session) {
		s.observer = observer
	}
}

// WithPacing sets the delay between two visible updates of a streamed reply.
func WithPacing(pacing time.Duration) SessionOption {
	return func(s *Session) {
		s.pacing = pacing
	}
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session holds one student's conversation, comments and rubric scores, along
// with references to the shared completion client and storage.
type Session struct {
	id       string
	llm      LLM
	storage  Storage
	observer Observer
	pacing   time.Duration
	logger   *slog.Logger

	accumulator *Accumulator
	usage       *UsageTracker

	Messages *MessageLog
	Comments *CommentBoard
	Rubric   *RubricTable

	typing     atomic.Bool
	refreshing atomic.Bool

	chat     exchangeSlot
	comments exchangeSlot
	rubric   exchangeSlot
}

// NewSession constructs a session and restores the saved conversation. A
// missing or unreadable conversation starts over with an opening message.
func NewSession(ctx context.Context, llm LLM, opts ...SessionOption) (*Session, error) {
	sessionID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	s := &Session{
		id:       sessionID,
		llm:      llm,
		storage:  NewMemoryStorage(),
		observer: func(Update) {},
		pacing:   DefaultPacing,
		logger:   slog.Default(),
		Comments: NewCommentBoard(),
		Rubric:   NewRubricTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("sessionID", sessionID)
	s.accumulator = NewAccumulator(s.pacing, s.logger)

	model := DefaultModel
	if m, ok := llm.(interface{ Model() string }); ok {
		model = m.Model()
	}
	s.usage = NewUsageTracker(model)

	s.Messages = NewMessageLog(s.restoreMessages(ctx)...)
	s.logger.Info("Session started", "messages", s.Messages.Len())
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Typing reports whether a chat reply is being produced.
func (s *Session) Typing() bool {
	return s.typing.Load()
}

// Refreshing reports whether a comment request is in flight.
func (s *Session) Refreshing() bool {
	return s.refreshing.Load()
}

// Cost is the spend of the non-streaming requests made so far.
func (s *Session) Cost() (*CostDetails, bool) {
	return s.usage.Cost()
}

// Send asks the assistant about the essay and streams the reply into the
// conversation. A newer Send supersedes this one; the superseded call keeps
// whatever text it had received and returns an error wrapping ErrSuperseded.
func (s *Session) Send(ctx context.Context, cfg SessionConfig, text string) (StreamState, error) {
	if strings.TrimSpace(text) == "" {
		return StreamState{}, ErrEmptyInput
	}

	ex := s.chat.begin(s.withSession(ctx))
	defer ex.end()
	logger := s.logger.With("exchangeID", ex.id)

	s.Messages.Append(ChatMessage{Sender: SenderUser, Text: text})
	s.setTyping(true)
	defer ex.commit(func() { s.setTyping(false) })
	s.persistMessages(ex.ctx)

	prompt, err := prompts.ChatTurn(prompts.ChatTurnData{
		Essay:              cfg.Essay,
		Tone:               cfg.Tone,
		Style:              cfg.Style,
		CustomInstructions: cfg.CustomInstructions,
		Rubric:             cfg.RubricText,
		Question:           text,
	})
	if err != nil {
		s.settleChat(ex, true)
		return StreamState{}, fmt.Errorf("failed to build chat prompt: %w", err)
	}
	messages := NewMessageList(SystemMessage(prompts.ChatSystemPrompt))
	messages.AddHistory(s.Messages.Snapshot())
	messages.Add(UserMessage(prompt))

	body, err := s.llm.Stream(ex.ctx, messages)
	if err != nil {
		if ex.superseded() {
			return StreamState{}, fmt.Errorf("chat exchange: %w", ErrSuperseded)
		}
		logger.Error("Failed to open completion stream", "error", err)
		s.settleChat(ex, true)
		s.emit(Update{Type: UpdateError, Content: err.Error(), ExchangeID: ex.id})
		return StreamState{}, fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer body.Close()

	slot := s.Messages.Append(ChatMessage{Sender: SenderBot})
	state, err := s.accumulator.Run(ex.ctx, body, func(text string) {
		if s.Messages.ReplaceAt(slot, ChatMessage{Sender: SenderBot, Text: text}) != nil {
			return
		}
		s.emit(Update{Type: UpdatePartialText, Content: text, ExchangeID: ex.id})
	})
	if rerr := s.Messages.ReplaceAt(slot, ChatMessage{Sender: SenderBot, Text: state.AccumulatedText}); rerr != nil {
		logger.Debug("Reply slot is gone", "error", rerr)
	}

	switch {
	case err == nil:
		s.settleChat(ex, false)
		s.emit(Update{Type: UpdateEnd, Content: state.AccumulatedText, ExchangeID: ex.id})
		logger.Info("Chat reply finished", "chars", len(state.AccumulatedText), "complete", state.IsComplete)
		return state, nil
	case ex.superseded():
		logger.Info("Chat exchange superseded", "chars", len(state.AccumulatedText))
		return state, fmt.Errorf("chat exchange: %w", err)
	default:
		logger.Error("Chat stream failed", "error", err, "chars", len(state.AccumulatedText))
		s.settleChat(ex, !errors.Is(err, context.Canceled))
		s.emit(Update{Type: UpdateError, Content: err.Error(), ExchangeID: ex.id})
		return state, err
	}
}

// settleChat ends the chat exchange unless a newer one or a reset took over.
func (s *Session) settleChat(ex *exchange, fallback bool) {
	committed := ex.commit(func() {
		if fallback {
			s.Messages.Append(ChatMessage{Sender: SenderBot, Text: FallbackText})
		}
		s.setTyping(false)
	})
	if committed {
		s.persistMessages(ex.ctx)
	}
}

// GenerateComments requests inline comments for the essay and applies them
// to the board. On failure the board keeps its comments and flags; the error
// is also kept in CommentBoard.LastError.
func (s *Session) GenerateComments(ctx context.Context, cfg SessionConfig, mode CommentMode) error {
	ex := s.comments.begin(s.withSession(ctx))
	defer ex.end()
	logger := s.logger.With("exchangeID", ex.id)

	s.setRefreshing(true)
	defer ex.commit(func() { s.setRefreshing(false) })

	count := CommentCount(cfg.Essay)
	prompt, err := prompts.Comments(prompts.CommentsData{
		Essay:              cfg.Essay,
		Tone:               cfg.Tone,
		Style:              cfg.Style,
		CustomInstructions: cfg.CustomInstructions,
		Rubric:             cfg.RubricText,
		Count:              count,
		Schema:             schemaText[[]Comment](),
	})
	if err != nil {
		return s.commentsFailed(ex, logger, fmt.Errorf("failed to build comments prompt: %w", err))
	}

	completion, err := s.llm.Complete(ex.ctx, NewMessageList(
		SystemMessage(prompts.CommentsSystemPrompt),
		UserMessage(prompt),
	))
	if err != nil {
		return s.commentsFailed(ex, logger, fmt.Errorf("failed to generate comments: %w", err))
	}
	s.usage.Add(completion.Usage)

	batch, err := parseJSONArray[Comment](completion.Content)
	if err != nil {
		return s.commentsFailed(ex, logger, fmt.Errorf("failed to parse comments: %w", err))
	}
	if len(batch) != count {
		logger.Warn("Comment count differs from the request", "requested", count, "received", len(batch))
	}

	if !ex.commit(func() { s.Comments.Apply(mode, batch) }) {
		logger.Info("Dropping superseded comments", "received", len(batch))
		return fmt.Errorf("comments exchange: %w", ErrSuperseded)
	}
	logger.Info("Comments applied", "mode", mode, "received", len(batch), "total", s.Comments.Len())
	s.emit(Update{Type: UpdateComments, Content: strconv.Itoa(s.Comments.Len()), ExchangeID: ex.id})
	return nil
}

func (s *Session) commentsFailed(ex *exchange, logger *slog.Logger, err error) error {
	if ex.superseded() {
		return fmt.Errorf("comments exchange: %w", ErrSuperseded)
	}
	logger.Error("Comment generation failed", "error", err)
	ex.commit(func() { s.Comments.setError(err) })
	s.emit(Update{Type: UpdateError, Content: err.Error(), ExchangeID: ex.id})
	return err
}

// ScoreRubric scores the essay against the rubric text. A blank rubric makes
// no request and leaves the rows alone. Any failure empties the rows.
func (s *Session) ScoreRubric(ctx context.Context, cfg SessionConfig) error {
	if strings.TrimSpace(cfg.RubricText) == "" {
		return nil
	}

	ex := s.rubric.begin(s.withSession(ctx))
	defer ex.end()
	logger := s.logger.With("exchangeID", ex.id)

	prompt, err := prompts.Rubric(prompts.RubricData{
		Rubric: cfg.RubricText,
		Essay:  cfg.Essay,
		Schema: schemaText[[]RubricRow](),
	})
	if err != nil {
		return s.rubricFailed(ex, logger, fmt.Errorf("failed to build rubric prompt: %w", err))
	}

	completion, err := s.llm.Complete(ex.ctx, NewMessageList(UserMessage(prompt)))
	if err != nil {
		return s.rubricFailed(ex, logger, fmt.Errorf("failed to score rubric: %w", err))
	}
	s.usage.Add(completion.Usage)

	rows, err := ParseRubricRows(completion.Content)
	if err != nil {
		logger.Debug("Raw rubric output", "content", completion.Content)
		return s.rubricFailed(ex, logger, fmt.Errorf("failed to parse rubric scores: %w", err))
	}

	if !ex.commit(func() { s.Rubric.Replace(rows) }) {
		return fmt.Errorf("rubric exchange: %w", ErrSuperseded)
	}
	logger.Info("Rubric scored", "rows", len(rows))
	s.emit(Update{Type: UpdateRubric, Content: strconv.Itoa(len(rows)), ExchangeID: ex.id})
	return nil
}

func (s *Session) rubricFailed(ex *exchange, logger *slog.Logger, err error) error {
	if ex.superseded() {
		return fmt.Errorf("rubric exchange: %w", ErrSuperseded)
	}
	logger.Error("Rubric scoring failed", "error", err)
	if ex.commit(func() { s.Rubric.Clear() }) {
		s.emit(Update{Type: UpdateRubric, Content: "0", ExchangeID: ex.id})
	}
	s.emit(Update{Type: UpdateError, Content: err.Error(), ExchangeID: ex.id})
	return err
}

// GenerateFeedback shows the feedback panel and runs rubric scoring and
// comment generation side by side. One failing does not stop the other.
func (s *Session) GenerateFeedback(ctx context.Context, cfg SessionConfig) error {
	if err := s.storage.Set(ctx, KeyShowFeedback, "true"); err != nil {
		s.logger.Warn("Failed to save feedback visibility", "error", err)
	}

	var rubricErr, commentsErr error
	var g errgroup.Group
	g.Go(func() error {
		rubricErr = s.ScoreRubric(ctx, cfg)
		return nil
	})
	g.Go(func() error {
		commentsErr = s.GenerateComments(ctx, cfg, CommentModeReplace)
		return nil
	})
	_ = g.Wait()

	return errors.Join(rubricErr, commentsErr)
}

// Reset starts the session over: in-flight requests are abandoned, the
// conversation goes back to a single opening message and the saved
// conversation and view state are removed.
func (s *Session) Reset(ctx context.Context) error {
	s.chat.abandon()
	s.comments.abandon()
	s.rubric.abandon()

	s.Messages.Reset(OpeningMessage())
	s.Comments.Clear()
	s.Rubric.Clear()
	s.setTyping(false)
	s.setRefreshing(false)

	var errs []error
	for _, key := range []string{KeyMessages, KeyShowFeedback, KeyActiveTab} {
		if err := s.storage.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	s.logger.Info("Session reset")
	s.emit(Update{Type: UpdateReset})
	return errors.Join(errs...)
}

func (s *Session) withSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextKey("sessionID"), s.id)
}

func (s *Session) emit(u Update) {
	s.observer(u)
}

func (s *Session) setTyping(on bool) {
	if s.typing.Swap(on) != on {
		s.emit(Update{Type: UpdateTyping, Content: strconv.FormatBool(on)})
	}
}

func (s *Session) setRefreshing(on bool) {
	if s.refreshing.Swap(on) != on {
		s.emit(Update{Type: UpdateRefreshing, Content: strconv.FormatBool(on)})
	}
}

// persistMessages saves the conversation even when ctx has been cancelled.
func (s *Session) persistMessages(ctx context.Context) {
	data, err := json.Marshal(s.Messages.Snapshot())
	if err != nil {
		s.logger.Error("Failed to encode messages", "error", err)
		return
	}
	if err := s.storage.Set(context.WithoutCancel(ctx), KeyMessages, string(data)); err != nil {
		s.logger.Warn("Failed to save messages", "error", err)
	}
}

func (s *Session) restoreMessages(ctx context.Context) []ChatMessage {
	data, err := s.storage.Get(ctx, KeyMessages)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Failed to read saved messages", "error", err)
		}
		return []ChatMessage{OpeningMessage()}
	}
	msgs, err := ParseMessages(data)
	if err != nil || len(msgs) == 0 {
		s.logger.Warn("Ignoring saved messages", "error", err)
		return []ChatMessage{OpeningMessage()}
	}
	return msgs
}
