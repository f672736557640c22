// Package session implements the practice session protocol: the state
// machine and conversation-history contract for quiz and exam-drill
// interactions. The conversation log is append-only and owned exclusively by
// the session; at most one model call is in flight per session at any time.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/llm/prompts"
	"github.com/frisoboot/examenbuddy/internal/model"
)

// Config holds the tunable protocol parameters.
type Config struct {
	// PassThreshold is the minimum score (0-10) that counts as correct.
	PassThreshold int
	// DefaultQuestionLimit applies when a start request omits the limit.
	DefaultQuestionLimit int
	// MaxQuestionLimit caps client-requested limits.
	MaxQuestionLimit int
	// ExamYearRange bounds how far back exam-drill citations may reach.
	ExamYearRange int
}

// DefaultConfig returns the standard protocol parameters.
func DefaultConfig() Config {
	return Config{
		PassThreshold:        6,
		DefaultQuestionLimit: 10,
		MaxQuestionLimit:     50,
		ExamYearRange:        10,
	}
}

// Session is one practice or exam-drill session. All fields are guarded by
// the controller while the session is registered.
type Session struct {
	ID      string
	Subject model.Subject
	Profile model.UserProfile
	Mode    model.SessionMode
	Limit   int

	mu              sync.Mutex
	state           model.SessionState
	system          string
	log             []model.ConversationTurn
	score           model.SessionScore
	current         *model.PracticeTurn
	showingFeedback bool
	busy            bool
	summary         string
}

// View is a read-only snapshot of a session for transport.
type View struct {
	ID              string              `json:"id"`
	SubjectID       string              `json:"subjectId"`
	Mode            model.SessionMode   `json:"mode"`
	State           model.SessionState  `json:"state"`
	QuestionLimit   int                 `json:"questionLimit"`
	Score           model.SessionScore  `json:"score"`
	Turn            *model.PracticeTurn `json:"turn,omitempty"`
	ShowingFeedback bool                `json:"showingFeedback"`
	Summary         string              `json:"summary,omitempty"`
}

// Controller drives practice sessions end-to-end. It is the only writer of
// each session's conversation log.
type Controller struct {
	provider llm.Provider
	cfg      Config

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewController creates a session controller.
func NewController(provider llm.Provider, cfg Config) *Controller {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = 6
	}
	if cfg.DefaultQuestionLimit <= 0 {
		cfg.DefaultQuestionLimit = 10
	}
	if cfg.MaxQuestionLimit <= 0 {
		cfg.MaxQuestionLimit = 50
	}
	if cfg.ExamYearRange <= 0 {
		cfg.ExamYearRange = 10
	}
	return &Controller{
		provider: provider,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Start initializes a session: it sends the setup request, expects an
// opening turn without feedback, and registers the session as Active.
// On failure no session is created, so the caller can retry from setup.
func (c *Controller) Start(ctx context.Context, subject model.Subject, profile model.UserProfile, topics string, mode model.SessionMode, questionLimit int) (*Session, error) {
	if !mode.Valid() {
		return nil, &StartError{Err: ErrInvalidMode}
	}
	if questionLimit <= 0 {
		questionLimit = c.cfg.DefaultQuestionLimit
	}
	if questionLimit > c.cfg.MaxQuestionLimit {
		questionLimit = c.cfg.MaxQuestionLimit
	}

	system, err := prompts.SystemInstruction(subject, profile)
	if err != nil {
		return nil, &StartError{Err: err}
	}

	var opening string
	switch mode {
	case model.ModeExamDrill:
		opening = prompts.ExamDrillStart(subject, profile, topics, c.cfg.ExamYearRange)
	default:
		opening = prompts.PracticeStart(subject, profile, topics)
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:   system,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: opening}},
		Schema:   PracticeTurnSchema,
	})
	if err != nil {
		return nil, &StartError{Err: err}
	}

	turn, err := decodePracticeTurn(resp.Content)
	if err != nil {
		return nil, &StartError{Err: err}
	}
	if turn.Feedback != nil {
		return nil, &StartError{Err: ErrUnexpectedFeedback}
	}

	s := &Session{
		ID:      uuid.NewString(),
		Subject: subject,
		Profile: profile,
		Mode:    mode,
		Limit:   questionLimit,
		state:   model.StateActive,
		system:  system,
		log: []model.ConversationTurn{
			{Role: model.RoleUser, Content: opening},
			{Role: model.RoleModel, Content: string(resp.Content)},
		},
		current: turn,
	}

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()

	slog.Info("session started",
		"session_id", s.ID,
		"subject", subject.ID,
		"mode", mode,
		"question_limit", questionLimit,
	)
	return s, nil
}

// Get returns a registered session.
func (c *Controller) Get(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete unregisters a session, discarding its conversation log.
func (c *Controller) Delete(id string) {
	c.mu.Lock()
	delete(c.sessions, id)
	c.mu.Unlock()
}

// SubmitAnswer grades an answer and fetches the bundled next question in a
// single model call. Both log appends happen only after the call and the
// parse succeed; a failed attempt leaves the log untouched. Concurrent
// submissions on the same session are rejected, never interleaved.
func (c *Controller) SubmitAnswer(ctx context.Context, id, answer string) (*model.PracticeTurn, error) {
	s, err := c.Get(id)
	if err != nil {
		return nil, err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	s.mu.Lock()
	if s.state != model.StateActive {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	if s.score.Total >= s.Limit {
		s.mu.Unlock()
		return nil, ErrLimitReached
	}
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	s.busy = true
	userTurn := model.ConversationTurn{
		Role:    model.RoleUser,
		Content: prompts.AnswerSubmission(answer, s.Profile),
	}
	messages := turnsToMessages(s.log)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userTurn.Content})
	system := s.system
	s.mu.Unlock()

	resp, callErr := c.provider.Generate(ctx, llm.Request{
		System:   system,
		Messages: messages,
		Schema:   PracticeTurnSchema,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if callErr != nil {
		return nil, &SubmitError{Err: callErr}
	}

	turn, err := decodePracticeTurn(resp.Content)
	if err != nil {
		return nil, &SubmitError{Err: err}
	}
	if turn.Feedback == nil {
		return nil, &SubmitError{Err: ErrMissingFeedback}
	}

	s.log = append(s.log,
		userTurn,
		model.ConversationTurn{Role: model.RoleModel, Content: string(resp.Content)},
	)
	s.score.Total++
	if turn.Feedback.Score >= c.cfg.PassThreshold {
		s.score.Correct++
	}
	s.current = turn
	s.showingFeedback = true

	return turn, nil
}

// Advance moves past the feedback display. While under the question limit it
// exposes the already-fetched next question without a model call; at the
// limit it finishes the session and produces the summary.
func (c *Controller) Advance(ctx context.Context, id string) (View, error) {
	s, err := c.Get(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if s.state != model.StateActive {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, ErrNotActive
	}
	if s.busy {
		s.mu.Unlock()
		return View{}, ErrSubmissionInFlight
	}

	if s.score.Total < s.Limit {
		s.showingFeedback = false
		v := s.viewLocked()
		s.mu.Unlock()
		return v, nil
	}

	// Limit reached: finish and summarize. The summary call reads the full
	// log but does not mutate it.
	s.state = model.StateFinished
	s.showingFeedback = false
	messages := turnsToMessages(s.log)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompts.SessionSummary(s.score),
	})
	system := s.system
	s.mu.Unlock()

	summary, err := c.summarize(ctx, system, messages)
	if err != nil {
		// Non-fatal: the caller substitutes a generic message.
		slog.Warn("session summary failed", "session_id", id, "error", err)
		summary = ""
	}

	s.mu.Lock()
	s.summary = summary
	v := s.viewLocked()
	s.mu.Unlock()
	return v, nil
}

func (c *Controller) summarize(ctx context.Context, system string, messages []llm.Message) (string, error) {
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	return rawText(resp.Content), nil
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		ID:              s.ID,
		SubjectID:       s.Subject.ID,
		Mode:            s.Mode,
		State:           s.state,
		QuestionLimit:   s.Limit,
		Score:           s.score,
		Turn:            s.current,
		ShowingFeedback: s.showingFeedback,
		Summary:         s.summary,
	}
}

// LogLen returns the current conversation log length.
func (s *Session) LogLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// State returns the current lifecycle state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Score returns the accumulated session score.
func (s *Session) Score() model.SessionScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func turnsToMessages(log []model.ConversationTurn) []llm.Message {
	out := make([]llm.Message, len(log))
	for i, t := range log {
		role := llm.RoleUser
		if t.Role == model.RoleModel {
			role = llm.RoleAssistant
		}
		out[i] = llm.Message{Role: role, Content: t.Content}
	}
	return out
}

// rawText unwraps a no-schema response: plain text comes back verbatim, and
// some providers quote it as a JSON string.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
