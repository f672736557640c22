package model

import "context"

// EducationLevel is a Dutch secondary-school track.
type EducationLevel string

const (
	LevelVMBOTL EducationLevel = "vmbo-tl"
	LevelHAVO   EducationLevel = "havo"
	LevelVWO    EducationLevel = "vwo"
)

// MaxYear returns the final year for a level, or 0 for an unknown level.
func (l EducationLevel) MaxYear() int {
	switch l {
	case LevelVMBOTL:
		return 4
	case LevelHAVO:
		return 5
	case LevelVWO:
		return 6
	}
	return 0
}

// Valid reports whether l is one of the known tracks.
func (l EducationLevel) Valid() bool {
	return l.MaxYear() != 0
}

// IsExamYear reports whether the given year is the central-exam year for l.
func (l EducationLevel) IsExamYear(year int) bool {
	return l.Valid() && year == l.MaxYear()
}

// UserProfile identifies the student. Immutable once onboarding completes;
// persisted per device and held for the lifetime of the app session.
type UserProfile struct {
	Name  string         `json:"name"`
	Level EducationLevel `json:"level"`
	Year  int            `json:"year"`
}

// Validate checks the profile against the onboarding rules.
func (p UserProfile) Validate() error {
	if p.Name == "" {
		return ErrProfileName
	}
	if !p.Level.Valid() {
		return ErrProfileLevel
	}
	if p.Year < 1 || p.Year > p.Level.MaxYear() {
		return ErrProfileYear
	}
	return nil
}

// Subject is a static catalog entry. Read-only reference data.
type Subject struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon"`
	ColorTag      string   `json:"colorTag"`
	Description   string   `json:"description"`
	PromptContext string   `json:"promptContext"`
	ExamDomains   []string `json:"examDomains"`
}

// Role is a conversation turn role.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ConversationTurn is one entry in a session's conversation log. The content
// of a model turn is the raw serialized practice turn, kept verbatim so the
// external model sees its own prior output on follow-up calls.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Difficulty is a question difficulty level. The wire values are Dutch
// because the model is prompted in Dutch.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "makkelijk"
	DifficultyMedium Difficulty = "gemiddeld"
	DifficultyHard   Difficulty = "moeilijk"
)

// AttachmentKind distinguishes text fragments from images.
type AttachmentKind string

const (
	AttachmentText  AttachmentKind = "text"
	AttachmentImage AttachmentKind = "image"
)

// Attachment is an optional fragment a question refers to, such as the
// reading passage for a language subject.
type Attachment struct {
	Kind    AttachmentKind `json:"type"`
	Title   string         `json:"title,omitempty"`
	Content string         `json:"content"`
}

// QuizQuestion is one question produced by the external model.
type QuizQuestion struct {
	Text       string      `json:"text"`
	Topic      string      `json:"topic"`
	Difficulty Difficulty  `json:"difficulty"`
	Source     string      `json:"source,omitempty"`
	Hint       string      `json:"hint"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// QuizFeedback grades the previous answer. Present on every turn except the
// session's first.
type QuizFeedback struct {
	IsCorrect   bool   `json:"isCorrect"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	ModelAnswer string `json:"modelAnswer"`
}

// PracticeTurn is the atomic unit returned by the model each round: feedback
// on the previous answer bundled with the next question.
type PracticeTurn struct {
	Feedback     *QuizFeedback `json:"feedback,omitempty"`
	NextQuestion QuizQuestion  `json:"nextQuestion"`
}

// SessionScore accumulates results within one practice session.
type SessionScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SessionMode selects the question source for a practice session.
type SessionMode string

const (
	// ModePractice requests synthetic curriculum-aligned questions.
	ModePractice SessionMode = "practice"
	// ModeExamDrill requests citation of real historical exam questions.
	ModeExamDrill SessionMode = "exam"
)

// Valid reports whether m is a known session mode.
func (m SessionMode) Valid() bool {
	return m == ModePractice || m == ModeExamDrill
}

// SessionState is the lifecycle state of a practice session.
type SessionState string

const (
	StateSetup    SessionState = "setup"
	StateActive   SessionState = "active"
	StateFinished SessionState = "finished"
)

// Flashcard is one front/back study card.
type Flashcard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Category string `json:"category"`
}

// FlashcardSet is a generated set of cards on a topic.
type FlashcardSet struct {
	Topic string      `json:"topic"`
	Cards []Flashcard `json:"cards"`
}

// ChatMessage is one entry in the tutor chat history sent by the client.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type deviceCtxKey struct{}

// ContextWithDevice stores the device token in the request context.
func ContextWithDevice(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, deviceCtxKey{}, token)
}

// DeviceFromContext retrieves the device token from context (empty if unset).
func DeviceFromContext(ctx context.Context) string {
	t, _ := ctx.Value(deviceCtxKey{}).(string)
	return t
}
