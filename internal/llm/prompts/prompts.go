// Package prompts assembles the Dutch instructions sent to the external
// model. System instructions are level-keyed template files embedded at build
// time; task prompts are built in code.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/frisoboot/examenbuddy/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	loadOnce        sync.Once
	loadErr         error
	systemTemplates map[model.EducationLevel]*template.Template
)

var levels = []model.EducationLevel{model.LevelVMBOTL, model.LevelHAVO, model.LevelVWO}

// systemData holds template data for system instructions.
type systemData struct {
	Name           string
	Level          string
	Year           int
	SubjectName    string
	SubjectContext string
	ExamYear       bool
}

// Load parses the embedded system templates. Safe to call more than once.
func Load() error {
	loadOnce.Do(func() {
		systemTemplates = make(map[model.EducationLevel]*template.Template)
		for _, lvl := range levels {
			name := "templates/system_" + string(lvl) + ".txt"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(lvl)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			systemTemplates[lvl] = tmpl
		}
	})
	return loadErr
}

// SystemInstruction builds the persona instruction for a subject and profile.
func SystemInstruction(subject model.Subject, profile model.UserProfile) (string, error) {
	if systemTemplates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := systemTemplates[profile.Level]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", fmt.Errorf("no system template for level %q", profile.Level)
	}

	data := systemData{
		Name:           profile.Name,
		Level:          strings.ToUpper(string(profile.Level)),
		Year:           profile.Year,
		SubjectName:    subject.Name,
		SubjectContext: subject.PromptContext,
		ExamYear:       profile.Level.IsExamYear(profile.Year),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TopicList asks for 8-12 short curriculum topics scoped to the subject's
// exam domains.
func TopicList(subject model.Subject, profile model.UserProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Geef een lijst van 8 tot 12 concrete examenonderwerpen of hoofdstukken voor het vak %s voor %s leerjaar %d in Nederland.\n",
		subject.Name, profile.Level, profile.Year)
	sb.WriteString("Houd de onderwerpen kort (max 3-4 woorden).")
	if len(subject.ExamDomains) > 0 {
		fmt.Fprintf(&sb, "\nBlijf binnen de officiële examendomeinen: %s.", strings.Join(subject.ExamDomains, ", "))
	}
	return sb.String()
}

// PracticeStart opens a practice session. An empty topics string tells the
// model to pick a domain-appropriate topic itself.
func PracticeStart(subject model.Subject, profile model.UserProfile, topics string) string {
	userTopic := "Kies een willekeurig belangrijk onderwerp uit het examenprogramma."
	if topics != "" {
		userTopic = fmt.Sprintf("Focus uitsluitend op de volgende onderwerpen: %q.", topics)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Start een oefensessie voor %s leerjaar %d voor het vak %s.\n",
		profile.Level, profile.Year, subject.Name)
	sb.WriteString(userTopic + "\n")
	sb.WriteString("Genereer de eerste vraag. Het moet een open vraag zijn.\n")
	sb.WriteString("Zorg dat de vraag aansluit bij het officiële Nederlandse curriculum voor dit niveau en jaar.\n")
	sb.WriteString("Begin met een vraag van gemiddeld niveau.")
	return sb.String()
}

// ExamDrillStart opens an exam-drill session that cites real historical exam
// questions from the last yearsBack exam years.
func ExamDrillStart(subject model.Subject, profile model.UserProfile, topics string, yearsBack int) string {
	userTopic := "Kies zelf een belangrijk onderwerp uit het examenprogramma."
	if topics != "" {
		userTopic = fmt.Sprintf("Focus uitsluitend op de volgende onderwerpen: %q.", topics)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Start een examentraining voor %s leerjaar %d voor het vak %s.\n",
		profile.Level, profile.Year, subject.Name)
	sb.WriteString(userTopic + "\n")
	fmt.Fprintf(&sb, "Gebruik uitsluitend vragen die letterlijk voorkomen in officiële centrale eindexamens (CSE) van de afgelopen %d jaar.\n", yearsBack)
	sb.WriteString("Vermeld bij elke vraag de bron in het veld 'source', bijvoorbeeld 'Examen 2022 tijdvak 1'.\n")
	sb.WriteString("Genereer de eerste vraag. Het moet een open vraag zijn.")
	return sb.String()
}

// AnswerSubmission wraps a student answer with the grading instruction.
func AnswerSubmission(answer string, profile model.UserProfile) string {
	return fmt.Sprintf("Mijn antwoord is: %s. Beoordeel dit streng maar rechtvaardig op %s niveau. Geef feedback en daarna de volgende vraag.",
		answer, profile.Level)
}

// FlashcardSet asks for a set of study cards.
func FlashcardSet(subject model.Subject, profile model.UserProfile, topics string) string {
	userTopic := "over de belangrijkste lesstof voor dit jaar"
	if topics != "" {
		userTopic = fmt.Sprintf("over het onderwerp: %q", topics)
	}
	return fmt.Sprintf("Genereer een set van 10 flashcards voor %s leerjaar %d voor het vak %s %s.\nZorg dat de begrippen en moeilijkheid aansluiten bij het niveau.",
		profile.Level, profile.Year, subject.Name, userTopic)
}

// SessionSummary closes a practice session with free-text feedback.
func SessionSummary(score model.SessionScore) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "De oefensessie is afgelopen. De leerling had %d van de %d vragen voldoende.\n", score.Correct, score.Total)
	sb.WriteString("Geef een korte, bemoedigende samenvatting van de sessie in het Nederlands: ")
	sb.WriteString("wat ging goed, wat verdient nog aandacht, en één concrete vervolgstap. ")
	sb.WriteString("Antwoord in gewone tekst, geen JSON.")
	return sb.String()
}
