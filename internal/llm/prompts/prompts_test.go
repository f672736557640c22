package prompts

import (
	"strings"
	"testing"

	"github.com/frisoboot/examenbuddy/internal/model"
)

var testSubject = model.Subject{
	ID:            "economie",
	Name:          "Economie",
	PromptContext: "Je bent een Economie docent.",
	ExamDomains:   []string{"Schaarste", "Markt"},
}

var testProfile = model.UserProfile{Name: "Mila", Level: model.LevelHAVO, Year: 4}

func TestSystemInstruction(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, err := SystemInstruction(testSubject, testProfile)
	if err != nil {
		t.Fatalf("SystemInstruction: %v", err)
	}
	for _, want := range []string{"ExamenBuddy", "Mila", "HAVO", "Economie", "socratische", "LaTeX"} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction should contain %q", want)
		}
	}
	if strings.Contains(got, "eindexamenjaar") {
		t.Error("havo year 4 is not an exam year")
	}
}

func TestSystemInstructionExamYear(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	examProfile := model.UserProfile{Name: "Daan", Level: model.LevelVWO, Year: 6}
	got, err := SystemInstruction(testSubject, examProfile)
	if err != nil {
		t.Fatalf("SystemInstruction: %v", err)
	}
	if !strings.Contains(got, "eindexamenjaar") {
		t.Error("vwo year 6 should trigger the exam-year focus")
	}
	if !strings.Contains(got, "VWO") {
		t.Error("instruction should contain the upper-cased level")
	}
}

func TestSystemInstructionUnknownLevel(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	bad := model.UserProfile{Name: "X", Level: "gymnasium", Year: 3}
	if _, err := SystemInstruction(testSubject, bad); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestTopicList(t *testing.T) {
	got := TopicList(testSubject, testProfile)
	if !strings.Contains(got, "8 tot 12") {
		t.Error("prompt should bound the list size")
	}
	if !strings.Contains(got, "Schaarste, Markt") {
		t.Error("prompt should name the exam domains")
	}
}

func TestPracticeStart(t *testing.T) {
	t.Run("with topics", func(t *testing.T) {
		got := PracticeStart(testSubject, testProfile, "Markt, Elasticiteit")
		if !strings.Contains(got, `"Markt, Elasticiteit"`) {
			t.Error("prompt should quote the chosen topics")
		}
		if strings.Contains(got, "willekeurig") {
			t.Error("prompt should not ask the model to pick a topic")
		}
	})

	t.Run("empty topics", func(t *testing.T) {
		got := PracticeStart(testSubject, testProfile, "")
		if !strings.Contains(got, "Kies een willekeurig belangrijk onderwerp") {
			t.Error("empty topics should delegate topic choice to the model")
		}
	})
}

func TestExamDrillStart(t *testing.T) {
	got := ExamDrillStart(testSubject, testProfile, "", 10)
	if !strings.Contains(got, "centrale eindexamens") {
		t.Error("exam drill should request real exam questions")
	}
	if !strings.Contains(got, "afgelopen 10 jaar") {
		t.Error("exam drill should bound the year range")
	}
	if !strings.Contains(got, "'source'") {
		t.Error("exam drill should ask for a citation")
	}
}

func TestAnswerSubmission(t *testing.T) {
	got := AnswerSubmission("de prijs stijgt", testProfile)
	if !strings.Contains(got, "de prijs stijgt") {
		t.Error("prompt should contain the student answer")
	}
	if !strings.Contains(got, "havo niveau") {
		t.Error("prompt should grade at the profile level")
	}
	if !strings.Contains(got, "daarna de volgende vraag") {
		t.Error("prompt should request the bundled next question")
	}
}

func TestSessionSummary(t *testing.T) {
	got := SessionSummary(model.SessionScore{Correct: 2, Total: 3})
	if !strings.Contains(got, "2 van de 3") {
		t.Error("summary prompt should contain the score")
	}
	if !strings.Contains(got, "geen JSON") {
		t.Error("summary prompt should ask for plain text")
	}
}
