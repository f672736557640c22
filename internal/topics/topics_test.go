package topics

import (
	"encoding/json"
	"testing"

	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/llm/prompts"
	"github.com/frisoboot/examenbuddy/internal/model"
)

var (
	testSubject = model.Subject{ID: "wiskunde-b", Name: "Wiskunde B", ExamDomains: []string{"Analyse"}}
	testProfile = model.UserProfile{Name: "Tim", Level: model.LevelVWO, Year: 6}
)

func init() {
	if err := prompts.Load(); err != nil {
		panic(err)
	}
}

func topicsJSON(topics ...string) json.RawMessage {
	b, _ := json.Marshal(map[string]any{"topics": topics})
	return b
}

func TestSuggest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: topicsJSON("Differentiëren", "Integreren", " Goniometrie ", "")})
	s := NewService(mock)

	got, err := s.Suggest(t.Context(), testSubject, testProfile)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	want := []string{"Differentiëren", "Integreren", "Goniometrie"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestCachesPerKey(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: topicsJSON("Analyse")},
		llm.MockResponse{Content: topicsJSON("Statistiek")},
	)
	s := NewService(mock)

	if _, err := s.Suggest(t.Context(), testSubject, testProfile); err != nil {
		t.Fatalf("first Suggest: %v", err)
	}
	if _, err := s.Suggest(t.Context(), testSubject, testProfile); err != nil {
		t.Fatalf("second Suggest: %v", err)
	}
	if got := mock.CallCount(); got != 1 {
		t.Errorf("call count = %d, want 1 (second request served from cache)", got)
	}

	// A different profile year is a different key.
	other := testProfile
	other.Year = 5
	if _, err := s.Suggest(t.Context(), testSubject, other); err != nil {
		t.Fatalf("Suggest other year: %v", err)
	}
	if got := mock.CallCount(); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
}

func TestSuggestFailureNotCached(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Content: topicsJSON("Analyse")},
	)
	s := NewService(mock)

	if _, err := s.Suggest(t.Context(), testSubject, testProfile); err == nil {
		t.Fatal("expected error")
	}
	got, err := s.Suggest(t.Context(), testSubject, testProfile)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if len(got) != 1 || got[0] != "Analyse" {
		t.Errorf("got %v", got)
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		freeform string
		want     string
	}{
		{"empty", nil, "", ""},
		{"selected only", []string{"Markt", "Schaarste"}, "", "Markt, Schaarste"},
		{"freeform only", nil, "inflatie", "inflatie"},
		{"union", []string{"Markt"}, "inflatie, arbeidsmarkt", "Markt, inflatie, arbeidsmarkt"},
		{"trims and drops empties", []string{" Markt ", ""}, " , inflatie ,", "Markt, inflatie"},
		{"dedupes case-insensitively", []string{"Markt"}, "markt, Markt", "Markt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.selected, tt.freeform); got != tt.want {
				t.Errorf("Combine(%v, %q) = %q, want %q", tt.selected, tt.freeform, got, tt.want)
			}
		})
	}
}
