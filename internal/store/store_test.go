package store

import (
	"errors"
	"testing"
	"time"

	"github.com/frisoboot/examenbuddy/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestDevice(t *testing.T, s *Store) string {
	t.Helper()
	token, err := s.CreateDevice()
	if err != nil {
		t.Fatalf("newTestDevice: %v", err)
	}
	return token
}

func TestDeviceLifecycle(t *testing.T) {
	s := newTestStore(t)

	token := newTestDevice(t, s)
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	other := newTestDevice(t, s)
	if token == other {
		t.Error("tokens must be unique")
	}

	known, err := s.TouchDevice(token)
	if err != nil {
		t.Fatalf("TouchDevice: %v", err)
	}
	if !known {
		t.Error("created device should be known")
	}

	known, err = s.TouchDevice("deadbeef")
	if err != nil {
		t.Fatalf("TouchDevice unknown: %v", err)
	}
	if known {
		t.Error("unknown token should not be known")
	}
}

func TestProfileCRUD(t *testing.T) {
	s := newTestStore(t)
	token := newTestDevice(t, s)

	if _, err := s.GetProfile(token); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile before onboarding, got %v", err)
	}

	p := model.UserProfile{Name: "Mila", Level: model.LevelHAVO, Year: 4}
	if err := s.PutProfile(token, p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	got, err := s.GetProfile(token)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if *got != p {
		t.Errorf("got %+v, want %+v", *got, p)
	}

	// Replacing overwrites the single row per device.
	p2 := model.UserProfile{Name: "Mila", Level: model.LevelHAVO, Year: 5}
	if err := s.PutProfile(token, p2); err != nil {
		t.Fatalf("PutProfile replace: %v", err)
	}
	got, err = s.GetProfile(token)
	if err != nil {
		t.Fatalf("GetProfile after replace: %v", err)
	}
	if got.Year != 5 {
		t.Errorf("year = %d, want 5", got.Year)
	}

	if err := s.DeleteProfile(token); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if _, err := s.GetProfile(token); !errors.Is(err, ErrNoProfile) {
		t.Errorf("expected ErrNoProfile after delete, got %v", err)
	}
}

func TestPutProfileRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	token := newTestDevice(t, s)

	tests := []struct {
		name    string
		profile model.UserProfile
		want    error
	}{
		{"empty name", model.UserProfile{Level: model.LevelHAVO, Year: 4}, model.ErrProfileName},
		{"unknown level", model.UserProfile{Name: "X", Level: "gymnasium", Year: 4}, model.ErrProfileLevel},
		{"year zero", model.UserProfile{Name: "X", Level: model.LevelHAVO, Year: 0}, model.ErrProfileYear},
		{"year past max", model.UserProfile{Name: "X", Level: model.LevelVMBOTL, Year: 5}, model.ErrProfileYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.PutProfile(token, tt.profile); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetProfileDiscardsCorruptRow(t *testing.T) {
	s := newTestStore(t)
	token := newTestDevice(t, s)

	_, err := s.db.Exec(
		`INSERT INTO profiles (device_token, profile, updated_at) VALUES (?, ?, ?)`,
		token, `{"name": "Mila", "level":`, time.Now(),
	)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	if _, err := s.GetProfile(token); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("corrupt row should read as absent, got %v", err)
	}

	// The corrupt row is gone, onboarding can store a fresh profile.
	p := model.UserProfile{Name: "Mila", Level: model.LevelHAVO, Year: 4}
	if err := s.PutProfile(token, p); err != nil {
		t.Fatalf("PutProfile after corrupt row: %v", err)
	}
	if _, err := s.GetProfile(token); err != nil {
		t.Errorf("GetProfile after repair: %v", err)
	}
}

func TestGetProfileDiscardsInvalidRow(t *testing.T) {
	s := newTestStore(t)
	token := newTestDevice(t, s)

	_, err := s.db.Exec(
		`INSERT INTO profiles (device_token, profile, updated_at) VALUES (?, ?, ?)`,
		token, `{"name": "Mila", "level": "havo", "year": 9}`, time.Now(),
	)
	if err != nil {
		t.Fatalf("insert invalid row: %v", err)
	}

	if _, err := s.GetProfile(token); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("invalid row should read as absent, got %v", err)
	}
}
