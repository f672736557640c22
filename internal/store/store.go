// Package store persists per-device profiles in SQLite. Each browser gets a
// random device token in a cookie; the token keys at most one profile row.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frisoboot/examenbuddy/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNoProfile is returned when a device has not completed onboarding.
var ErrNoProfile = errors.New("no profile for device")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		token TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		last_seen_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		device_token TEXT PRIMARY KEY,
		profile TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (device_token) REFERENCES devices(token)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateDevice registers a new device and returns its token.
func (s *Store) CreateDevice() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO devices (token, created_at, last_seen_at) VALUES (?, ?, ?)`,
		token, now, now,
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// TouchDevice reports whether the token is known and updates its last-seen
// time. Unknown tokens get a fresh device via CreateDevice in the caller.
func (s *Store) TouchDevice(token string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE devices SET last_seen_at = ? WHERE token = ?`,
		time.Now(), token,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetProfile returns the profile stored for the device. A row whose JSON no
// longer parses is treated as absent so onboarding can run again.
func (s *Store) GetProfile(deviceToken string) (*model.UserProfile, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT profile FROM profiles WHERE device_token = ?`, deviceToken,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}

	var p model.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		slog.Warn("discarding corrupt profile row", "device", deviceToken, "error", err)
		_ = s.DeleteProfile(deviceToken)
		return nil, ErrNoProfile
	}
	if err := p.Validate(); err != nil {
		slog.Warn("discarding invalid profile row", "device", deviceToken, "error", err)
		_ = s.DeleteProfile(deviceToken)
		return nil, ErrNoProfile
	}
	return &p, nil
}

// PutProfile stores or replaces the device's profile.
func (s *Store) PutProfile(deviceToken string, p model.UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO profiles (device_token, profile, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(device_token) DO UPDATE SET profile = excluded.profile, updated_at = excluded.updated_at`,
		deviceToken, string(raw), time.Now(),
	)
	return err
}

// DeleteProfile removes the device's profile, returning it to onboarding.
func (s *Store) DeleteProfile(deviceToken string) error {
	_, err := s.db.Exec(`DELETE FROM profiles WHERE device_token = ?`, deviceToken)
	return err
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
