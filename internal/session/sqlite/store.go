// Package sqlite provides a SQLite-backed session.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/session"
	"github.com/lox/spelljack/internal/session/sqlite/migrations"
)

// Store persists session profiles in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ session.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type view struct {
	name  string
	cards *[]deck.Card
}

func views(snap *session.Snapshot) []view {
	return []view{
		{"collection", &snap.Collection},
		{"play_deck", &snap.PlayDeck},
		{"loadout", &snap.Loadout},
		{"shop", &snap.Shop},
	}
}

// Load reads a profile.
func (s *Store) Load(ctx context.Context, profile string) (session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return session.Snapshot{}, err
	}
	if err := session.ValidateProfile(profile); err != nil {
		return session.Snapshot{}, err
	}

	var snap session.Snapshot
	err := s.db.QueryRowContext(ctx, `SELECT coins FROM profiles WHERE name = ?`, profile).Scan(&snap.Coins)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, session.ErrNotFound
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("get profile: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT view, card_json FROM profile_cards WHERE profile_name = ? ORDER BY view, position`, profile)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("list profile cards: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]*[]deck.Card)
	for _, v := range views(&snap) {
		byName[v.name] = v.cards
	}
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return session.Snapshot{}, fmt.Errorf("scan profile card: %w", err)
		}
		var card deck.Card
		if err := json.Unmarshal([]byte(payload), &card); err != nil {
			return session.Snapshot{}, fmt.Errorf("decode card: %w", err)
		}
		dst, ok := byName[name]
		if !ok {
			return session.Snapshot{}, fmt.Errorf("unknown card view %q", name)
		}
		*dst = append(*dst, card)
	}
	if err := rows.Err(); err != nil {
		return session.Snapshot{}, fmt.Errorf("iterate profile cards: %w", err)
	}
	return snap, nil
}

// Save replaces a profile in one transaction.
func (s *Store) Save(ctx context.Context, profile string, snap session.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := session.ValidateProfile(profile); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO profiles (name, coins, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET coins = excluded.coins, updated_at = excluded.updated_at`,
		profile, snap.Coins, s.now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_cards WHERE profile_name = ?`, profile); err != nil {
		return fmt.Errorf("clear profile cards: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO profile_cards (profile_name, view, position, card_id, card_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare card insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range views(&snap) {
		for i, card := range *v.cards {
			payload, err := json.Marshal(card)
			if err != nil {
				return fmt.Errorf("encode card %d: %w", card.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, profile, v.name, i, card.ID, string(payload)); err != nil {
				return fmt.Errorf("insert card %d: %w", card.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Profiles lists saved profile names, most recently saved first.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM profiles ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
