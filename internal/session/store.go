package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/fileutil"
)

// DefaultProfile is used when no profile name is given.
const DefaultProfile = "default"

// Store persists session snapshots by profile name.
type Store interface {
	Load(ctx context.Context, profile string) (Snapshot, error)
	Save(ctx context.Context, profile string, snap Snapshot) error
	Close() error
}

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateProfile checks that a profile name is safe to use as a file name or key.
func ValidateProfile(profile string) error {
	if !profilePattern.MatchString(profile) {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	return nil
}

// Open loads profile from store into a fresh State. A profile that has never
// been saved yields the starting state.
func Open(ctx context.Context, store Store, profile string, shop []deck.Card, opts ...Option) (*State, error) {
	s := New(shop, opts...)
	snap, err := store.Load(ctx, profile)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", profile, err)
	}
	if err := s.Restore(snap); err != nil {
		return nil, fmt.Errorf("restore profile %s: %w", profile, err)
	}
	return s, nil
}

// Save writes the current state of s under profile.
func Save(ctx context.Context, store Store, profile string, s *State) error {
	if err := store.Save(ctx, profile, s.Snapshot()); err != nil {
		return fmt.Errorf("save profile %s: %w", profile, err)
	}
	return nil
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (m *MemoryStore) Load(ctx context.Context, profile string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if err := ValidateProfile(profile); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[profile]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

func (m *MemoryStore) Save(ctx context.Context, profile string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[profile] = cloneSnapshot(snap)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func cloneSnapshot(snap Snapshot) Snapshot {
	return Snapshot{
		Coins:      snap.Coins,
		Collection: slices.Clone(snap.Collection),
		PlayDeck:   slices.Clone(snap.PlayDeck),
		Loadout:    slices.Clone(snap.Loadout),
		Shop:       slices.Clone(snap.Shop),
	}
}

// FileStore keeps one JSON document per profile in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(profile string) string {
	return filepath.Join(f.dir, profile+".json")
}

func (f *FileStore) Load(ctx context.Context, profile string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if err := ValidateProfile(profile); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(f.path(profile))
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read profile: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode profile: %w", err)
	}
	return snap, nil
}

func (f *FileStore) Save(ctx context.Context, profile string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	return fileutil.WriteJSON(f.path(profile), snap, 0o644)
}

func (f *FileStore) Close() error { return nil }
