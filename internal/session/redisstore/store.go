// Package redisstore keeps session profiles in Redis hashes.
//
// Each profile is one hash: coins as an integer field and each card view as
// a JSON-encoded field.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mitchellh/mapstructure"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/session"
)

// DefaultPrefix namespaces profile keys.
const DefaultPrefix = "spelljack:profile:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store persists session profiles in Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

var _ session.Store = (*Store)(nil)

// Open connects to Redis and checks the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb, opts.Prefix), nil
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *Store) key(profile string) string {
	return s.prefix + profile
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// record is the hash layout of one profile.
type record struct {
	Coins      int    `mapstructure:"coins"`
	Collection string `mapstructure:"collection"`
	PlayDeck   string `mapstructure:"play_deck"`
	Loadout    string `mapstructure:"loadout"`
	Shop       string `mapstructure:"shop"`
	UpdatedAt  int64  `mapstructure:"updated_at"`
}

// Load reads a profile hash.
func (s *Store) Load(ctx context.Context, profile string) (session.Snapshot, error) {
	if err := session.ValidateProfile(profile); err != nil {
		return session.Snapshot{}, err
	}
	fields, err := s.rdb.HGetAll(ctx, s.key(profile)).Result()
	if err != nil && err != redis.Nil {
		return session.Snapshot{}, fmt.Errorf("get profile: %w", err)
	}
	if len(fields) == 0 {
		return session.Snapshot{}, session.ErrNotFound
	}
	return decodeFields(fields)
}

// Save overwrites a profile hash.
func (s *Store) Save(ctx context.Context, profile string, snap session.Snapshot) error {
	if err := session.ValidateProfile(profile); err != nil {
		return err
	}
	fields, err := encodeFields(snap, s.now())
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, s.key(profile), fields).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func encodeFields(snap session.Snapshot, now time.Time) (map[string]interface{}, error) {
	fields := map[string]interface{}{
		"coins":      snap.Coins,
		"updated_at": now.UTC().UnixMilli(),
	}
	for name, cards := range map[string][]deck.Card{
		"collection": snap.Collection,
		"play_deck":  snap.PlayDeck,
		"loadout":    snap.Loadout,
		"shop":       snap.Shop,
	} {
		if cards == nil {
			cards = []deck.Card{}
		}
		data, err := json.Marshal(cards)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		fields[name] = string(data)
	}
	return fields, nil
}

func decodeFields(fields map[string]string) (session.Snapshot, error) {
	var rec record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToIntHookFunc(),
		Result:     &rec,
	})
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode profile: %w", err)
	}

	snap := session.Snapshot{Coins: rec.Coins}
	for _, v := range []struct {
		name string
		raw  string
		dst  *[]deck.Card
	}{
		{"collection", rec.Collection, &snap.Collection},
		{"play_deck", rec.PlayDeck, &snap.PlayDeck},
		{"loadout", rec.Loadout, &snap.Loadout},
		{"shop", rec.Shop, &snap.Shop},
	} {
		if v.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(v.raw), v.dst); err != nil {
			return session.Snapshot{}, fmt.Errorf("decode %s: %w", v.name, err)
		}
	}
	return snap, nil
}

func stringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from != reflect.String {
			return data, nil
		}
		switch to {
		case reflect.Int:
			return strconv.Atoi(data.(string))
		case reflect.Int64:
			return strconv.ParseInt(data.(string), 10, 64)
		}
		return data, nil
	}
}
