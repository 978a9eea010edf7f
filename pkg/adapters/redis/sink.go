// Package redis provides an event sink backed by Redis. The whole log is
// stored as one JSON value under a prefixed key, matching the wholesale
// LoadLog/SaveLog contract.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier/pkg/domain"
)

// Sink implements ports.EventSink using Redis.
type Sink struct {
	client *backend.Client
	prefix string
	key    string
	ttl    time.Duration
}

type Option func(*Sink)

// WithPrefix sets the key prefix (default "espalier:").
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// WithKey sets the log key within the prefix (default "log"). Hosts running
// several engines against one Redis use distinct keys.
func WithKey(key string) Option {
	return func(s *Sink) {
		s.key = key
	}
}

// WithTTL sets an expiration for the persisted log. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) {
		s.ttl = ttl
	}
}

// New creates a Redis sink with its own client.
func New(address, password string, db int, opts ...Option) *Sink {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	sink := &Sink{
		client: client,
		prefix: "espalier:",
		key:    "log",
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

func (s *Sink) logKey() string {
	return s.prefix + s.key
}

// LoadLog fetches and decodes the persisted log. A missing key is an empty
// log.
func (s *Sink) LoadLog(ctx context.Context) ([]domain.Event, error) {
	data, err := s.client.Get(ctx, s.logKey()).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch event log: %w", err)
	}

	var log []domain.Event
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse event log: %w", err)
	}
	return log, nil
}

// SaveLog stores the log wholesale under the log key.
func (s *Sink) SaveLog(ctx context.Context, log []domain.Event) error {
	if log == nil {
		log = []domain.Event{}
	}
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal event log: %w", err)
	}
	if err := s.client.Set(ctx, s.logKey(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store event log: %w", err)
	}
	return nil
}
