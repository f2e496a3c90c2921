// Package redis provides a Redis-backed invoice store shared between
// machines.
//
// Each user's invoices live in one hash keyed by invoice ID. Every write
// publishes a change message so other processes connected to the same
// server refresh their subscribers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/feed"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/record"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.InvoiceStore = (*Store)(nil)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "finvoice"

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces keys. Empty means DefaultPrefix.
	Prefix string
}

// Keys builds the key names used by the store.
type Keys struct {
	prefix string
}

// NewKeys returns the key builder for prefix.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{prefix: prefix}
}

// Users is the set of user IDs that own at least one invoice.
func (k Keys) Users() string {
	return k.prefix + ":users"
}

// Invoices is the hash of one user's invoices.
func (k Keys) Invoices(userID string) string {
	return k.prefix + ":invoices:" + userID
}

// Changes is the pub/sub channel carrying change messages.
func (k Keys) Changes() string {
	return k.prefix + ":changes"
}

// change is published after every write.
type change struct {
	Origin string `json:"origin"`
	Op     string `json:"op"`
	UserID string `json:"userId"`
	ID     string `json:"id"`
}

// Store implements driven.InvoiceStore on Redis.
type Store struct {
	client *goredis.Client
	keys   Keys
	origin string
	hub    *feed.Hub

	mu     sync.Mutex
	pubsub *goredis.PubSub
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	s := &Store{
		client: client,
		keys:   NewKeys(cfg.Prefix),
		origin: uuid.NewString(),
	}
	s.hub = feed.NewHub(s.load)
	logger.Debug("Connected to redis %s (db %d)", cfg.Addr, cfg.DB)
	return s, nil
}

// Close stops the change listener and closes the connection.
func (s *Store) Close() error {
	s.hub.Close()
	s.mu.Lock()
	if s.pubsub != nil {
		_ = s.pubsub.Close()
		s.pubsub = nil
	}
	s.mu.Unlock()
	return s.client.Close()
}

// Save stores or replaces an invoice.
func (s *Store) Save(ctx context.Context, inv *domain.Invoice) error {
	if inv.UserID == "" || inv.ID == "" {
		return fmt.Errorf("%w: invoice needs an ID and owner", domain.ErrInvalidInput)
	}

	doc, err := record.Marshal(inv)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.keys.Invoices(inv.UserID), inv.ID, doc)
		pipe.SAdd(ctx, s.keys.Users(), inv.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving invoice: %w", err)
	}

	s.publish(ctx, change{Op: "save", UserID: inv.UserID, ID: inv.ID})
	s.hub.Notify(ctx)
	return nil
}

// Get retrieves one invoice of a user.
func (s *Store) Get(ctx context.Context, userID, id string) (*domain.Invoice, error) {
	doc, err := s.client.HGet(ctx, s.keys.Invoices(userID), id).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading invoice: %w", err)
	}
	return record.Unmarshal([]byte(doc))
}

// deleteScript removes an invoice and drops its owner from the users set
// once their hash is empty, atomically.
var deleteScript = goredis.NewScript(`
local n = redis.call("HDEL", KEYS[1], ARGV[1])
if n > 0 and redis.call("HLEN", KEYS[1]) == 0 then
	redis.call("SREM", KEYS[2], ARGV[2])
end
return n
`)

// Delete removes one invoice of a user.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	keys := []string{s.keys.Invoices(userID), s.keys.Users()}
	n, err := deleteScript.Run(ctx, s.client, keys, id, userID).Int()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	s.publish(ctx, change{Op: "delete", UserID: userID, ID: id})
	s.hub.Notify(ctx)
	return nil
}

// List returns a user's invoices, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	if err := s.appendUser(ctx, &invoices, userID); err != nil {
		return nil, err
	}
	domain.SortNewestFirst(invoices)
	return invoices, nil
}

// ListAll returns every user's invoices, newest first.
func (s *Store) ListAll(ctx context.Context) ([]domain.Invoice, error) {
	users, err := s.client.SMembers(ctx, s.keys.Users()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	invoices := []domain.Invoice{}
	for _, userID := range users {
		if err := s.appendUser(ctx, &invoices, userID); err != nil {
			return nil, err
		}
	}
	domain.SortNewestFirst(invoices)
	return invoices, nil
}

// Subscribe delivers snapshots of scope to fn.
func (s *Store) Subscribe(
	ctx context.Context,
	scope domain.StoreScope,
	fn driven.SnapshotFunc,
) (func(), error) {
	return s.hub.Subscribe(ctx, scope, fn)
}

// Watch listens for changes published by other processes until ctx is
// done or the store is closed.
func (s *Store) Watch(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.keys.Changes())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", s.keys.Changes(), err)
	}

	s.mu.Lock()
	s.pubsub = pubsub
	s.mu.Unlock()

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if s.handleMessage(msg.Payload) {
					s.hub.Notify(ctx)
				}
			}
		}
	}()
	return nil
}

// handleMessage reports whether payload describes a change made by
// another process.
func (s *Store) handleMessage(payload string) bool {
	var c change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		logger.Warn("ignoring malformed change message: %v", err)
		return false
	}
	if c.Origin == s.origin {
		return false
	}
	logger.Debug("Remote %s of invoice %s/%s", c.Op, c.UserID, c.ID)
	return true
}

func (s *Store) publish(ctx context.Context, c change) {
	c.Origin = s.origin
	payload, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, s.keys.Changes(), payload).Err(); err != nil {
		logger.Warn("publish invoice change: %v", err)
	}
}

func (s *Store) appendUser(ctx context.Context, invoices *[]domain.Invoice, userID string) error {
	docs, err := s.client.HVals(ctx, s.keys.Invoices(userID)).Result()
	if err != nil {
		return fmt.Errorf("listing invoices of %s: %w", userID, err)
	}
	for _, doc := range docs {
		inv, err := record.Unmarshal([]byte(doc))
		if err != nil {
			return err
		}
		*invoices = append(*invoices, *inv)
	}
	return nil
}

func (s *Store) load(ctx context.Context, scope domain.StoreScope) ([]domain.Invoice, error) {
	if scope.All {
		return s.ListAll(ctx)
	}
	return s.List(ctx, scope.UserID)
}
