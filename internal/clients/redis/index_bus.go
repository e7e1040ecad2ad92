package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/partaj-app/partaj-backend/internal/platform/logger"
	"github.com/partaj-app/partaj-backend/internal/search"
)

// IndexBus carries search documents from the API and the batch indexer
// to the index-consumer process over a Redis channel.
type IndexBus interface {
	PublishReferral(ctx context.Context, doc search.ReferralDocument) error
	PublishNote(ctx context.Context, doc search.NoteDocument) error
	StartConsumer(ctx context.Context, onReferral func(search.ReferralDocument), onNote func(search.NoteDocument)) error
	Close() error
}

type indexMessage struct {
	Kind     string                   `json:"kind"`
	Referral *search.ReferralDocument `json:"referral,omitempty"`
	Note     *search.NoteDocument     `json:"note,omitempty"`
}

const (
	kindReferral = "referral"
	kindNote     = "note"
)

type indexBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewIndexBus(log *logger.Logger) (IndexBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_INDEX_CHANNEL"))
	if ch == "" {
		ch = "search-index"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &indexBus{
		log:     log.With("client", "RedisIndexBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *indexBus) PublishReferral(ctx context.Context, doc search.ReferralDocument) error {
	return b.publish(ctx, indexMessage{Kind: kindReferral, Referral: &doc})
}

func (b *indexBus) PublishNote(ctx context.Context, doc search.NoteDocument) error {
	return b.publish(ctx, indexMessage{Kind: kindNote, Note: &doc})
}

func (b *indexBus) publish(ctx context.Context, msg indexMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("index bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *indexBus) StartConsumer(ctx context.Context, onReferral func(search.ReferralDocument), onNote func(search.NoteDocument)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("index bus not initialized")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg indexMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad index payload", "error", err)
					continue
				}
				switch msg.Kind {
				case kindReferral:
					if onReferral != nil && msg.Referral != nil {
						onReferral(*msg.Referral)
					}
				case kindNote:
					if onNote != nil && msg.Note != nil {
						onNote(*msg.Note)
					}
				default:
					b.log.Warn("unknown index message kind", "kind", msg.Kind)
				}
			}
		}
	}()

	return nil
}

func (b *indexBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
