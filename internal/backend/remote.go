package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/seed"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-lock retries for read-modify-write mutations.
const maxTxRetries = 5

type RemoteParams struct {
	URL    string
	Prefix string
	Logger *slog.Logger
}

// RemoteBackend stores rows in Redis so several devices share one board.
//
// Layout, for prefix p:
//
//	p:categories  hash id -> CategoryRow JSON
//	p:bookmarks   hash id -> BookmarkRow JSON
//	p:tabgroups   hash id -> TabGroupRow JSON
//	p:seq         id counter
//	p:changes     pub/sub channel, payload is the changed resource
//
// Subscribers refetch a resource when its name is published, so every
// device converges on the last write.
type RemoteBackend struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRemoteBackend connects to the Redis at p.URL.
func NewRemoteBackend(ctx context.Context, p RemoteParams) (*RemoteBackend, error) {
	opts, err := redis.ParseURL(p.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRemoteBackendWithClient(client, p.Prefix, p.Logger), nil
}

// NewRemoteBackendWithClient creates a backend from an existing Redis client.
func NewRemoteBackendWithClient(client *redis.Client, prefix string, logger *slog.Logger) *RemoteBackend {
	if prefix == "" {
		prefix = "bmboard"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteBackend{client: client, prefix: prefix, logger: logger}
}

func (b *RemoteBackend) Mode() Mode { return ModeSync }

func (b *RemoteBackend) key(r Resource) string {
	return b.prefix + ":" + string(r)
}

func (b *RemoteBackend) seqKey() string {
	return b.prefix + ":seq"
}

func (b *RemoteBackend) channel() string {
	return b.prefix + ":changes"
}

// Subscribe confirms the subscription before fetching the initial rows,
// so no change published in between is lost.
func (b *RemoteBackend) Subscribe(ctx context.Context, l Listener) (func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel(), err)
	}
	messages := pubsub.Channel()

	ctx, cancel := context.WithCancel(ctx)
	for _, r := range Resources {
		b.refetch(ctx, l, r)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				b.refetch(ctx, l, Resource(msg.Payload))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (b *RemoteBackend) refetch(ctx context.Context, l Listener, r Resource) {
	var err error
	switch r {
	case ResourceCategories:
		var rows []model.CategoryRow
		if rows, err = fetchRows[model.CategoryRow](ctx, b.client, b.key(r)); err == nil && l.Categories != nil {
			l.Categories(rows)
		}
	case ResourceBookmarks:
		var rows []model.BookmarkRow
		if rows, err = fetchRows[model.BookmarkRow](ctx, b.client, b.key(r)); err == nil && l.Bookmarks != nil {
			l.Bookmarks(rows)
		}
	case ResourceTabGroups:
		var rows []model.TabGroupRow
		if rows, err = fetchRows[model.TabGroupRow](ctx, b.client, b.key(r)); err == nil && l.TabGroups != nil {
			l.TabGroups(rows)
		}
	default:
		b.logger.Warn("ignoring change for unknown resource", "resource", r)
		return
	}

	if err == nil || ctx.Err() != nil {
		return
	}
	b.logger.Error("refetch failed", "resource", r, "error", err)
	if l.Error != nil {
		l.Error(r, err)
	}
}

// hashReader is the read side shared by *redis.Client and *redis.Tx.
type hashReader interface {
	HVals(ctx context.Context, key string) *redis.StringSliceCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func fetchRows[T any](ctx context.Context, c hashReader, key string) ([]T, error) {
	values, err := c.HVals(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	rows := make([]T, 0, len(values))
	for _, v := range values {
		var row T
		if err := json.Unmarshal([]byte(v), &row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", key, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func getRow[T any](ctx context.Context, c hashReader, key, id string) (T, error) {
	var row T
	data, err := c.HGet(ctx, key, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return row, fmt.Errorf("%s %s: %w", key, id, ErrNotFound)
	}
	if err != nil {
		return row, fmt.Errorf("get %s %s: %w", key, id, err)
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return row, fmt.Errorf("decode %s %s: %w", key, id, err)
	}
	return row, nil
}

func (b *RemoteBackend) Snapshot(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	var err error
	if snap.Categories, err = fetchRows[model.CategoryRow](ctx, b.client, b.key(ResourceCategories)); err != nil {
		return snap, err
	}
	if snap.Bookmarks, err = fetchRows[model.BookmarkRow](ctx, b.client, b.key(ResourceBookmarks)); err != nil {
		return snap, err
	}
	if snap.TabGroups, err = fetchRows[model.TabGroupRow](ctx, b.client, b.key(ResourceTabGroups)); err != nil {
		return snap, err
	}
	return snap, nil
}

func (b *RemoteBackend) nextID(ctx context.Context) (string, error) {
	n, err := b.client.Incr(ctx, b.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("allocate id: %w", err)
	}
	return strconv.FormatInt(n, 10), nil
}

// publish tells every subscriber which resources changed.
func (b *RemoteBackend) publish(ctx context.Context, changed ...Resource) error {
	_, err := b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range changed {
			pipe.Publish(ctx, b.channel(), string(r))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// update runs a watched read-modify-write over keys, retrying when another
// client changed them in between.
func (b *RemoteBackend) update(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := b.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update %v: too much contention", keys)
}

func hset(ctx context.Context, pipe redis.Pipeliner, key, id string, row any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", key, id, err)
	}
	pipe.HSet(ctx, key, id, data)
	return nil
}

func (b *RemoteBackend) CreateCategory(ctx context.Context, in CategoryInput) (string, error) {
	id, err := b.nextID(ctx)
	if err != nil {
		return "", err
	}
	row := model.CategoryRow{ID: id, Name: in.Name, Order: in.Order, GroupID: model.CloneString(in.GroupID)}
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return hset(ctx, pipe, b.key(ResourceCategories), id, row)
	})
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return id, b.publish(ctx, ResourceCategories)
}

func (b *RemoteBackend) UpdateCategory(ctx context.Context, id string, p CategoryPatch) error {
	key := b.key(ResourceCategories)
	err := b.update(ctx, func(tx *redis.Tx) error {
		row, err := getRow[model.CategoryRow](ctx, tx, key, id)
		if err != nil {
			return err
		}
		p.apply(&row)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return hset(ctx, pipe, key, id, row)
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return b.publish(ctx, ResourceCategories)
}

func (b *RemoteBackend) ReorderCategory(ctx context.Context, id string, order float64, groupID *string) error {
	return b.UpdateCategory(ctx, id, reorderCategoryPatch(order, groupID))
}

func (b *RemoteBackend) DeleteCategory(ctx context.Context, id string) error {
	cats, bms := b.key(ResourceCategories), b.key(ResourceBookmarks)
	err := b.update(ctx, func(tx *redis.Tx) error {
		if _, err := getRow[model.CategoryRow](ctx, tx, cats, id); err != nil {
			return err
		}
		bookmarks, err := fetchRows[model.BookmarkRow](ctx, tx, bms)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, cats, id)
			for _, bm := range bookmarks {
				if bm.CategoryID == id {
					pipe.HDel(ctx, bms, bm.ID)
				}
			}
			return nil
		})
		return err
	}, cats, bms)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return b.publish(ctx, ResourceCategories, ResourceBookmarks)
}

func (b *RemoteBackend) CreateBookmark(ctx context.Context, in BookmarkInput) (string, error) {
	id, err := b.nextID(ctx)
	if err != nil {
		return "", err
	}
	cats, bms := b.key(ResourceCategories), b.key(ResourceBookmarks)
	row := model.BookmarkRow{
		ID:         id,
		CategoryID: in.CategoryID,
		Title:      in.Title,
		URL:        in.URL,
		IconPath:   model.CloneString(in.IconPath),
		Order:      in.Order,
	}
	err = b.update(ctx, func(tx *redis.Tx) error {
		if _, err := getRow[model.CategoryRow](ctx, tx, cats, in.CategoryID); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return hset(ctx, pipe, bms, id, row)
		})
		return err
	}, cats)
	if err != nil {
		return "", fmt.Errorf("create bookmark: %w", err)
	}
	return id, b.publish(ctx, ResourceBookmarks)
}

func (b *RemoteBackend) UpdateBookmark(ctx context.Context, id string, p BookmarkPatch) error {
	cats, bms := b.key(ResourceCategories), b.key(ResourceBookmarks)
	err := b.update(ctx, func(tx *redis.Tx) error {
		row, err := getRow[model.BookmarkRow](ctx, tx, bms, id)
		if err != nil {
			return err
		}
		if p.CategoryID != nil {
			if _, err := getRow[model.CategoryRow](ctx, tx, cats, *p.CategoryID); err != nil {
				return err
			}
		}
		p.apply(&row)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return hset(ctx, pipe, bms, id, row)
		})
		return err
	}, cats, bms)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	return b.publish(ctx, ResourceBookmarks)
}

func (b *RemoteBackend) ReorderBookmark(ctx context.Context, id, categoryID string, order float64) error {
	return b.UpdateBookmark(ctx, id, reorderBookmarkPatch(categoryID, order))
}

func (b *RemoteBackend) DeleteBookmark(ctx context.Context, id string) error {
	n, err := b.client.HDel(ctx, b.key(ResourceBookmarks), id).Result()
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete bookmark %s: %w", id, ErrNotFound)
	}
	return b.publish(ctx, ResourceBookmarks)
}

func (b *RemoteBackend) CreateTabGroup(ctx context.Context, in TabGroupInput) (string, error) {
	id, err := b.nextID(ctx)
	if err != nil {
		return "", err
	}
	row := model.TabGroupRow{ID: id, Name: in.Name, Order: in.Order}
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return hset(ctx, pipe, b.key(ResourceTabGroups), id, row)
	})
	if err != nil {
		return "", fmt.Errorf("create tab group: %w", err)
	}
	return id, b.publish(ctx, ResourceTabGroups)
}

func (b *RemoteBackend) UpdateTabGroup(ctx context.Context, id string, p TabGroupPatch) error {
	key := b.key(ResourceTabGroups)
	err := b.update(ctx, func(tx *redis.Tx) error {
		row, err := getRow[model.TabGroupRow](ctx, tx, key, id)
		if err != nil {
			return err
		}
		p.apply(&row)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return hset(ctx, pipe, key, id, row)
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("update tab group: %w", err)
	}
	return b.publish(ctx, ResourceTabGroups)
}

func (b *RemoteBackend) ReorderTabGroup(ctx context.Context, id string, order float64) error {
	return b.UpdateTabGroup(ctx, id, TabGroupPatch{Order: &order})
}

func (b *RemoteBackend) DeleteTabGroup(ctx context.Context, id string) error {
	groups, cats := b.key(ResourceTabGroups), b.key(ResourceCategories)
	err := b.update(ctx, func(tx *redis.Tx) error {
		if _, err := getRow[model.TabGroupRow](ctx, tx, groups, id); err != nil {
			return err
		}
		categories, err := fetchRows[model.CategoryRow](ctx, tx, cats)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, groups, id)
			for _, c := range categories {
				if c.GroupID != nil && *c.GroupID == id {
					c.GroupID = nil
					if err := hset(ctx, pipe, cats, c.ID, c); err != nil {
						return err
					}
				}
			}
			return nil
		})
		return err
	}, groups, cats)
	if err != nil {
		return fmt.Errorf("delete tab group: %w", err)
	}
	return b.publish(ctx, ResourceTabGroups, ResourceCategories)
}

// Import reserves one id per row up front, then writes everything in one transaction.
func (b *RemoteBackend) Import(ctx context.Context, snap model.Snapshot) error {
	total := int64(len(snap.TabGroups) + len(snap.Categories) + len(snap.Bookmarks))
	if total == 0 {
		return nil
	}
	last, err := b.client.IncrBy(ctx, b.seqKey(), total).Result()
	if err != nil {
		return fmt.Errorf("allocate ids: %w", err)
	}
	next := last - total
	fresh := snap.Reassign(func() string {
		next++
		return strconv.FormatInt(next, 10)
	})

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, g := range fresh.TabGroups {
			if err := hset(ctx, pipe, b.key(ResourceTabGroups), g.ID, g); err != nil {
				return err
			}
		}
		for _, c := range fresh.Categories {
			if err := hset(ctx, pipe, b.key(ResourceCategories), c.ID, c); err != nil {
				return err
			}
		}
		for _, bm := range fresh.Bookmarks {
			if err := hset(ctx, pipe, b.key(ResourceBookmarks), bm.ID, bm); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return b.publish(ctx, Resources...)
}

func (b *RemoteBackend) EraseAll(ctx context.Context) error {
	keys := make([]string, 0, len(Resources))
	for _, r := range Resources {
		keys = append(keys, b.key(r))
	}
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("erase all: %w", err)
	}
	return b.publish(ctx, Resources...)
}

func (b *RemoteBackend) SeedDefaults(ctx context.Context) error {
	snap, err := seed.Defaults()
	if err != nil {
		return err
	}
	return b.Import(ctx, snap)
}

// Close closes the Redis connection
func (b *RemoteBackend) Close() error {
	return b.client.Close()
}
