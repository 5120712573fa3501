package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// Fetch returns the user's bookmarks, newest first.
// Records that fail to decode are skipped and logged.
func (s *Store) Fetch(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, UserBookmarksKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark ids: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Indexed but the record is gone
			continue
		}
		b, err := decodeBookmark([]byte(raw))
		if err == nil && b.UserID != userID {
			err = fmt.Errorf("record owned by another user")
		}
		if err != nil {
			s.logger.Warn("skipping unreadable bookmark record",
				logger.String("bookmark_id", ids[i]),
				logger.String("user_id", userID),
				logger.Error(err))
			continue
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, nil
}

// Insert stores a new bookmark with a server-assigned id and created_at.
func (s *Store) Insert(ctx context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	createdAt := s.now().UTC().Truncate(timePrecision)
	b := d.Apply(domain.Bookmark{
		ID:        newID(createdAt),
		UserID:    userID,
		CreatedAt: createdAt,
	})

	data, err := encodeBookmark(b)
	if err != nil {
		return domain.Bookmark{}, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
		pipe.ZAdd(ctx, UserBookmarksKey(userID), redis.Z{
			Score:  float64(createdAt.UnixMilli()),
			Member: b.ID,
		})
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to save bookmark: %w", err)
	}

	s.publish(ctx, userID, domain.InsertedEvent(b))
	return b, nil
}

// Update replaces the editable fields of one of the user's bookmarks.
// Rows that are missing or owned by someone else yield domain.ErrNotFound.
func (s *Store) Update(ctx context.Context, userID, id string, d domain.Draft) (domain.Bookmark, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	key := BookmarkKey(id)
	var updated domain.Bookmark

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}

		updated = d.Apply(current)
		data, err := encodeBookmark(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Bookmark{}, err
		}
		return domain.Bookmark{}, fmt.Errorf("failed to update bookmark: %w", err)
	}

	s.publish(ctx, userID, domain.UpdatedEvent(updated))
	return updated, nil
}

// Delete removes one of the user's bookmarks. Missing ids and rows owned by
// someone else are acknowledged without effect.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	key := BookmarkKey(id)
	deleted := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, UserBookmarksKey(userID), id)
			return nil
		})
		if err == nil {
			deleted = true
		}
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	if deleted {
		s.publish(ctx, userID, domain.DeletedEvent(id))
	}
	return nil
}

// load reads one record inside a WATCH transaction.
func (s *Store) load(ctx context.Context, tx *redis.Tx, id string) (domain.Bookmark, error) {
	data, err := tx.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Bookmark{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return domain.Bookmark{}, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return decodeBookmark(data)
}
