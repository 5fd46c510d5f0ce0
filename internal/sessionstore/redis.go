package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveychat/internal/model"
)

const defaultKeyPrefix = "chat:session:"

// redisStore persists each session record as a JSON value under one key.
// Conditional updates run inside a WATCH transaction so two concurrent
// appends cannot both win. Records carry no TTL: experiment transcripts
// outlive the session.
type redisStore struct {
	client    *redis.Client
	keyPrefix string
}

func (s *redisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session record failed: %w", err)
	}
	return &session, nil
}

func (s *redisStore) Put(ctx context.Context, session *model.Session) error {
	session.Version = 1
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session record failed: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(session.SessionID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("redis put session failed: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func (s *redisStore) UpdateMessages(ctx context.Context, sessionID string, messages []model.Message, updatedAt time.Time, version int64) error {
	key := s.key(sessionID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get session failed: %w", err)
		}

		var stored model.Session
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return fmt.Errorf("unmarshal session record failed: %w", err)
		}
		if stored.Version != version {
			return ErrVersionConflict
		}

		stored.Messages = messages
		stored.UpdatedAt = updatedAt
		stored.Version++

		payload, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("marshal session record failed: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return ErrVersionConflict
	}
	return err
}

// CountByOwner walks every session key and inspects the stored owner.
// This is the quota scan of the original design; it is acceptable only
// because per-owner session counts are bounded and creation is rare.
func (s *redisStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("redis scan owner failed: %w", err)
		}

		var probe struct {
			OwnerID string `json:"user_id"`
		}
		if err := json.Unmarshal([]byte(raw), &probe); err != nil {
			continue
		}
		if probe.OwnerID == ownerID {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan sessions failed: %w", err)
	}
	return count, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
