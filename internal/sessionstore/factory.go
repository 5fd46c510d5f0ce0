package sessionstore

import (
	"surveychat/internal/model"
)

// StoreType selects the session store backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// NewStore creates a session store for the given driver type.
// The redis driver requires WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{
			sessions: make(map[string]*model.Session),
		}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		prefix := config.keyPrefix
		if prefix == "" {
			prefix = defaultKeyPrefix
		}
		return &redisStore{
			client:    config.redisClient,
			keyPrefix: prefix,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
