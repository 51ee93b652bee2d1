// Package database defines the account, usage and settings persistence
// reached through the MySQL write/read pools, with a Redis read-through
// cache in front of the hot lookups.
package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Store struct {
	wdb   *sql.DB
	rdb   *sql.DB
	redis *redis.Client
	log   *zap.SugaredLogger
}

func New(wdb, rdb *sql.DB, redisClient *redis.Client, log *zap.SugaredLogger) (*Store, error) {
	if err := wdb.Ping(); err != nil {
		return nil, errors.New("failed ping to sql db")
	}
	if err := rdb.Ping(); err != nil {
		return nil, errors.New("failed to ping read replica sql db")
	}
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, errors.New("failed ping to redis db")
	}
	return &Store{wdb: wdb, rdb: rdb, redis: redisClient, log: log}, nil
}
