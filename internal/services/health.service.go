package services

import (
	"context"
	"time"

	"github.com/ipaynotify/ipaynotify/pkg/pg"
	"github.com/ipaynotify/ipaynotify/pkg/redis"
)

type HealthService struct {
	db    *pg.DB
	redis redis.RedisAdapter
}

func NewHealthService(db *pg.DB, redis redis.RedisAdapter) *HealthService {
	return &HealthService{
		db:    db,
		redis: redis,
	}
}

// Get pings the database and redis. Any failure marks the service unhealthy.
func (s *HealthService) Get() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sqlDB, err := s.db.Read(ctx).DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	if s.redis != nil {
		if err := s.redis.Client().Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
