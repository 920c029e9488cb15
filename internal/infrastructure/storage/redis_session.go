package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/domain/entity"
)

const sessionKeyPrefix = "session:"

// RedisSessionRepository sessiyalarni JSON ko'rinishida Redisda saqlaydi.
// TTL har yozuvda yangilanadi, shuning uchun faol suhbat hech qachon
// o'chib ketmaydi.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// RedisConfig ulanish sozlamalari.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient ulanishni ochadi va ping bilan tekshiradi.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisSessionRepository tayyor client ustida repo quradi.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisSessionRepository {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSessionRepository{client: client, ttl: ttl, log: log}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, chatID)
}

func (r *RedisSessionRepository) Load(ctx context.Context, chatID int64) (*entity.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load %d: %w", chatID, err)
	}
	var s entity.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// Buzilgan yozuv o'chiriladi, suhbat toza sessiyadan davom etadi
		r.log.Warn("corrupt session dropped", zap.Int64("chat_id", chatID), zap.Error(err))
		_ = r.client.Del(ctx, sessionKey(chatID)).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *entity.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session marshal %d: %w", session.ChatID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ChatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session save %d: %w", session.ChatID, err)
	}
	return nil
}

// All sessiyalarni SCAN bilan yig'adi. Jimlik tekshiruvi past chastotada
// ishlaydi, shuning uchun to'liq skan muammo emas.
func (r *RedisSessionRepository) All(ctx context.Context) ([]*entity.Session, error) {
	var out []*entity.Session
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("session scan get %s: %w", iter.Val(), err)
		}
		var s entity.Session
		if err := json.Unmarshal(raw, &s); err != nil {
			r.log.Warn("corrupt session skipped", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		out = append(out, &s)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("session scan: %w", err)
	}
	return out, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("session delete %d: %w", chatID, err)
	}
	return nil
}
