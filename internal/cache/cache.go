// Package cache - короткоживущий кэш отрендеренных ответов.
// Внедряется в composition root, а не глобальный объект, чтобы TTL
// и инвалидация тестировались изолированно.
package cache

import (
	"context"
	"time"
)

// Cache - интерфейс для всех типов кэша (in-memory и Redis)
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Clear сбрасывает весь кэш. Административный/тестовый хук
	Clear(ctx context.Context)
}
