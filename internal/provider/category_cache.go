package provider

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quizis-session-service/internal/domain"
)

// CategorySource lists quiz categories (typically the trivia API client).
type CategorySource interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryCache caches a category listing with a TTL, collapsing concurrent
// refreshes through singleflight. Question fetches are parameterized per quiz
// and not worth caching, so they stay on the underlying client.
type CategoryCache struct {
	next CategorySource
	ttl  time.Duration

	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Category
	expiresAt time.Time
}

func NewCategoryCache(next CategorySource, ttl time.Duration) *CategoryCache {
	return &CategoryCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CategoryCache) ListCategories(ctx context.Context) ([]domain.Category, error) {
	now := c.clock()

	c.mu.RLock()
	if c.cached != nil && c.expiresAt.After(now) {
		categories := c.cached
		c.mu.RUnlock()
		return categories, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("categories", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.cached != nil && c.expiresAt.After(now) {
			categories := c.cached
			c.mu.RUnlock()
			return categories, nil
		}
		c.mu.RUnlock()

		categories, err := c.next.ListCategories(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = categories
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

// Source is the full provider surface: categories plus question fetches.
type Source interface {
	CategorySource
	FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error)
}

// Cached decorates a Source with the category cache.
type Cached struct {
	Source
	categories *CategoryCache
}

func WithCategoryCache(next Source, ttl time.Duration) *Cached {
	return &Cached{Source: next, categories: NewCategoryCache(next, ttl)}
}

func (c *Cached) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return c.categories.ListCategories(ctx)
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread refreshes
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
