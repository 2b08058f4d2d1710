package provider

import (
	"context"
	"testing"
	"time"

	"quizis-session-service/internal/domain"
)

func TestCategoryCacheServesFromCache(t *testing.T) {
	source := &countingSource{categories: []domain.Category{{ID: 9, Name: "General Knowledge"}}}
	cache := NewCategoryCache(source, time.Minute)

	if _, err := cache.ListCategories(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source called once, got %d", source.calls)
	}

	// Second call should hit the cache.
	if _, err := cache.ListCategories(context.Background()); err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
}

func TestCategoryCacheRefreshesAfterTTL(t *testing.T) {
	source := &countingSource{categories: []domain.Category{{ID: 9, Name: "General Knowledge"}}}
	cache := NewCategoryCache(source, time.Minute)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.ListCategories(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}

	// Jitter adds at most 10%, so 2 minutes is safely past expiry.
	now = now.Add(2 * time.Minute)
	if _, err := cache.ListCategories(context.Background()); err != nil {
		t.Fatalf("list after expiry: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refresh after ttl, source calls=%d", source.calls)
	}
}

type countingSource struct {
	categories []domain.Category
	calls      int
}

func (s *countingSource) ListCategories(context.Context) ([]domain.Category, error) {
	s.calls++
	return s.categories, nil
}
