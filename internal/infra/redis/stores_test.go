package redis

import (
	"context"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quizis-session-service/internal/domain"
)

func TestProgressStoreRoundTripIsLossless(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewProgressStore(client, time.Minute)

	session := domain.Session{
		Category: "Entertainment: Film",
		Questions: []domain.Question{
			{
				Text:             `Which movie featured the line "Here's looking at you, kid"?`,
				CorrectAnswer:    "Casablanca",
				IncorrectAnswers: []string{"Citizen Kane", "Gone with the Wind", "The Maltese Falcon"},
				Difficulty:       "medium",
			},
			{
				Text:             "Who directed Jaws?",
				CorrectAnswer:    "Steven Spielberg",
				IncorrectAnswers: []string{"George Lucas", "Martin Scorsese", "Stanley Kubrick"},
				Difficulty:       "easy",
			},
		},
		CurrentIndex: 1,
		Answers: []domain.Answer{
			{Question: "q1", Selected: "Casablanca", CorrectAnswer: "Casablanca", Correct: true},
		},
		TimerBudget: 300,
		StartedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := store.Save(ctx, "u1", session); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Get(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, session) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, session)
	}
}

func TestProgressStoreDeleteReportsRemoval(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewProgressStore(client, time.Minute)
	session := domain.Session{
		Category:    "Science",
		Questions:   []domain.Question{{Text: "q", CorrectAnswer: "a"}},
		Answers:     []domain.Answer{},
		TimerBudget: 60,
		StartedAt:   time.Now().UTC(),
	}
	if err := store.Save(ctx, "u1", session); err != nil {
		t.Fatalf("save: %v", err)
	}

	removed, err := store.Delete(ctx, "u1")
	if err != nil || !removed {
		t.Fatalf("expected first delete to remove, removed=%v err=%v", removed, err)
	}
	removed, err = store.Delete(ctx, "u1")
	if err != nil || removed {
		t.Fatalf("expected second delete to be a no-op, removed=%v err=%v", removed, err)
	}
}

func TestResultStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewResultStore(client, time.Minute)
	result := domain.ResultSummary{
		Category:  "Science",
		Total:     3,
		Attempted: 2,
		Correct:   1,
		Incorrect: 1,
		Answers: []domain.Answer{
			{Question: "q1", Selected: "a", CorrectAnswer: "a", Correct: true},
			{Question: "q2", Selected: "b", CorrectAnswer: "c", Correct: false},
		},
		EndedAt: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, "u1", result); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Get(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, result) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, result)
	}
}

func TestCorruptRecordSurfacesAsCorruptState(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestClient(t)
	defer cleanup()

	if err := client.Set(ctx, "quiz:progress:u1", "{not json", 0).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewProgressStore(client, time.Minute)
	_, _, err := store.Get(ctx, "u1")
	if err == nil {
		t.Fatalf("expected error for corrupt record")
	}
}

func TestUserStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewUserStore(client)
	user := domain.User{Username: "alice", Email: "alice@example.com", Password: "pw"}
	if err := store.Save(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Get(ctx, "alice@example.com")
	if err != nil || !ok || got != user {
		t.Fatalf("unexpected user: ok=%v err=%v %+v", ok, err, got)
	}
}

func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}
}
