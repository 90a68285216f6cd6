package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func attempt(userID uuid.UUID, name string, correct int, completedAt time.Time) Attempt {
	return Attempt{
		ID:             uuid.New(),
		UserID:         userID,
		UserName:       name,
		CorrectAnswers: correct,
		TotalQuestions: 10,
		Percentage:     ScorePercentage(correct, 10),
		CompletedAt:    completedAt,
	}
}

func TestBuildRankingKeepsBestAttemptPerUser(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	alice := uuid.New()
	bob := uuid.New()

	entries := BuildRanking([]Attempt{
		attempt(alice, "Alice", 4, base),
		attempt(alice, "Alice", 9, base.Add(time.Hour)),
		attempt(bob, "Bob", 7, base.Add(30*time.Minute)),
	})

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (one per user)", len(entries))
	}
	if entries[0].UserID != alice || entries[0].CorrectAnswers != 9 {
		t.Fatalf("rank 1 = %s with %d correct, want Alice's best (9)",
			entries[0].UserName, entries[0].CorrectAnswers)
	}
	if entries[1].UserID != bob {
		t.Fatalf("rank 2 = %s, want Bob", entries[1].UserName)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("ranks = %d,%d, want 1,2", entries[0].Rank, entries[1].Rank)
	}
}

func TestBuildRankingTieBreaksOnEarlierCompletion(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	early := uuid.New()
	late := uuid.New()

	entries := BuildRanking([]Attempt{
		attempt(late, "Late", 8, base.Add(time.Hour)),
		attempt(early, "Early", 8, base),
	})

	if entries[0].UserID != early {
		t.Fatalf("rank 1 = %s, want the earlier finisher", entries[0].UserName)
	}
}

func TestBuildRankingPrefersEarlierOfEqualRetries(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	user := uuid.New()

	entries := BuildRanking([]Attempt{
		attempt(user, "Solo", 8, base.Add(time.Hour)),
		attempt(user, "Solo", 8, base),
	})

	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if !entries[0].CompletedAt.Equal(base) {
		t.Fatalf("kept attempt at %v, want the earlier equal retry at %v",
			entries[0].CompletedAt, base)
	}
}

func TestBuildRankingEmpty(t *testing.T) {
	if entries := BuildRanking(nil); len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}
