package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is one user's best result on a quiz.
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserID         uuid.UUID `json:"user_id"`
	UserName       string    `json:"user_name"`
	UserPhotoURL   string    `json:"user_photo_url,omitempty"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}

// BuildRanking reduces a quiz's attempts to one entry per user (their best)
// and orders them. Best means more correct answers; among equal attempts the
// earlier completion wins, including across the same user's retries.
func BuildRanking(attempts []Attempt) []LeaderboardEntry {
	best := make(map[uuid.UUID]*Attempt)
	for i := range attempts {
		a := &attempts[i]
		cur, ok := best[a.UserID]
		if !ok || betterAttempt(a, cur) {
			best[a.UserID] = a
		}
	}

	entries := make([]LeaderboardEntry, 0, len(best))
	for _, a := range best {
		entries = append(entries, LeaderboardEntry{
			UserID:         a.UserID,
			UserName:       a.UserName,
			UserPhotoURL:   a.UserPhotoURL,
			CorrectAnswers: a.CorrectAnswers,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			CompletedAt:    a.CompletedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CorrectAnswers != entries[j].CorrectAnswers {
			return entries[i].CorrectAnswers > entries[j].CorrectAnswers
		}
		return entries[i].CompletedAt.Before(entries[j].CompletedAt)
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func betterAttempt(a, b *Attempt) bool {
	if a.CorrectAnswers != b.CorrectAnswers {
		return a.CorrectAnswers > b.CorrectAnswers
	}
	return a.CompletedAt.Before(b.CompletedAt)
}
