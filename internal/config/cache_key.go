package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active token ID.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// QuizPayloadKey returns the cache key for a quiz's player-facing payload.
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// LeaderboardKey returns the cache key for a quiz's computed ranking.
func (r *CacheKeyStruct) LeaderboardKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:leaderboard", quizID)
}

var CacheKey = NewCacheKeyStruct()
