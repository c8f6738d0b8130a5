package domain

import "time"

// Stat records the outcome of a single game session.
type Stat struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	PlayerID       string    `json:"playerId" bson:"player_id"`
	PlayerName     string    `json:"playerName" bson:"player_name"`
	Jumps          int       `json:"jumps" bson:"jumps"`
	PipesPassed    int       `json:"pipesPassed" bson:"pipes_passed"`
	GameMode       string    `json:"gameMode" bson:"game_mode"`
	Date           time.Time `json:"date" bson:"date"`
	IdempotencyKey string    `json:"-" bson:"idempotency_key,omitempty"`
}

// DailyJumps is the total number of jumps recorded on one UTC day.
type DailyJumps struct {
	Date  string `json:"date" bson:"_id"`
	Jumps int64  `json:"jumps" bson:"jumps"`
}
