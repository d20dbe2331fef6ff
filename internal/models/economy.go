package models

import "time"

// Player is a virtual-economy participant owned by the external bot
// process. The dashboard reads players and adjusts balances; it never
// creates or deletes them.
type Player struct {
	PlayerID    string
	Username    string
	Coins       int64
	TotalWon    int64
	TotalLost   int64
	GamesPlayed int64
	GamesWon    int64
	Streak      int64
	LastDaily   *time.Time
	CreatedAt   time.Time
}

// Transaction types recorded for admin balance adjustments.
const (
	TransactionAdminAdd    = "admin_add"
	TransactionAdminRemove = "admin_remove"
)

// Transaction is a single balance movement for a player.
type Transaction struct {
	ID              int64
	PlayerID        string
	Amount          int64
	TransactionType string
	Description     *string
	Timestamp       time.Time
}

// GameRound is one game played by a player, written by the bot.
type GameRound struct {
	ID        int64
	PlayerID  string
	GameType  string
	BetAmount int64
	Result    string
	Winnings  int64
	Timestamp time.Time
}

// GlobalStats aggregates economy-wide numbers for the dashboard.
type GlobalStats struct {
	TotalPlayers    int64   `json:"total_players"`
	TotalCoins      int64   `json:"total_coins"`
	TotalGames      int64   `json:"total_games"`
	AvgCoinsPlayer  float64 `json:"avg_coins_per_player"`
}

// GameStats aggregates results for a single game type.
type GameStats struct {
	GameType      string `json:"game_type"`
	TotalGames    int64  `json:"total_games"`
	Wins          int64  `json:"wins"`
	TotalBet      int64  `json:"total_bet"`
	TotalWinnings int64  `json:"total_winnings"`
}
