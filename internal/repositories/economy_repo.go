package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/models"
)

// EconomyRepository reads bot-owned economy tables and records admin
// balance adjustments.
type EconomyRepository struct {
	db *database.DB
}

func NewEconomyRepository(db *database.DB) *EconomyRepository {
	return &EconomyRepository{db: db}
}

const playerColumns = `player_id, username, coins, total_won, total_lost, games_played, games_won, streak, last_daily, created_at`

func scanPlayerRow(scanner rowScanner) (*models.Player, error) {
	var p models.Player
	err := scanner.Scan(
		&p.PlayerID, &p.Username, &p.Coins, &p.TotalWon, &p.TotalLost,
		&p.GamesPlayed, &p.GamesWon, &p.Streak, &p.LastDaily, &p.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

func (r *EconomyRepository) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`
	return scanPlayerRow(r.db.Pool.QueryRow(ctx, query, playerID))
}

func (r *EconomyRepository) ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY coins DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player, err := scanPlayerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return players, nil
}

// AdjustCoins applies a signed balance delta and records the matching
// transaction row atomically.
func (r *EconomyRepository) AdjustCoins(ctx context.Context, playerID string, amount int64, txType string, description *string) (*models.Player, error) {
	var updated *models.Player

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE players SET coins = coins + $1 WHERE player_id = $2
			RETURNING `+playerColumns, amount, playerID)

		player, err := scanPlayerRow(row)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (player_id, amount, transaction_type, description, timestamp)
			VALUES ($1, $2, $3, $4, NOW())`,
			playerID, amount, txType, description,
		)
		if err != nil {
			return err
		}

		updated = player
		return nil
	})

	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *EconomyRepository) ListTransactions(ctx context.Context, playerID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, player_id, amount, transaction_type, description, timestamp
		FROM transactions WHERE player_id = $1
		ORDER BY timestamp DESC LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.PlayerID, &t.Amount, &t.TransactionType, &t.Description, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return txs, nil
}

func (r *EconomyRepository) ListGameHistory(ctx context.Context, playerID string, limit int) ([]*models.GameRound, error) {
	query := `
		SELECT id, player_id, game_type, bet_amount, result, winnings, timestamp
		FROM game_history WHERE player_id = $1
		ORDER BY timestamp DESC LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	rounds := make([]*models.GameRound, 0)
	for rows.Next() {
		var g models.GameRound
		if err := rows.Scan(&g.ID, &g.PlayerID, &g.GameType, &g.BetAmount, &g.Result, &g.Winnings, &g.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan game round: %w", err)
		}
		rounds = append(rounds, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rounds, nil
}

// GlobalStats aggregates economy-wide totals in a single query.
func (r *EconomyRepository) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM players),
			(SELECT COALESCE(SUM(coins), 0) FROM players),
			(SELECT COUNT(*) FROM game_history),
			(SELECT COALESCE(AVG(coins), 0) FROM players)
	`

	var stats models.GlobalStats
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&stats.TotalPlayers, &stats.TotalCoins, &stats.TotalGames, &stats.AvgCoinsPlayer,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GameTypeStats aggregates game results, optionally narrowed to one type.
func (r *EconomyRepository) GameTypeStats(ctx context.Context, gameType string) ([]*models.GameStats, error) {
	query := `
		SELECT game_type,
		       COUNT(*),
		       SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END),
		       COALESCE(SUM(bet_amount), 0),
		       COALESCE(SUM(winnings), 0)
		FROM game_history
	`
	var args []interface{}
	if gameType != "" {
		query += ` WHERE game_type = $1`
		args = append(args, gameType)
	}
	query += ` GROUP BY game_type`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*models.GameStats, 0)
	for rows.Next() {
		var s models.GameStats
		if err := rows.Scan(&s.GameType, &s.TotalGames, &s.Wins, &s.TotalBet, &s.TotalWinnings); err != nil {
			return nil, fmt.Errorf("failed to scan game stats: %w", err)
		}
		stats = append(stats, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stats, nil
}
