package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/macacolandia/dashboard-api/internal/models"
)

const (
	defaultPlayerPageSize = 50
	maxPlayerPageSize     = 200
)

// EconomyService provides read access to the bot-owned economy tables and
// the admin coin adjustment operation. The bot remains the writer of
// record for gameplay; the dashboard only reads and applies explicit admin
// corrections.
type EconomyService struct {
	repo     EconomyRepository
	activity ActivityLogRepository
	logger   *slog.Logger
}

func NewEconomyService(repo EconomyRepository, activity ActivityLogRepository, logger *slog.Logger) *EconomyService {
	return &EconomyService{
		repo:     repo,
		activity: activity,
		logger:   logger,
	}
}

// ListPlayers returns players ordered by balance.
func (s *EconomyService) ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	if limit <= 0 {
		limit = defaultPlayerPageSize
	}
	if limit > maxPlayerPageSize {
		limit = maxPlayerPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPlayers(ctx, limit, offset)
}

// GetPlayer returns one player by bot player id.
func (s *EconomyService) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	return s.repo.GetPlayer(ctx, playerID)
}

// Transactions returns a player's recent coin movements.
func (s *EconomyService) Transactions(ctx context.Context, playerID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = defaultLogQueryLimit
	}
	if limit > maxLogQueryLimit {
		limit = maxLogQueryLimit
	}
	return s.repo.ListTransactions(ctx, playerID, limit)
}

// GameHistory returns a player's recent game rounds.
func (s *EconomyService) GameHistory(ctx context.Context, playerID string, limit int) ([]*models.GameRound, error) {
	if limit <= 0 {
		limit = defaultLogQueryLimit
	}
	if limit > maxLogQueryLimit {
		limit = maxLogQueryLimit
	}
	return s.repo.ListGameHistory(ctx, playerID, limit)
}

// AdjustCoins applies an admin balance correction and records both the
// economy transaction and the admin activity entry.
func (s *EconomyService) AdjustCoins(ctx context.Context, playerID string, amount int64, reason, adminID, ipAddress string) (*models.Player, error) {
	if amount == 0 {
		return nil, &models.ValidationError{Message: "amount must be non-zero"}
	}

	txType := models.TransactionAdminAdd
	if amount < 0 {
		txType = models.TransactionAdminRemove
	}

	var description *string
	if reason != "" {
		description = &reason
	}

	player, err := s.repo.AdjustCoins(ctx, playerID, amount, txType, description)
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("adjusted coins by %d for player %s", amount, playerID)
	entry := &models.ActivityLogEntry{
		AccountID: &adminID,
		Action:    "adjust_coins",
		Details:   &detail,
	}
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Error("failed to log coin adjustment", slog.Any("error", err))
	}

	return player, nil
}

// Stats aggregates the dashboard landing numbers plus per-game breakdowns.
type Stats struct {
	Global *models.GlobalStats
	Games  []*models.GameStats
}

// Stats returns the global economy aggregates and per-game stats,
// optionally filtered to one game type.
func (s *EconomyService) Stats(ctx context.Context, gameType string) (*Stats, error) {
	global, err := s.repo.GlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load global stats: %w", err)
	}
	games, err := s.repo.GameTypeStats(ctx, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to load game stats: %w", err)
	}
	return &Stats{Global: global, Games: games}, nil
}
