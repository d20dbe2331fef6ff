package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/macacolandia/dashboard-api/internal/auth"
	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/services"
	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
)

// EconomyServiceInterface is the economy surface consumed by the handler.
type EconomyServiceInterface interface {
	ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error)
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)
	Transactions(ctx context.Context, playerID string, limit int) ([]*models.Transaction, error)
	GameHistory(ctx context.Context, playerID string, limit int) ([]*models.GameRound, error)
	AdjustCoins(ctx context.Context, playerID string, amount int64, reason, adminID, ipAddress string) (*models.Player, error)
	Stats(ctx context.Context, gameType string) (*services.Stats, error)
}

// EconomyHandler serves the player, transaction and stats endpoints.
type EconomyHandler struct {
	economy     EconomyServiceInterface
	proxyConfig *pkghttp.ProxyConfig
}

func NewEconomyHandler(economy EconomyServiceInterface, proxyConfig *pkghttp.ProxyConfig) *EconomyHandler {
	return &EconomyHandler{economy: economy, proxyConfig: proxyConfig}
}

// PlayerResponse is the dashboard view of an economy player.
type PlayerResponse struct {
	PlayerID    string     `json:"player_id"`
	Username    string     `json:"username"`
	Coins       int64      `json:"coins"`
	TotalWon    int64      `json:"total_won"`
	TotalLost   int64      `json:"total_lost"`
	GamesPlayed int64      `json:"games_played"`
	GamesWon    int64      `json:"games_won"`
	Streak      int64      `json:"streak"`
	LastDaily   *time.Time `json:"last_daily,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func playerResponse(p *models.Player) PlayerResponse {
	return PlayerResponse{
		PlayerID:    p.PlayerID,
		Username:    p.Username,
		Coins:       p.Coins,
		TotalWon:    p.TotalWon,
		TotalLost:   p.TotalLost,
		GamesPlayed: p.GamesPlayed,
		GamesWon:    p.GamesWon,
		Streak:      p.Streak,
		LastDaily:   p.LastDaily,
		CreatedAt:   p.CreatedAt,
	}
}

// ListPlayers handles GET /api/players.
func (h *EconomyHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	players, err := h.economy.ListPlayers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list players")
		return
	}

	out := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, playerResponse(p))
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"players": out})
}

// GetPlayer handles GET /api/players/{id}.
func (h *EconomyHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.economy.GetPlayer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "player not found")
			return
		}
		pkghttp.WriteInternalError(w, "failed to load player")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"player": playerResponse(player)})
}

// TransactionResponse is one coin movement row.
type TransactionResponse struct {
	ID              int64     `json:"id"`
	PlayerID        string    `json:"player_id"`
	Amount          int64     `json:"amount"`
	TransactionType string    `json:"transaction_type"`
	Description     *string   `json:"description,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Transactions handles GET /api/players/{id}/transactions.
func (h *EconomyHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.economy.Transactions(r.Context(), chi.URLParam(r, "id"), queryInt(r, "limit"))
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list transactions")
		return
	}

	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionResponse{
			ID:              tx.ID,
			PlayerID:        tx.PlayerID,
			Amount:          tx.Amount,
			TransactionType: tx.TransactionType,
			Description:     tx.Description,
			Timestamp:       tx.Timestamp,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": out})
}

// GameRoundResponse is one game history row.
type GameRoundResponse struct {
	ID        int64     `json:"id"`
	PlayerID  string    `json:"player_id"`
	GameType  string    `json:"game_type"`
	BetAmount int64     `json:"bet_amount"`
	Result    string    `json:"result"`
	Winnings  int64     `json:"winnings"`
	Timestamp time.Time `json:"timestamp"`
}

// Games handles GET /api/players/{id}/games.
func (h *EconomyHandler) Games(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.economy.GameHistory(r.Context(), chi.URLParam(r, "id"), queryInt(r, "limit"))
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list game history")
		return
	}

	out := make([]GameRoundResponse, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, GameRoundResponse{
			ID:        round.ID,
			PlayerID:  round.PlayerID,
			GameType:  round.GameType,
			BetAmount: round.BetAmount,
			Result:    round.Result,
			Winnings:  round.Winnings,
			Timestamp: round.Timestamp,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"games": out})
}

// AdjustCoinsRequest is the admin balance correction body.
type AdjustCoinsRequest struct {
	Amount int64  `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

// AdjustCoins handles POST /api/players/{id}/coins.
func (h *EconomyHandler) AdjustCoins(w http.ResponseWriter, r *http.Request) {
	var req AdjustCoinsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	claims := auth.SessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	player, err := h.economy.AdjustCoins(r.Context(), chi.URLParam(r, "id"), req.Amount,
		req.Reason, claims.AccountID, pkghttp.ClientAddr(r, h.proxyConfig))
	if err != nil {
		writeAdminError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"player":  playerResponse(player),
	})
}

// Stats handles GET /api/stats with an optional game query parameter.
func (h *EconomyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.economy.Stats(r.Context(), r.URL.Query().Get("game"))
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to load stats")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"global": stats.Global,
		"games":  stats.Games,
	})
}

func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}
