// Package clubapi serves the read-only HTTP projection of clubs: the snapshot
// view, an xlsx ledger export, and a pool-growth chart. All state changes go
// through the event bus; nothing here mutates.
package clubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/config"
	"github.com/osusu-club/osusu-service/internal/authjwt"
)

// TransferLister is the slice of the treasury surface the statement export
// needs. The treasury application service satisfies it.
type TransferLister interface {
	ListTransfers(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error)
}

// Handlers serves the club read endpoints.
type Handlers struct {
	service   clubservice.Service
	transfers TransferLister
	logger    *slog.Logger
}

// NewHandlers creates the read-API handlers.
func NewHandlers(service clubservice.Service, transfers TransferLister, logger *slog.Logger) *Handlers {
	return &Handlers{
		service:   service,
		transfers: transfers,
		logger:    logger,
	}
}

// Register mounts the club read routes with auth, rate limiting, and CORS.
func Register(httpRouter chi.Router, handlers *Handlers, cfg *config.Config, jwtProvider authjwt.Provider) {
	limiter := NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)

	httpRouter.Route("/api/clubs", func(r chi.Router) {
		r.Use(CORSMiddleware(cfg.HTTP.AllowedOrigins))
		r.Use(RateLimitMiddleware(limiter))
		r.Use(BearerAuthMiddleware(jwtProvider))

		r.Get("/{clubID}", handlers.HandleGetClub)
		r.Get("/{clubID}/statement.xlsx", handlers.HandleStatement)
		r.Get("/{clubID}/pool-chart.png", handlers.HandlePoolChart)
	})
}

// HandleGetClub serves the snapshot projection as JSON.
func (h *Handlers) HandleGetClub(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode club snapshot", "error", err)
	}
}

// HandleStatement serves the club ledger as an xlsx workbook: members with
// their contribution and withdrawal records plus the treasury transfers.
func (h *Handlers) HandleStatement(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	transfers, err := h.transfers.ListTransfers(r.Context(), snap.ClubID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list transfers for statement", "error", err)
		http.Error(w, "failed to load transfers", http.StatusInternalServerError)
		return
	}

	workbook, err := BuildStatementWorkbook(snap, transfers)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build statement workbook", "error", err)
		http.Error(w, "failed to build statement", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statementFilename(snap)))
	if _, err := workbook.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write statement workbook", "error", err)
	}
}

// HandlePoolChart serves a PNG time series of pool growth built from the
// contribution ledger.
func (h *Handlers) HandlePoolChart(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	png, err := RenderPoolChart(snap)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render pool chart", "error", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write pool chart", "error", err)
	}
}

// fetchSnapshot resolves the clubID route param and loads the snapshot,
// writing the HTTP error itself when anything fails.
func (h *Handlers) fetchSnapshot(w http.ResponseWriter, r *http.Request) (*clubtypes.ClubSnapshot, bool) {
	clubID, err := uuid.Parse(chi.URLParam(r, "clubID"))
	if err != nil {
		http.Error(w, "invalid club id", http.StatusBadRequest)
		return nil, false
	}

	result, err := h.service.GetClub(r.Context(), clubID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to get club", "club_id", clubID.String(), "error", err)
		http.Error(w, "failed to load club", http.StatusInternalServerError)
		return nil, false
	}
	if result.IsFailure() {
		status := http.StatusInternalServerError
		if result.Failure.Code == clubservice.CodeNotFound {
			status = http.StatusNotFound
		}
		http.Error(w, result.Failure.Reason, status)
		return nil, false
	}

	return result.Success.Club, true
}

func statementFilename(snap *clubtypes.ClubSnapshot) string {
	return fmt.Sprintf("club-%s-statement.xlsx", snap.ClubID)
}
