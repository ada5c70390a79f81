package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/dto"
	"github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/repo"
	"github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/wallet"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
	"github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// Publisher publica eventos bet_placed.
type Publisher interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
}

type Server struct {
	log  *zap.Logger
	repo *repo.Postgres
	wcli *wallet.Client
	publ Publisher
}

func NewServer(log *zap.Logger, r *repo.Postgres, w *wallet.Client, p Publisher) *Server {
	return &Server{log: log, repo: r, wcli: w, publ: p}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/bets", s.placeBet)
	r.Get("/bets/{id}", s.getBetStatus)
	return r
}

// placeBet valida, normaliza a seleção, debita o stake e persiste a aposta
// PENDING, publicando bet_placed ao final.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 1) Normaliza a seleção (aliases legados tratados aqui, nunca depois)
	sel, err := req.Normalize()
	if err != nil {
		http.Error(w, "invalid selection: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 2) Cria aposta local PENDING
	bet := &repo.Bet{
		UserID:     req.UserID,
		DrawID:     req.DrawID,
		Market:     req.Market,
		Type:       settlement.BetType(req.BetType),
		StakePaise: req.StakePaise,
		Selection:  sel,
	}
	betID, err := s.repo.CreatePending(r.Context(), bet)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 3) Debita o stake via wallet (external_ref = betID)
	if err := s.wcli.Debit(r.Context(), req.UserID, req.StakePaise, betID); err != nil {
		// Sem stake debitado a aposta não pode seguir para liquidação.
		if rerr := s.repo.MarkRejected(r.Context(), betID); rerr != nil {
			s.log.Error("mark bet rejected", zap.String("bet_id", betID), zap.Error(rerr))
		}
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			http.Error(w, "insufficient funds", http.StatusConflict)
			return
		}
		http.Error(w, "wallet debit failed", http.StatusConflict)
		return
	}

	// 4) Publica evento bet_placed
	selJSON, _ := json.Marshal(sel)
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:      betID,
		UserID:     req.UserID,
		DrawID:     req.DrawID,
		Market:     req.Market,
		BetType:    req.BetType,
		StakePaise: req.StakePaise,
		Selection:  selJSON,
		DebitRef:   betID,
	})

	writeJSON(w, dto.PlaceBetResponse{
		BetID:  betID,
		Status: "PENDING",
	})
}

func (s *Server) getBetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	st, payout, pending, err := s.repo.GetStatus(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, dto.BetStatusResponse{
		BetID:         id,
		Status:        string(st),
		PayoutPaise:   payout,
		PayoutPending: pending,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
