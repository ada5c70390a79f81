package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Anilsharma012/meraMatka-sub000/internal/wallet-service/dto"
	"github.com/Anilsharma012/meraMatka-sub000/internal/wallet-service/repo"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (repo.Balance, error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (repo.Balance, error)
	DebitForBet(ctx context.Context, userID string, amount int64, externalRef string) (repo.Balance, error)
	CreditWinning(ctx context.Context, userID string, amount int64, externalRef string) (repo.Balance, error)
}

// Server expõe endpoints HTTP para operações de carteira (wallet)
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o roteador HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/wallet", s.getWallet)        // GET ?userId=...
	r.Post("/wallet/deposit", s.deposit) // depósito
	r.Post("/wallet/debit", s.debit)     // débito de stake de aposta
	r.Post("/wallet/credit", s.credit)   // crédito de pagamento de aposta
	return r
}

// getWallet retorna (ou cria) a carteira e saldos do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	b, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, walletResponse(userID, b))
}

// deposit adiciona saldo de depósito à carteira do usuário
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountPaise <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	b, err := s.repo.Deposit(r.Context(), req.UserID, req.AmountPaise, req.ExternalRef)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "wallet not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, walletResponse(req.UserID, b))
}

// debit debita o stake de uma aposta do saldo do usuário
func (s *Server) debit(w http.ResponseWriter, r *http.Request) {
	var req dto.DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountPaise <= 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	b, err := s.repo.DebitForBet(r.Context(), req.UserID, req.AmountPaise, req.ExternalRef)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "wallet not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrInsufficientFunds):
			http.Error(w, "insufficient funds", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, walletResponse(req.UserID, b))
}

// credit aplica um crédito de pagamento de aposta vencedora (idempotente por external_ref)
func (s *Server) credit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountPaise <= 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Category != "" && req.Category != "winning" {
		http.Error(w, "unsupported category", http.StatusBadRequest)
		return
	}
	b, err := s.repo.CreditWinning(r.Context(), req.UserID, req.AmountPaise, req.ExternalRef)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "wallet not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, walletResponse(req.UserID, b))
}

func walletResponse(userID string, b repo.Balance) dto.WalletResponse {
	return dto.WalletResponse{
		UserID:             userID,
		WalletID:           b.WalletID,
		DepositPaise:       b.DepositPaise,
		WinningPaise:       b.WinningPaise,
		BonusPaise:         b.BonusPaise,
		TotalPaise:         b.TotalPaise(),
		TotalWinningsPaise: b.TotalWinningsPaise,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
