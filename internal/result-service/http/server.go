package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/cache"
	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/dto"
	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/repo"
	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/ws"
	"github.com/Anilsharma012/meraMatka-sub000/pkg/contracts/events"
)

// Publisher publica eventos result_declared para o settlement-worker.
type Publisher interface {
	PublishResultDeclared(context.Context, events.ResultDeclared) error
}

// API expõe a declaração administrativa de resultados e o read API de
// draws/resultados. Utiliza repositório Postgres, cache Redis e broadcast
// via Pub/Sub para o hub WebSocket.
type API struct {
	Log   *zap.Logger
	Repo  *repo.Postgres
	Cache *cache.Cache
	Rdb   *redis.Client
	Publ  Publisher
	Hub   *ws.Hub
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/results", a.declareResult)          // Declara resultado (admin)
	r.Get("/v1/results", a.listResults)             // Lista resultados declarados
	r.Get("/v1/draws", a.listDraws)                 // Lista draws
	r.Get("/v1/draws/{id}/result", a.getDrawResult) // Resultado de um draw
	if a.Hub != nil {
		r.Get("/v1/ws", a.Hub.HandleWS) // Resultados ao vivo
	}
	return r
}

// declareResult grava e propaga o resultado de um draw: Postgres (fonte da
// verdade), Kafka (liquidação), cache Redis e Pub/Sub (broadcast ao vivo).
func (a *API) declareResult(w http.ResponseWriter, r *http.Request) {
	var req dto.DeclareResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	declaredAt, err := a.Repo.DeclareResult(r.Context(), req.DrawID, req.Market, req.WinningNumber, "manual", req.DeclaredBy)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateResult) {
			// Resultado é imutável: correção exige ação administrativa à parte.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "result already declared"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ev := events.ResultDeclared{
		DrawID:        req.DrawID,
		Market:        req.Market,
		WinningNumber: req.WinningNumber,
		Method:        "manual",
		DeclaredBy:    req.DeclaredBy,
		DeclaredAt:    declaredAt,
	}
	if err := a.Publ.PublishResultDeclared(r.Context(), ev); err != nil {
		// O resultado está persistido; a liquidação pode ser disparada de novo.
		a.Log.Error("publish result_declared", zap.String("draw_id", req.DrawID), zap.Error(err))
	}

	res := dto.Result{
		DrawID:        req.DrawID,
		Market:        req.Market,
		WinningNumber: req.WinningNumber,
		Method:        "manual",
		DeclaredBy:    req.DeclaredBy,
		DeclaredAt:    declaredAt.Format(time.RFC3339),
	}
	_ = a.Cache.SetResult(r.Context(), req.DrawID, res, 24*time.Hour)
	a.broadcast(r.Context(), req.DrawID, res)

	writeJSON(w, http.StatusCreated, dto.DeclareResultResponse{
		DrawID:        req.DrawID,
		WinningNumber: req.WinningNumber,
		Method:        "manual",
		DeclaredAt:    res.DeclaredAt,
	})
}

// broadcast publica o resultado no canal Pub/Sub consumido pelo hub WS.
func (a *API) broadcast(ctx context.Context, drawID string, payload any) {
	if a.Rdb == nil {
		return
	}
	b, _ := json.Marshal(ws.ResultUpdate{DrawID: drawID, Payload: payload})
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := a.Rdb.Publish(ctx, ws.PubSubChannel, b).Err(); err != nil {
		a.Log.Warn("ws broadcast publish failed", zap.Error(err))
	}
}

// listDraws retorna os draws, opcionalmente filtrados por mercado
func (a *API) listDraws(w http.ResponseWriter, r *http.Request) {
	draws, err := a.Repo.ListDraws(r.Context(), r.URL.Query().Get("market"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, draws)
}

// listResults retorna os últimos resultados declarados
func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.Repo.ListResults(r.Context(), r.URL.Query().Get("market"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// getDrawResult retorna o resultado de um draw, preferencialmente do cache
func (a *API) getDrawResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache dto.Result
	if ok, _ := a.Cache.GetResult(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	res, err := a.Repo.GetResult(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetResult(r.Context(), id, res, 24*time.Hour)
	writeJSON(w, http.StatusOK, res)
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
