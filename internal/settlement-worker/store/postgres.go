package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
)

// Postgres implementa settlement.Store: leitura das apostas pendentes,
// gravação dos estados terminais e marcador de liquidação por draw.
type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

// ListPending retorna as apostas PENDING do draw com a seleção desserializada.
// Uma seleção que não desserializa não é descartada aqui: o registro segue
// para o Processor com a seleção zerada e vira LOST + anomalia lá.
func (s *Postgres) ListPending(ctx context.Context, drawID string) ([]settlement.Bet, error) {
	const q = `
		SELECT id, user_id, draw_id, market, bet_type, stake_paise, selection, created_at
		FROM bets
		WHERE draw_id = $1 AND status = 'PENDING'
		ORDER BY created_at;
	`
	rows, err := s.DB.QueryContext(ctx, q, drawID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Bet
	for rows.Next() {
		var b settlement.Bet
		var selRaw []byte
		if err := rows.Scan(&b.ID, &b.UserID, &b.DrawID, &b.Market, &b.Type, &b.StakePaise, &selRaw, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Status = settlement.StatusPending
		_ = json.Unmarshal(selRaw, &b.Selection)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Finalize grava o estado terminal de uma aposta. O filtro status='PENDING'
// impede qualquer transição a partir de estado terminal.
func (s *Postgres) Finalize(ctx context.Context, res settlement.SettlementResult) error {
	r, err := s.DB.ExecContext(ctx, `
		UPDATE bets
		SET status=$1, payout_paise=$2, payout_pending=$3, settled_at=$4, updated_at=NOW()
		WHERE id=$5 AND status='PENDING'`,
		res.Outcome, res.PayoutPaise, res.PayoutPending, res.AppliedAt, res.BetID,
	)
	if err != nil {
		return err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		// Já finalizada por uma execução anterior: idempotente, não é erro.
		return nil
	}
	return nil
}

// IsSettled informa se o draw já possui marcador de liquidação.
func (s *Postgres) IsSettled(ctx context.Context, drawID string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM draw_settlements WHERE draw_id=$1`, drawID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSettled grava o marcador de liquidação. ON CONFLICT DO NOTHING: duas
// execuções concorrentes não conseguem gravar dois marcadores.
func (s *Postgres) MarkSettled(ctx context.Context, sum settlement.Summary) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO draw_settlements (draw_id, winning_number, bets_total, bets_won, total_payout_paise, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (draw_id) DO NOTHING`,
		sum.DrawID, sum.WinningNumber, sum.BetsTotal, sum.BetsWon, sum.TotalPayoutPaise, sum.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement marker: %w", err)
	}

	_, _ = s.DB.ExecContext(ctx, `UPDATE draws SET status='SETTLED' WHERE id=$1`, sum.DrawID)
	return nil
}
