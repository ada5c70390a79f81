package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreatePending insere uma nova aposta com status PENDING
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	sel, err := json.Marshal(b.Selection)
	if err != nil {
		return "", err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,draw_id,market,bet_type,stake_paise,selection,status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'PENDING')`,
		id, b.UserID, b.DrawID, b.Market, b.Type, b.StakePaise, sel,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// MarkRejected anula uma aposta cujo débito de stake falhou. Apostas
// REJECTED ficam fora da liquidação (que varre apenas PENDING).
func (p *Postgres) MarkRejected(ctx context.Context, betID string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status='REJECTED', updated_at=NOW() WHERE id=$1 AND status='PENDING'`, betID)
	return err
}

// GetStatus retorna o status atual e o payout de uma aposta pelo betID
func (p *Postgres) GetStatus(ctx context.Context, betID string) (status settlement.BetStatus, payoutPaise int64, payoutPending bool, err error) {
	err = p.db.QueryRowContext(ctx, `
		SELECT status, payout_paise, payout_pending FROM bets WHERE id=$1`, betID).
		Scan(&status, &payoutPaise, &payoutPending)
	return status, payoutPaise, payoutPending, err
}
