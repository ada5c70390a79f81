package autoresult

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// DueDraw é um draw cujo horário de fechamento passou sem resultado declarado.
type DueDraw struct {
	DrawID string
	Market string
}

// Repo encapsula as consultas do job de declaração automática.
type Repo struct{ DB *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{DB: db} }

// ErrAlreadyDeclared indica corrida com uma declaração manual: o resultado
// manual vence e o job apenas pula o draw.
var ErrAlreadyDeclared = errors.New("result already declared")

// ListDue retorna draws abertos com close_time vencido e sem resultado.
func (r *Repo) ListDue(ctx context.Context, now time.Time) ([]DueDraw, error) {
	const q = `
		SELECT d.id, d.market
		FROM draws d
		LEFT JOIN declared_results dr ON dr.draw_id = d.id
		WHERE d.status = 'OPEN' AND d.close_time <= $1 AND dr.draw_id IS NULL
		ORDER BY d.close_time
		LIMIT 50;
	`
	rows, err := r.DB.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueDraw
	for rows.Next() {
		var d DueDraw
		if err := rows.Scan(&d.DrawID, &d.Market); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Declare grava o resultado automático de um draw.
func (r *Repo) Declare(ctx context.Context, drawID, market, winningNumber string, declaredAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO declared_results (draw_id, market, winning_number, method, declared_by, declared_at)
		VALUES ($1,$2,$3,'automatic','auto-result-worker',$4)`,
		drawID, market, winningNumber, declaredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrAlreadyDeclared
		}
		return err
	}
	_, _ = r.DB.ExecContext(ctx, `UPDATE draws SET status='DECLARED' WHERE id=$1`, drawID)
	return nil
}
