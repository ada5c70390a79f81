package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/dto"
)

// ErrDuplicateResult indica tentativa de declarar um segundo resultado para
// o mesmo draw. O índice único em declared_results(draw_id) é a invariante.
var ErrDuplicateResult = errors.New("result already declared for draw")

type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

// DeclareResult grava o resultado de um draw. Exatamente um por draw:
// violação do índice único vira ErrDuplicateResult.
func (r *Postgres) DeclareResult(ctx context.Context, drawID, market, winningNumber, method, declaredBy string) (time.Time, error) {
	declaredAt := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO declared_results (draw_id, market, winning_number, method, declared_by, declared_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		drawID, market, winningNumber, method, declaredBy, declaredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return time.Time{}, ErrDuplicateResult
		}
		return time.Time{}, err
	}

	// Draw marcado como fechado para novas apostas após a declaração.
	_, _ = r.DB.ExecContext(ctx, `UPDATE draws SET status='DECLARED' WHERE id=$1`, drawID)
	return declaredAt, nil
}

// GetResult retorna o resultado declarado de um draw.
func (r *Postgres) GetResult(ctx context.Context, drawID string) (dto.Result, error) {
	var out dto.Result
	var declaredAt time.Time
	err := r.DB.QueryRowContext(ctx, `
		SELECT draw_id, market, winning_number, method, declared_by, declared_at
		FROM declared_results WHERE draw_id=$1`, drawID).
		Scan(&out.DrawID, &out.Market, &out.WinningNumber, &out.Method, &out.DeclaredBy, &declaredAt)
	if err != nil {
		return dto.Result{}, err
	}
	out.DeclaredAt = declaredAt.Format(time.RFC3339)
	return out, nil
}

// ListDraws retorna os draws de um mercado ordenados por data.
func (r *Postgres) ListDraws(ctx context.Context, market string) ([]dto.Draw, error) {
	const q = `
		SELECT id, market, to_char(draw_date, 'YYYY-MM-DD'), session,
		       to_char(close_time, 'YYYY-MM-DD"T"HH24:MI:SSZ'), status
		FROM draws
		WHERE ($1 = '' OR market = $1)
		ORDER BY draw_date DESC, close_time DESC
		LIMIT 200;
	`
	rows, err := r.DB.QueryContext(ctx, q, market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Draw
	for rows.Next() {
		var d dto.Draw
		if err := rows.Scan(&d.DrawID, &d.Market, &d.DrawDate, &d.Session, &d.CloseTime, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListResults retorna os últimos resultados declarados.
func (r *Postgres) ListResults(ctx context.Context, market string) ([]dto.Result, error) {
	const q = `
		SELECT draw_id, market, winning_number, method, declared_by,
		       to_char(declared_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM declared_results
		WHERE ($1 = '' OR market = $1)
		ORDER BY declared_at DESC
		LIMIT 200;
	`
	rows, err := r.DB.QueryContext(ctx, q, market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Result
	for rows.Next() {
		var res dto.Result
		if err := rows.Scan(&res.DrawID, &res.Market, &res.WinningNumber, &res.Method, &res.DeclaredBy, &res.DeclaredAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
