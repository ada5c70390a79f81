package payoutcfg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
)

// Source implementa settlement.ConfigSource: ratios por mercado lidos do
// Postgres, com cache Redis de TTL curto para não bater no banco a cada draw.
type Source struct {
	DB  *sql.DB
	Rdb *redis.Client
	TTL time.Duration
}

func New(db *sql.DB, rdb *redis.Client, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Source{DB: db, Rdb: rdb, TTL: ttl}
}

func key(market string) string { return "payoutcfg:" + market }

// PayoutConfig retorna os ratios do mercado, preferencialmente do cache.
func (s *Source) PayoutConfig(ctx context.Context, market string) (settlement.PayoutConfig, error) {
	if s.Rdb != nil {
		if b, err := s.Rdb.Get(ctx, key(market)).Bytes(); err == nil {
			var ratios map[settlement.BetType]int64
			if jerr := json.Unmarshal(b, &ratios); jerr == nil && len(ratios) > 0 {
				return settlement.PayoutConfig{Market: market, Ratios: ratios}, nil
			}
		}
		// cache miss ou corrompido: cai para o banco
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT bet_type, ratio FROM payout_configs WHERE market=$1`, market)
	if err != nil {
		return settlement.PayoutConfig{}, err
	}
	defer rows.Close()

	ratios := make(map[settlement.BetType]int64)
	for rows.Next() {
		var t settlement.BetType
		var ratio int64
		if err := rows.Scan(&t, &ratio); err != nil {
			return settlement.PayoutConfig{}, err
		}
		ratios[t] = ratio
	}
	if err := rows.Err(); err != nil {
		return settlement.PayoutConfig{}, err
	}
	if len(ratios) == 0 {
		return settlement.PayoutConfig{}, fmt.Errorf("no payout config for market %q", market)
	}

	if s.Rdb != nil {
		if b, err := json.Marshal(ratios); err == nil {
			_ = s.Rdb.Set(ctx, key(market), b, s.TTL).Err()
		}
	}
	return settlement.PayoutConfig{Market: market, Ratios: ratios}, nil
}
