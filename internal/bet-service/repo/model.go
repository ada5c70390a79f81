package repo

import (
	"time"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
)

// Bet é o modelo persistido no Postgres.
// A seleção é gravada já normalizada (posições canônicas, sem aliases).
type Bet struct {
	ID            string
	UserID        string
	DrawID        string
	Market        string
	Type          settlement.BetType
	StakePaise    int64
	Selection     settlement.Selection
	Status        settlement.BetStatus
	PayoutPaise   int64
	PayoutPending bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
