package settlement

import "time"

// BetType identifica a modalidade da aposta matka.
type BetType string

const (
	BetJodi     BetType = "jodi"
	BetHaruf    BetType = "haruf"
	BetCrossing BetType = "crossing"
)

// BetStatus é o estado de uma aposta. PENDING é o estado inicial;
// WON e LOST são terminais e escritos uma única vez pelo Processor.
type BetStatus string

const (
	StatusPending BetStatus = "PENDING"
	StatusWon     BetStatus = "WON"
	StatusLost    BetStatus = "LOST"
)

// Position indica qual dígito do número vencedor a aposta haruf observa.
type Position string

const (
	PositionFirst Position = "first" // alias legado: "andhar"
	PositionLast  Position = "last"  // alias legado: "bahar"
)

// Combination é uma combinação de dois dígitos dentro de uma aposta crossing,
// com sua própria fração de stake. A lista armazenada é autoritativa na
// liquidação; o engine nunca regenera combinações.
type Combination struct {
	Number     string `json:"number"`
	StakePaise int64  `json:"stake_paise"`
}

// Selection é o payload da aposta, variante por tipo.
// jodi: Number; haruf: Digit+Position; crossing: Combinations.
type Selection struct {
	Number       string        `json:"number,omitempty"`
	Digit        string        `json:"digit,omitempty"`
	Position     Position      `json:"position,omitempty"`
	Combinations []Combination `json:"combinations,omitempty"`
}

// Bet é uma aposta matka imutável após a criação.
// Valores monetários sempre em paise (int64), nunca float.
type Bet struct {
	ID         string
	UserID     string
	DrawID     string
	Market     string
	Type       BetType
	StakePaise int64
	Selection  Selection
	Status     BetStatus
	CreatedAt  time.Time
}

// DeclaredResult é o número vencedor declarado para um draw.
// No máximo um por draw; imutável após criado.
type DeclaredResult struct {
	DrawID        string
	Market        string
	WinningNumber string // exatamente dois dígitos decimais
	Method        string // "manual" | "automatic"
	DeclaredBy    string
	DeclaredAt    time.Time
}

// PayoutConfig guarda os ratios X:1 por tipo de aposta de um mercado.
// Entrada somente-leitura da liquidação.
type PayoutConfig struct {
	Market string
	Ratios map[BetType]int64
}

// Ratio retorna o multiplicador configurado para o tipo.
func (c PayoutConfig) Ratio(t BetType) (int64, bool) {
	r, ok := c.Ratios[t]
	return r, ok
}

// ComboResult é o resultado individual de uma combinação crossing.
type ComboResult struct {
	Number      string `json:"number"`
	StakePaise  int64  `json:"stake_paise"`
	Won         bool   `json:"won"`
	PayoutPaise int64  `json:"payout_paise"`
}

// SettlementResult é o desfecho de uma aposta após a liquidação do draw.
type SettlementResult struct {
	BetID         string
	Outcome       BetStatus // WON | LOST
	PayoutPaise   int64     // 0 se LOST
	PayoutPending bool      // crédito não aplicado após esgotar retries
	Combos        []ComboResult
	AppliedAt     time.Time
}

// CreditInstruction é a instrução de crédito emitida por aposta vencedora.
type CreditInstruction struct {
	UserID      string
	AmountPaise int64
	Category    string // sempre "winning" na liquidação
	Reference   string // betID; chave de idempotência no ledger
}
