package events

import "encoding/json"

type BetPlaced struct {
	BetID      string          `json:"bet_id"`
	UserID     string          `json:"user_id"`
	DrawID     string          `json:"draw_id"`
	Market     string          `json:"market"`
	BetType    string          `json:"bet_type"` // "jodi" | "haruf" | "crossing"
	StakePaise int64           `json:"stake_paise"`
	Selection  json.RawMessage `json:"selection"` // normalized selection payload
	DebitRef   string          `json:"debit_ref"` // external_ref used on the wallet debit (betID)
	TsUnixMs   int64           `json:"ts_unix_ms"`
}
