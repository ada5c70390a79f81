package topics

const (
	// Bets
	BetPlaced = "bet_placed"

	// Results & settlement
	ResultDeclared = "result_declared"
	DrawSettled    = "draw_settled"

	// Anomalies raised during settlement (malformed bets, unpaid credits)
	SettlementAnomalies = "settlement_anomalies"

	// DLQs
	ResultDeclaredDLQ = "result_declared_dlq"
)
