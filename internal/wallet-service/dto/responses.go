package dto

type WalletResponse struct {
	UserID             string `json:"userId"`
	WalletID           string `json:"walletId"`
	DepositPaise       int64  `json:"deposit_paise"`
	WinningPaise       int64  `json:"winning_paise"`
	BonusPaise         int64  `json:"bonus_paise"`
	TotalPaise         int64  `json:"total_paise"`
	TotalWinningsPaise int64  `json:"total_winnings_paise"`
}
