package dto

type DebitResponse struct {
	WalletID   string `json:"walletId"`
	TotalPaise int64  `json:"total_paise"`
}
