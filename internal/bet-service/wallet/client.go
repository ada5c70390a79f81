package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/wallet/dto"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Debit debita o stake de uma aposta na wallet-service.
// O external_ref (betID) torna a operação idempotente do lado da carteira.
func (c *Client) Debit(ctx context.Context, userID string, paise int64, externalRef string) error {
	body, _ := json.Marshal(walletdto.DebitRequest{UserID: userID, AmountPaise: paise, ExternalRef: externalRef})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/debit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusConflict {
		return ErrInsufficientFunds
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet debit http %d", res.StatusCode)
	}
	var out walletdto.DebitResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return err
	}
	return nil
}
