package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
)

// Client implementa settlement.Ledger contra a wallet-service.
// A idempotência do crédito fica do lado da carteira, chaveada pelo
// external_ref (betID): repetir a instrução nunca paga duas vezes.
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

type creditRequest struct {
	UserID      string `json:"userId"`
	AmountPaise int64  `json:"amount_paise"`
	Category    string `json:"category"`
	ExternalRef string `json:"external_ref"`
}

func (c *Client) Credit(ctx context.Context, ins settlement.CreditInstruction) error {
	body, _ := json.Marshal(creditRequest{
		UserID:      ins.UserID,
		AmountPaise: ins.AmountPaise,
		Category:    ins.Category,
		ExternalRef: ins.Reference,
	})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/credit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet credit http %d", res.StatusCode)
	}
	return nil
}
