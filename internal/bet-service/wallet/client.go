package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	walletdto "github.com/radieske/bracket-bet-platform/internal/bet-service/wallet/dto"
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

// EnsureAccount busca (ou cria com saldo inicial) a conta do usuário no
// wallet-service. Usado como guard antes dos handlers de sessão.
func (c *Client) EnsureAccount(ctx context.Context, userID, username string) (walletdto.AccountResponse, error) {
	q := url.Values{}
	q.Set("userId", userID)
	if username != "" {
		q.Set("username", username)
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/wallet?"+q.Encode(), nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return walletdto.AccountResponse{}, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return walletdto.AccountResponse{}, fmt.Errorf("wallet account http %d", res.StatusCode)
	}
	var out walletdto.AccountResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return walletdto.AccountResponse{}, err
	}
	return out, nil
}
