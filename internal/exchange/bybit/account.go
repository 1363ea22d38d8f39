package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// GetAccountBalance returns the tradable unified-account balance for
// the given coin.
func (c *Client) GetAccountBalance(ctx context.Context, currency string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	params := map[string]interface{}{
		"accountType": "UNIFIED",
		"coin":        currency,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching account wallet: %w", err)
	}

	var wallet struct {
		List []struct {
			TotalAvailableBalance string `json:"totalAvailableBalance"`
			Coin                  []struct {
				Coin             string `json:"coin"`
				WalletBalance    string `json:"walletBalance"`
				AvailableToTrade string `json:"availableToTrade"`
				Equity           string `json:"equity"`
			} `json:"coin"`
		} `json:"list"`
	}
	if err := decodeResult(result, &wallet); err != nil {
		return 0, fmt.Errorf("decoding wallet response: %w", err)
	}
	if len(wallet.List) == 0 {
		return 0, fmt.Errorf("account wallet response contains no accounts")
	}

	account := wallet.List[0]
	for _, coin := range account.Coin {
		if coin.Coin != currency {
			continue
		}
		if v := parseFloat(coin.AvailableToTrade); v > 0 {
			return v, nil
		}
		return parseFloat(coin.WalletBalance), nil
	}

	// Unified accounts without a per-coin entry report the aggregate.
	return parseFloat(account.TotalAvailableBalance), nil
}

// decodeResult checks the API envelope and unmarshals its result into
// a typed struct.
func decodeResult(response interface{}, dst interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return fmt.Errorf("unexpected response type %T", response)
	}
	if serverResp.RetCode != 0 {
		return fmt.Errorf("request rejected: %s (code %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	raw, err := json.Marshal(serverResp.Result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return json.Unmarshal(raw, dst)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
