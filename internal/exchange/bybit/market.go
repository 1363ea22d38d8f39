package bybit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// GetCandles fetches recent klines for a symbol, oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}

	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
		"interval": interval,
		"limit":    limit,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching klines: %w", err)
	}

	var klines struct {
		List [][]string `json:"list"`
	}
	if err := decodeResult(result, &klines); err != nil {
		return nil, fmt.Errorf("decoding kline response: %w", err)
	}

	// Bybit returns klines newest first; reverse into chronological
	// order. Row format: [startTime, open, high, low, close, volume, turnover].
	candles := make([]types.Candle, 0, len(klines.List))
	for i := len(klines.List) - 1; i >= 0; i-- {
		row := klines.List[i]
		if len(row) < 6 {
			continue
		}
		candles = append(candles, types.Candle{
			Timestamp: time.UnixMilli(parseInt(row[0])),
			Open:      parseFloat(row[1]),
			High:      parseFloat(row[2]),
			Low:       parseFloat(row[3]),
			Close:     parseFloat(row[4]),
			Volume:    parseFloat(row[5]),
		})
	}

	return candles, nil
}

// GetLatestPrice returns the last traded price for a symbol.
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching ticker: %w", err)
	}

	var ticker struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}
	if err := decodeResult(result, &ticker); err != nil {
		return 0, fmt.Errorf("decoding ticker response: %w", err)
	}
	if len(ticker.List) == 0 {
		return 0, fmt.Errorf("no ticker data for %s", symbol)
	}

	return parseFloat(ticker.List[0].LastPrice), nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
