package bybit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/minhtran24/meanrev-bot/internal/exchange"
)

// PlaceOrder submits an order and returns the venue order id.
//
// Spot market buys are quoted in quote currency, everything else in
// base currency, matching the sizing convention of the gateway.
func (c *Client) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	symbol := req.Symbol
	if symbol == "" {
		symbol = c.symbol
	}

	params := map[string]interface{}{
		"category":  c.category,
		"symbol":    symbol,
		"side":      string(req.Side),
		"orderType": string(req.Kind),
	}
	if req.ClientOrderID != "" {
		params["orderLinkId"] = req.ClientOrderID
	}

	switch req.Kind {
	case exchange.KindMarket:
		if req.Side == exchange.SideBuy {
			if req.QuoteSize <= 0 {
				return "", fmt.Errorf("market buy requires a positive quote size")
			}
			params["qty"] = formatQty(req.QuoteSize)
			if c.category == "spot" {
				params["marketUnit"] = "quoteCoin"
			}
		} else {
			if req.BaseSize <= 0 {
				return "", fmt.Errorf("market sell requires a positive base size")
			}
			params["qty"] = formatQty(req.BaseSize)
			if c.category == "spot" {
				params["marketUnit"] = "baseCoin"
			}
		}
	case exchange.KindLimit:
		if req.BaseSize <= 0 {
			return "", fmt.Errorf("limit order requires a positive base size")
		}
		if req.LimitPrice <= 0 {
			return "", fmt.Errorf("limit order requires a positive price")
		}
		params["qty"] = formatQty(req.BaseSize)
		params["price"] = formatQty(req.LimitPrice)
		params["timeInForce"] = "GTC"
	default:
		return "", fmt.Errorf("unsupported order kind %q", req.Kind)
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	if err != nil {
		return "", fmt.Errorf("placing order: %w", err)
	}

	var placed struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	}
	if err := decodeResult(result, &placed); err != nil {
		return "", fmt.Errorf("decoding order response: %w", err)
	}
	if placed.OrderID == "" {
		return "", fmt.Errorf("order response missing order id")
	}

	return placed.OrderID, nil
}

// GetOrder looks up the current state of an order. Open orders are
// checked first; filled and cancelled orders only appear in history.
func (c *Client) GetOrder(ctx context.Context, id string) (*exchange.OrderState, error) {
	if state, err := c.findOrder(ctx, id, false); err != nil {
		return nil, err
	} else if state != nil {
		return state, nil
	}

	state, err := c.findOrder(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("order %s not found", id)
	}
	return state, nil
}

// CancelOrder requests cancellation of an open order.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params := map[string]interface{}{
		"category": c.category,
		"symbol":   c.symbol,
		"orderId":  id,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).CancelOrder(ctx)
	if err != nil {
		return fmt.Errorf("cancelling order %s: %w", id, err)
	}

	var cancelled struct {
		OrderID string `json:"orderId"`
	}
	if err := decodeResult(result, &cancelled); err != nil {
		return fmt.Errorf("decoding cancel response: %w", err)
	}
	return nil
}

func (c *Client) findOrder(ctx context.Context, id string, history bool) (*exchange.OrderState, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"category": c.category,
		"symbol":   c.symbol,
		"orderId":  id,
	}

	service := c.httpClient.NewUtaBybitServiceWithParams(params)
	var (
		result interface{}
		err    error
	)
	if history {
		result, err = service.GetOrderHistory(ctx)
	} else {
		result, err = service.GetOpenOrders(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order %s: %w", id, err)
	}

	var list struct {
		List []struct {
			OrderID     string `json:"orderId"`
			OrderStatus string `json:"orderStatus"`
			AvgPrice    string `json:"avgPrice"`
			CumExecQty  string `json:"cumExecQty"`
		} `json:"list"`
	}
	if err := decodeResult(result, &list); err != nil {
		return nil, fmt.Errorf("decoding order list: %w", err)
	}

	for _, order := range list.List {
		if order.OrderID != id {
			continue
		}
		return &exchange.OrderState{
			ID:          order.OrderID,
			Status:      normalizeStatus(order.OrderStatus),
			FilledPrice: parseFloat(order.AvgPrice),
			FilledSize:  parseFloat(order.CumExecQty),
		}, nil
	}
	return nil, nil
}

// normalizeStatus maps Bybit order states onto the gateway's status
// vocabulary.
func normalizeStatus(status string) exchange.Status {
	switch status {
	case "New", "PartiallyFilled", "Untriggered", "Triggered":
		return exchange.StatusPending
	case "Filled":
		return exchange.StatusFilled
	case "Cancelled", "PartiallyFilledCanceled", "Rejected", "Deactivated":
		return exchange.StatusCancelled
	default:
		return exchange.StatusExpired
	}
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
