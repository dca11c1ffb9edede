package binance

import (
	"context"
	"strings"
)

type AccountAsset struct {
	Asset            string `json:"asset"`
	WalletBalance    string `json:"walletBalance"`
	UnrealizedProfit string `json:"unrealizedProfit"`
	AvailableBalance string `json:"availableBalance"`
}

type AccountInfo struct {
	TotalWalletBalance    string         `json:"totalWalletBalance"`
	TotalUnrealizedProfit string         `json:"totalUnrealizedProfit"`
	AvailableBalance      string         `json:"availableBalance"`
	Assets                []AccountAsset `json:"assets"`
}

// Account fetches the futures account balances (v2 endpoint).
func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	body, err := c.get(ctx, "/fapi/v2/account", nil, true)
	if err != nil {
		return nil, err
	}
	var info AccountInfo
	if err := decodeInto(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type Position struct {
	Symbol           string `json:"symbol"`
	PositionAmt      string `json:"positionAmt"`
	EntryPrice       string `json:"entryPrice"`
	MarkPrice        string `json:"markPrice"`
	UnrealizedProfit string `json:"unRealizedProfit"`
	LiquidationPrice string `json:"liquidationPrice"`
	Leverage         string `json:"leverage"`
	PositionSide     string `json:"positionSide"`
}

// PositionRisk fetches current positions (v2 endpoint), for one symbol
// when given or all symbols when empty.
func (c *Client) PositionRisk(ctx context.Context, symbol string) ([]Position, error) {
	params := NewParams()
	if symbol != "" {
		params.Set("symbol", strings.ToUpper(symbol))
	}
	body, err := c.get(ctx, "/fapi/v2/positionRisk", params, true)
	if err != nil {
		return nil, err
	}
	var positions []Position
	if err := decodeInto(body, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}
