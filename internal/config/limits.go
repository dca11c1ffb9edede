package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TradingLimits are the bounds the validation engine enforces before any
// order reaches the exchange. Defaults match the common USDT-M contract
// filters; a yaml file can tighten or relax them per deployment.
type TradingLimits struct {
	MinQuantity float64 `yaml:"min_quantity"`
	MaxQuantity float64 `yaml:"max_quantity"`
	MinPrice    float64 `yaml:"min_price"`
	MaxPrice    float64 `yaml:"max_price"`
	MinNotional float64 `yaml:"min_notional"`

	MinCallbackRate float64 `yaml:"min_callback_rate"`
	MaxCallbackRate float64 `yaml:"max_callback_rate"`
}

func DefaultTradingLimits() TradingLimits {
	return TradingLimits{
		MinQuantity:     0.001,
		MaxQuantity:     10_000_000,
		MinPrice:        0.01,
		MaxPrice:        1_000_000_000,
		MinNotional:     100.0,
		MinCallbackRate: 0.1,
		MaxCallbackRate: 10,
	}
}

// LoadTradingLimits reads limits from a yaml file, filling unset fields
// from the defaults. An empty path returns the defaults unchanged.
func LoadTradingLimits(path string) (TradingLimits, error) {
	limits := DefaultTradingLimits()
	if path == "" {
		return limits, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return TradingLimits{}, fmt.Errorf("read trading limits: %w", err)
	}

	var overlay TradingLimits
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return TradingLimits{}, fmt.Errorf("parse trading limits: %w", err)
	}

	if overlay.MinQuantity > 0 {
		limits.MinQuantity = overlay.MinQuantity
	}
	if overlay.MaxQuantity > 0 {
		limits.MaxQuantity = overlay.MaxQuantity
	}
	if overlay.MinPrice > 0 {
		limits.MinPrice = overlay.MinPrice
	}
	if overlay.MaxPrice > 0 {
		limits.MaxPrice = overlay.MaxPrice
	}
	if overlay.MinNotional > 0 {
		limits.MinNotional = overlay.MinNotional
	}
	if overlay.MinCallbackRate > 0 {
		limits.MinCallbackRate = overlay.MinCallbackRate
	}
	if overlay.MaxCallbackRate > 0 {
		limits.MaxCallbackRate = overlay.MaxCallbackRate
	}

	return limits, nil
}
