package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dcheng/futures-trading/internal/adapters/binance"
	"github.com/dcheng/futures-trading/internal/config"
	"github.com/dcheng/futures-trading/internal/core/journal"
	"github.com/dcheng/futures-trading/internal/core/orders"
	"github.com/dcheng/futures-trading/internal/core/validate"
	"github.com/dcheng/futures-trading/internal/telemetry"
)

func main() {
	cfg := config.Load()
	log := telemetry.NewLogger(telemetry.ParseLogLevel(cfg.LogLevel))

	if err := run(cfg, log); err != nil {
		if !errors.Is(err, errFailed) {
			log.Error("fatal", "error", err)
		}
		os.Exit(1)
	}
}

// errFailed marks a result already reported to the user; run's defers
// (client close, journal close) still execute before exit.
var errFailed = errors.New("command failed")

func usage() {
	fmt.Fprintln(os.Stderr, `usage: futures-trader <command> [flags]

commands:
  place      place an order (MARKET, LIMIT, or conditional types)
  cancel     cancel an order by id
  status     show a single order by id
  price      show the current price for a symbol
  open       list open orders
  history    list past orders for a symbol
  positions  list current positions
  account    show account balances
  info       show exchange info for a symbol
  journal    show the local order journal`)
}

func run(cfg *config.Config, log *slog.Logger) error {
	if len(os.Args) < 2 {
		usage()
		return fmt.Errorf("missing command")
	}
	command := os.Args[1]
	args := os.Args[2:]

	limits, err := config.LoadTradingLimits(cfg.TradingLimitsPath)
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics()
	client := binance.NewClient(binance.ClientConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		RecvWindow: cfg.RecvWindow,
		Timeout:    cfg.RequestTimeout,
	}, log, metrics)
	defer client.Close()

	var jnl orders.Journal
	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		jnl = store

		if command == "journal" {
			return runJournal(store, args)
		}
	} else if command == "journal" {
		return fmt.Errorf("journal disabled: set ORDER_JOURNAL_PATH")
	}

	engine := validate.NewEngine(limits)
	// One cache per process, so validation and display of the same
	// symbol share a single ticker fetch.
	prices := binance.NewPriceCache(client, 5*time.Second)
	mgr := orders.NewManager(client, prices, engine, jnl, log, metrics)
	ctx := context.Background()

	switch command {
	case "place":
		return runPlace(ctx, cfg, mgr, args)
	case "cancel":
		return runCancel(ctx, cfg, mgr, args)
	case "status":
		return runStatus(ctx, cfg, client, args)
	case "price":
		return runPrice(ctx, prices, args)
	case "open":
		return runOpen(ctx, cfg, mgr, args)
	case "history":
		return runHistory(ctx, cfg, mgr, args)
	case "positions":
		return runPositions(ctx, cfg, mgr, args)
	case "account":
		return runAccount(ctx, cfg, client)
	case "info":
		return runInfo(ctx, client, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func requireCredentials(cfg *config.Config) error {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("API credentials not found. Set BINANCE_API_KEY and BINANCE_SECRET_KEY in .env")
	}
	return nil
}

func runPlace(ctx context.Context, cfg *config.Config, mgr *orders.Manager, args []string) error {
	fs := flag.NewFlagSet("place", flag.ExitOnError)
	var req orders.PlaceRequest
	fs.StringVar(&req.Symbol, "symbol", "", "trading pair, e.g. BTCUSDT")
	fs.StringVar(&req.Side, "side", "", "BUY or SELL")
	fs.StringVar(&req.OrderType, "type", "MARKET", "order type")
	fs.StringVar(&req.Quantity, "quantity", "", "order quantity")
	fs.StringVar(&req.Price, "price", "", "limit price (LIMIT/STOP/TAKE_PROFIT)")
	fs.StringVar(&req.TriggerPrice, "trigger", "", "trigger price (conditional types)")
	fs.StringVar(&req.CallbackRate, "callback", "", "callback rate pct (TRAILING_STOP_MARKET)")
	fs.StringVar(&req.ActivatePrice, "activate", "", "activation price (TRAILING_STOP_MARKET)")
	fs.StringVar(&req.WorkingType, "working", "", "CONTRACT_PRICE or MARK_PRICE")
	fs.StringVar(&req.TimeInForce, "tif", "", "GTC, IOC, or FOK")
	fs.BoolVar(&req.PriceProtect, "protect", false, "enable price protection")
	fs.Parse(args)

	if err := requireCredentials(cfg); err != nil {
		return err
	}

	res := mgr.PlaceOrder(ctx, req)
	printResult(res)
	if !res.Success {
		return errFailed
	}
	return nil
}

func runCancel(ctx context.Context, cfg *config.Config, mgr *orders.Manager, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair")
	id := fs.Int64("id", 0, "order id")
	fs.Parse(args)

	if err := requireCredentials(cfg); err != nil {
		return err
	}
	if *symbol == "" || *id == 0 {
		return fmt.Errorf("cancel requires -symbol and -id")
	}

	res := mgr.CancelOrder(ctx, *symbol, *id)
	printResult(res)
	if !res.Success {
		return errFailed
	}
	return nil
}

func runStatus(ctx context.Context, cfg *config.Config, client *binance.Client, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair")
	id := fs.Int64("id", 0, "order id")
	fs.Parse(args)

	if err := requireCredentials(cfg); err != nil {
		return err
	}
	if *symbol == "" || *id == 0 {
		return fmt.Errorf("status requires -symbol and -id")
	}

	o, err := client.QueryOrder(ctx, *symbol, *id)
	if err != nil {
		return err
	}
	fmt.Printf("%-12d %-10s %-5s %-20s qty=%s filled=%s price=%s status=%s\n",
		o.OrderID, o.Symbol, o.Side, o.Type, o.OrigQty, o.ExecutedQty, o.Price, o.Status)
	return nil
}

func runPrice(ctx context.Context, prices *binance.PriceCache, args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair")
	fs.Parse(args)

	if *symbol == "" {
		return fmt.Errorf("price requires -symbol")
	}

	price, err := prices.Get(ctx, *symbol)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %.8g\n", *symbol, price)
	return nil
}

func runOpen(ctx context.Context, cfg *config.Config, mgr *orders.Manager, args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair (optional)")
	fs.Parse(args)

	if err := requireCredentials(cfg); err != nil {
		return err
	}

	list := mgr.OpenOrders(ctx, *symbol)
	if len(list) == 0 {
		fmt.Println("no open orders")
		return nil
	}
	for _, o := range list {
		fmt.Printf("%-12d %-10s %-5s %-20s qty=%s price=%s status=%s\n",
			o.OrderID, o.Symbol, o.Side, o.Type, o.OrigQty, o.Price, o.Status)
	}
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, mgr *orders.Manager, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair")
	limit := fs.Int("limit", 50, "max orders")
	fs.Parse(args)

	if err := requireCredentials(cfg); err != nil {
		return err
	}
	if *symbol == "" {
		return fmt.Errorf("history requires -symbol")
	}

	list := mgr.OrderHistory(ctx, *symbol, *limit)
	if len(list) == 0 {
		fmt.Println("no orders")
		return nil
	}
	for _, o := range list {
		fmt.Printf("%-12d %-10s %-5s %-20s qty=%s filled=%s status=%s\n",
			o.OrderID, o.Symbol, o.Side, o.Type, o.OrigQty, o.ExecutedQty, o.Status)
	}
	return nil
}

func runPositions(ctx context.Context, cfg *config.Config, mgr *orders.Manager, args []string) error {
	fs := flag.NewFlagSet("positions", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair (optional)")
	fs.Parse(args)

	if err := requireCredentials(cfg); err != nil {
		return err
	}

	list := mgr.Positions(ctx, *symbol)
	shown := 0
	for _, p := range list {
		if p.PositionAmt == "0" || p.PositionAmt == "" {
			continue
		}
		fmt.Printf("%-10s amt=%s entry=%s mark=%s pnl=%s liq=%s lev=%sx\n",
			p.Symbol, p.PositionAmt, p.EntryPrice, p.MarkPrice,
			p.UnrealizedProfit, p.LiquidationPrice, p.Leverage)
		shown++
	}
	if shown == 0 {
		fmt.Println("no open positions")
	}
	return nil
}

func runAccount(ctx context.Context, cfg *config.Config, client *binance.Client) error {
	if err := requireCredentials(cfg); err != nil {
		return err
	}

	info, err := client.Account(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("wallet balance:    %s\n", info.TotalWalletBalance)
	fmt.Printf("unrealized pnl:    %s\n", info.TotalUnrealizedProfit)
	fmt.Printf("available balance: %s\n", info.AvailableBalance)
	for _, a := range info.Assets {
		if a.WalletBalance == "0" || a.WalletBalance == "" {
			continue
		}
		fmt.Printf("  %-6s balance=%s available=%s\n", a.Asset, a.WalletBalance, a.AvailableBalance)
	}
	return nil
}

func runInfo(ctx context.Context, client *binance.Client, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	symbol := fs.String("symbol", "", "trading pair (optional filter)")
	fs.Parse(args)

	info, err := client.GetExchangeInfo(ctx)
	if err != nil {
		return err
	}
	for _, s := range info.Symbols {
		if *symbol != "" && s.Symbol != *symbol {
			continue
		}
		fmt.Printf("%-12s status=%s base=%s quote=%s pricePrec=%d qtyPrec=%d\n",
			s.Symbol, s.Status, s.BaseAsset, s.QuoteAsset, s.PricePrecision, s.QuantityPrecision)
	}
	return nil
}

func runJournal(store *journal.Store, args []string) error {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	limit := fs.Int("limit", 20, "max entries")
	fs.Parse(args)

	entries, err := store.Recent(context.Background(), *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("journal is empty")
		return nil
	}
	for _, e := range entries {
		outcome := "OK"
		if !e.Success {
			outcome = "FAIL"
		}
		fmt.Printf("%s %-4s %-10s %-5s %-20s qty=%g id=%d %s\n",
			e.Ts.Format(time.RFC3339), outcome, e.Symbol, e.Side, e.OrderType,
			e.Quantity, e.OrderID, e.ErrorMessage)
	}
	return nil
}

func printResult(res orders.Result) {
	if !res.Success {
		fmt.Printf("order failed: %s\n", res.ErrorMessage)
		return
	}
	fmt.Printf("order accepted\n")
	fmt.Printf("  id:       %d\n", res.OrderID)
	fmt.Printf("  status:   %s\n", res.Status)
	fmt.Printf("  symbol:   %s\n", res.Symbol)
	fmt.Printf("  side:     %s\n", res.Side)
	fmt.Printf("  type:     %s\n", res.OrderType)
	fmt.Printf("  quantity: %g\n", res.Quantity)
	fmt.Printf("  filled:   %g\n", res.ExecutedQty)
	if res.Price != nil {
		fmt.Printf("  price:    %g\n", *res.Price)
	}
	if res.AvgPrice != nil {
		fmt.Printf("  avg:      %g\n", *res.AvgPrice)
	}
}
