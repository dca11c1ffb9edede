package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dcheng/futures-trading/internal/core/orders"
)

// Store persists every terminal order result in a local SQLite
// database, giving the CLI an offline history of placements, rejections
// and exchange failures.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS order_journal (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		ts            TEXT    NOT NULL,
		success       INTEGER NOT NULL,
		order_id      INTEGER,
		status        TEXT,
		symbol        TEXT,
		side          TEXT,
		order_type    TEXT,
		quantity      REAL,
		executed_qty  REAL,
		price         REAL,
		avg_price     REAL,
		error_message TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ orders.Journal = (*Store)(nil)

// Record appends one terminal order result.
func (s *Store) Record(ctx context.Context, res orders.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_journal
			(ts, success, order_id, status, symbol, side, order_type,
			 quantity, executed_qty, price, avg_price, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		boolToInt(res.Success),
		res.OrderID,
		res.Status,
		res.Symbol,
		res.Side,
		res.OrderType,
		res.Quantity,
		res.ExecutedQty,
		nullableFloat(res.Price),
		nullableFloat(res.AvgPrice),
		res.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert journal row: %w", err)
	}
	return nil
}

// Entry is one journal row as read back.
type Entry struct {
	Ts           time.Time
	Success      bool
	OrderID      int64
	Status       string
	Symbol       string
	Side         string
	OrderType    string
	Quantity     float64
	ExecutedQty  float64
	ErrorMessage string
}

// Recent returns the newest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, success, order_id, status, symbol, side, order_type,
		        quantity, executed_qty, error_message
		   FROM order_journal ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		var success int
		var orderID sql.NullInt64
		var status, symbol, side, orderType, errMsg sql.NullString
		if err := rows.Scan(&ts, &success, &orderID, &status, &symbol, &side, &orderType,
			&e.Quantity, &e.ExecutedQty, &errMsg); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Ts, _ = time.Parse(time.RFC3339Nano, ts)
		e.Success = success != 0
		e.OrderID = orderID.Int64
		e.Status = status.String
		e.Symbol = symbol.String
		e.Side = side.String
		e.OrderType = orderType.String
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
