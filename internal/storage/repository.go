package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budgetrip/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LineItemFilter narrows ListLineItems. Zero values mean "no filter".
type LineItemFilter struct {
	ToReviewOnly  bool
	PaymentMethod string
	StartTime     int64
	EndTime       int64
}

// CreateLineItem inserts a line item. providerRef is the provider's own
// transaction ID and deduplicates repeated ingestion; when it collides
// the insert is skipped and inserted reports false.
func (r *SQLiteRepository) CreateLineItem(ctx context.Context, li core.LineItem, provider core.Provider, providerRef string) (inserted bool, err error) {
	if err := li.Validate(); err != nil {
		return false, err
	}

	var ref any
	if providerRef != "" {
		ref = providerRef
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO line_items (id, date, payment_method, description, responsible_party, amount_cents, provider, provider_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_ref) WHERE provider_ref IS NOT NULL DO NOTHING`,
		li.ID, li.Date, li.PaymentMethod, li.Description, li.ResponsibleParty, li.Amount.Cents, string(provider), ref)
	if err != nil {
		return false, fmt.Errorf("create line item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Line item saved",
		"id", li.ID,
		"description", li.Description,
		"amount_cents", li.Amount.Cents,
		"provider", provider)
	return true, nil
}

// GetLineItem retrieves a single line item by ID.
func (r *SQLiteRepository) GetLineItem(ctx context.Context, id string) (core.LineItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, payment_method, description, responsible_party, amount_cents
		FROM line_items WHERE id = ?`, id)
	return scanLineItem(row)
}

// ListLineItems returns line items matching the filter, oldest first.
func (r *SQLiteRepository) ListLineItems(ctx context.Context, filter LineItemFilter) ([]core.LineItem, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, date, payment_method, description, responsible_party, amount_cents
		FROM line_items WHERE 1=1`)
	var args []any

	if filter.ToReviewOnly {
		query.WriteString(" AND reviewed = 0")
	}
	if filter.PaymentMethod != "" {
		query.WriteString(" AND payment_method = ?")
		args = append(args, filter.PaymentMethod)
	}
	if filter.StartTime > 0 {
		query.WriteString(" AND date >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		query.WriteString(" AND date < ?")
		args = append(args, filter.EndTime)
	}
	query.WriteString(" ORDER BY date ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var items []core.LineItem
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// DeleteLineItem removes a line item that is not part of an event.
func (r *SQLiteRepository) DeleteLineItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM line_items
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM event_line_items WHERE line_item_id = ?)`, id, id)
	if err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateEvent inserts an event and marks its line items reviewed, all
// in one transaction. Every referenced line item must exist and be
// unreviewed.
func (r *SQLiteRepository) CreateEvent(ctx context.Context, e core.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, name, category, date, amount_cents)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Category, e.Date, e.Amount.Cents); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	for _, liID := range e.LineItemIDs {
		res, err := tx.ExecContext(ctx,
			"UPDATE line_items SET reviewed = 1 WHERE id = ? AND reviewed = 0", liID)
		if err != nil {
			return fmt.Errorf("mark line item reviewed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("line item %s: %w", liID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO event_line_items (event_id, line_item_id) VALUES (?, ?)",
			e.ID, liID); err != nil {
			return fmt.Errorf("link line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}

	slog.InfoContext(ctx, "Event saved",
		"id", e.ID,
		"name", e.Name,
		"category", e.Category,
		"line_items", len(e.LineItemIDs))
	return nil
}

// GetEvent retrieves a single event with its line item IDs.
func (r *SQLiteRepository) GetEvent(ctx context.Context, id string) (core.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, date, amount_cents FROM events WHERE id = ?`, id)

	var e core.Event
	var cents int64
	if err := row.Scan(&e.ID, &e.Name, &e.Category, &e.Date, &cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Event{}, ErrNotFound
		}
		return core.Event{}, fmt.Errorf("get event: %w", err)
	}
	e.Amount = core.Money{Cents: cents}

	rows, err := r.db.QueryContext(ctx, `
		SELECT line_item_id FROM event_line_items WHERE event_id = ? ORDER BY line_item_id`, id)
	if err != nil {
		return core.Event{}, fmt.Errorf("get event line items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var liID string
		if err := rows.Scan(&liID); err != nil {
			return core.Event{}, fmt.Errorf("scan line item id: %w", err)
		}
		e.LineItemIDs = append(e.LineItemIDs, liID)
	}
	return e, rows.Err()
}

// ListEvents returns all events, oldest first.
func (r *SQLiteRepository) ListEvents(ctx context.Context) ([]core.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, date, amount_cents FROM events ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var e core.Event
		var cents int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Date, &cents); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Amount = core.Money{Cents: cents}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEvent removes an event and un-reviews its line items so they
// return to the review working set.
func (r *SQLiteRepository) DeleteEvent(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE line_items SET reviewed = 0
		WHERE id IN (SELECT line_item_id FROM event_line_items WHERE event_id = ?)`, id); err != nil {
		return fmt.Errorf("unreview line items: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListCategories returns category names in alphabetical order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateCategory adds a category; existing names are a no-op.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyCategory
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name) VALUES (?) ON CONFLICT (name) DO NOTHING", name); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListAccounts returns the known connected accounts and their cursors.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.ConnectedAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT provider, last_synced FROM connected_accounts ORDER BY provider")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.ConnectedAccount
	for rows.Next() {
		var a core.ConnectedAccount
		if err := rows.Scan(&a.Provider, &a.LastSynced); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountLastSynced returns the provider's cursor, 0 when never pulled.
func (r *SQLiteRepository) AccountLastSynced(ctx context.Context, provider core.Provider) (int64, error) {
	var ts int64
	err := r.db.QueryRowContext(ctx,
		"SELECT last_synced FROM connected_accounts WHERE provider = ?", string(provider)).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("account last synced: %w", err)
	}
	return ts, nil
}

// MarkAccountSynced advances the provider's cursor.
func (r *SQLiteRepository) MarkAccountSynced(ctx context.Context, provider core.Provider, ts int64) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO connected_accounts (provider, last_synced) VALUES (?, ?)
		ON CONFLICT (provider) DO UPDATE SET last_synced = excluded.last_synced`,
		string(provider), ts); err != nil {
		return fmt.Errorf("mark account synced: %w", err)
	}
	return nil
}

// MonthSummary aggregates reviewed spending for a year+month from events.
func (r *SQLiteRepository) MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	summary := core.MonthSummary{Year: year, Month: month}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC).Unix()

	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM events WHERE date >= ? AND date < ?`, start, end)
	var total int64
	if err := row.Scan(&total); err != nil {
		return summary, fmt.Errorf("month total: %w", err)
	}
	summary.Total = core.Money{Cents: total}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) FROM events
		WHERE date >= ? AND date < ?
		GROUP BY category ORDER BY category`, start, end)
	if err != nil {
		return summary, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var cents int64
		if err := rows.Scan(&name, &cents); err != nil {
			return summary, fmt.Errorf("scan category sum: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, core.CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: cents},
		})
	}
	return summary, rows.Err()
}

// ListUnexportedEvents returns events not yet exported to the sheets
// backend, up to limit, oldest first.
func (r *SQLiteRepository) ListUnexportedEvents(ctx context.Context, limit int) ([]core.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, date, amount_cents FROM events
		WHERE exported = 0 ORDER BY date ASC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported events: %w", err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var e core.Event
		var cents int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Date, &cents); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Amount = core.Money{Cents: cents}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkEventExported flags an event as exported.
func (r *SQLiteRepository) MarkEventExported(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE events SET exported = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark event exported: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLineItem(row rowScanner) (core.LineItem, error) {
	var li core.LineItem
	var cents int64
	if err := row.Scan(&li.ID, &li.Date, &li.PaymentMethod, &li.Description, &li.ResponsibleParty, &cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LineItem{}, ErrNotFound
		}
		return core.LineItem{}, fmt.Errorf("scan line item: %w", err)
	}
	li.Amount = core.Money{Cents: cents}
	return li, nil
}
