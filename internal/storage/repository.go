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

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"

	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite takes one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// WithClock sets the clock used to stamp inventory and archive times.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// parseStoredDate yields the zero date for empty or malformed values.
func parseStoredDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, core.ErrNotFound)
}

// ---- income ----

const incomeColumns = `id, category, description, amount_cents, date, kind, local_cents, district_cents, ledger_ref`

func scanIncome(sc interface{ Scan(...any) error }) (core.Income, error) {
	var (
		in   core.Income
		date string
		kind int
	)
	if err := sc.Scan(&in.ID, &in.Category, &in.Description, &in.Amount.Cents, &date, &kind,
		&in.Local.Cents, &in.District.Cents, &in.LedgerRef); err != nil {
		return core.Income{}, err
	}
	in.Date = parseStoredDate(date)
	in.Kind = core.IncomeKind(kind)
	return in, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	stored, err := insertIncome(ctx, r.db, in)
	if err != nil {
		return core.Income{}, err
	}
	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", stored.ID,
		"kind", stored.Kind.String(),
		"amount_cents", stored.Amount.Cents,
		"date", stored.Date.String())
	return stored, nil
}

func insertIncome(ctx context.Context, q querier, in core.Income) (core.Income, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO income (category, description, amount_cents, date, kind, local_cents, district_cents, ledger_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Category, in.Description, in.Amount.Cents, in.Date.String(), int(in.Kind),
		in.Local.Cents, in.District.Cents, in.LedgerRef)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	if in.ID, err = res.LastInsertId(); err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM income WHERE id = ?`, id)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, notFound("income", id)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) ListIncome(ctx context.Context, f store.IncomeFilter) ([]core.Income, error) {
	return listIncome(ctx, r.db, f)
}

func listIncome(ctx context.Context, q querier, f store.IncomeFilter) ([]core.Income, error) {
	var (
		where []string
		args  []any
	)
	if !f.Range.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Range.Start.String())
	}
	if !f.Range.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.Range.End.String())
	}
	if f.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, int(*f.Kind))
	}
	query := `SELECT ` + incomeColumns + ` FROM income`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	defer rows.Close()
	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM district_expenses WHERE source_ref = ? AND status = ?`,
			store.IncomeRef(id), core.StatusPending); err != nil {
			return fmt.Errorf("delete pending allocation: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM income WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete income: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("income", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Income deleted from SQLite", "id", id)
	return nil
}

// deleteLinkedIncome removes the income rows created by a ledger record and
// their pending allocations.
func deleteLinkedIncome(ctx context.Context, tx *sql.Tx, ledgerRef string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM district_expenses
		WHERE status = ? AND source_ref IN (SELECT 'income:' || id FROM income WHERE ledger_ref = ?)`,
		core.StatusPending, ledgerRef); err != nil {
		return fmt.Errorf("delete linked allocations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM income WHERE ledger_ref = ?`, ledgerRef); err != nil {
		return fmt.Errorf("delete linked income: %w", err)
	}
	return nil
}

// ---- tithes and offerings ----

const ledgerColumns = `id, member_name, member_id, month, date, week1, week2, week3, week4, week5, total_cents`

func scanLedger(sc interface{ Scan(...any) error }) (core.LedgerRecord, error) {
	var (
		rec   core.LedgerRecord
		date  string
		weeks [core.WeeksPerMonth]sql.NullInt64
	)
	if err := sc.Scan(&rec.ID, &rec.MemberName, &rec.MemberID, &rec.Month, &date,
		&weeks[0], &weeks[1], &weeks[2], &weeks[3], &weeks[4], &rec.Total.Cents); err != nil {
		return core.LedgerRecord{}, err
	}
	rec.Date = parseStoredDate(date)
	for i, w := range weeks {
		if w.Valid {
			rec.Weeks[i] = &core.Money{Cents: w.Int64}
		}
	}
	return rec, nil
}

func weekArgs(rec core.LedgerRecord) []any {
	out := make([]any, core.WeeksPerMonth)
	for i, w := range rec.Weeks {
		if w != nil {
			out[i] = w.Cents
		}
	}
	return out
}

// upsertLedger runs apply against the current row inside one transaction.
// table is one of the two ledger tables and never user input.
func (r *SQLiteRepository) upsertLedger(ctx context.Context, table, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	var out core.LedgerRecord
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+ledgerColumns+` FROM `+table+` WHERE member_id = ? AND month = ?`, memberID, month)
		current, err := scanLedger(row)
		var existing *core.LedgerRecord
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("read %s: %w", table, err)
		default:
			existing = &current
		}

		next, err := apply(existing)
		if err != nil {
			return err
		}
		weeks := weekArgs(next)

		if existing != nil {
			next.ID = existing.ID
			args := append([]any{next.MemberName, next.Date.String()}, weeks...)
			args = append(args, next.Total.Cents, next.ID)
			if _, err := tx.ExecContext(ctx, `
				UPDATE `+table+`
				SET member_name = ?, date = ?, week1 = ?, week2 = ?, week3 = ?, week4 = ?, week5 = ?,
				    total_cents = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?`, args...); err != nil {
				return fmt.Errorf("update %s: %w", table, err)
			}
			out = next
			return nil
		}

		args := append([]any{next.MemberName, memberID, month, next.Date.String()}, weeks...)
		args = append(args, next.Total.Cents)
		res, err := tx.ExecContext(ctx, `
			INSERT INTO `+table+` (member_name, member_id, month, date, week1, week2, week3, week4, week5, total_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		if next.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		next.MemberID, next.Month = memberID, month
		out = next
		return nil
	})
	if err != nil {
		return core.LedgerRecord{}, err
	}
	slog.InfoContext(ctx, "Ledger record saved to SQLite",
		"table", table, "id", out.ID, "member_id", memberID, "month", month, "total_cents", out.Total.Cents)
	return out, nil
}

func listLedger(ctx context.Context, q querier, table string, month int, order string) ([]core.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ` + table
	var args []any
	if month != store.AllMonths {
		query += ` WHERE month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY ` + order
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	var out []core.LedgerRecord
	for rows.Next() {
		rec, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) deleteLedger(ctx context.Context, table string, id int64, ref string) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(strings.TrimSuffix(table, "s"), id)
		}
		return deleteLinkedIncome(ctx, tx, ref)
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Ledger record deleted from SQLite", "table", table, "id", id)
	return nil
}

func (r *SQLiteRepository) UpsertTithe(ctx context.Context, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	return r.upsertLedger(ctx, "tithes", memberID, month, apply)
}

func (r *SQLiteRepository) ListTithes(ctx context.Context, month int) ([]core.LedgerRecord, error) {
	return listLedger(ctx, r.db, "tithes", month, "month DESC, member_name ASC")
}

func (r *SQLiteRepository) DeleteTithe(ctx context.Context, id int64) error {
	return r.deleteLedger(ctx, "tithes", id, store.TitheRef(id))
}

func (r *SQLiteRepository) UpsertOffering(ctx context.Context, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	return r.upsertLedger(ctx, "offerings", memberID, month, apply)
}

func (r *SQLiteRepository) ListOfferings(ctx context.Context, month int) ([]core.LedgerRecord, error) {
	return listLedger(ctx, r.db, "offerings", month, "id ASC")
}

func (r *SQLiteRepository) DeleteOffering(ctx context.Context, id int64) error {
	return r.deleteLedger(ctx, "offerings", id, store.OfferingRef(id))
}

// ---- expenses ----

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Tier == "" {
		e.Tier = core.LocalExpense
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (category, description, amount_cents, date, expense_type)
		VALUES (?, ?, ?, ?, ?)`,
		e.Category, e.Description, e.Amount.Cents, e.Date.String(), string(e.Tier))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"tier", string(e.Tier),
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, tier core.ExpenseTier) ([]core.Expense, error) {
	return listExpenses(ctx, r.db, tier)
}

func listExpenses(ctx context.Context, q querier, tier core.ExpenseTier) ([]core.Expense, error) {
	query := `SELECT id, category, description, amount_cents, date, expense_type FROM expenses`
	var args []any
	if tier != "" {
		query += ` WHERE expense_type = ?`
		args = append(args, string(tier))
	}
	query += ` ORDER BY date DESC, id ASC`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		var (
			e          core.Expense
			date, tier string
		)
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount.Cents, &date, &tier); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = parseStoredDate(date)
		e.Tier = core.ExpenseTier(tier)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("expense", id)
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id)
	return nil
}

// ---- auto district allocations ----

const autoColumns = `id, source, COALESCE(source_ref, ''), description, original_cents, district_cents, date, status`

func scanAuto(sc interface{ Scan(...any) error }) (core.AutoDistrictExpense, error) {
	var (
		a    core.AutoDistrictExpense
		date string
	)
	if err := sc.Scan(&a.ID, &a.Source, &a.SourceRef, &a.Description, &a.OriginalAmount.Cents,
		&a.DistrictAmount.Cents, &date, &a.Status); err != nil {
		return core.AutoDistrictExpense{}, err
	}
	a.Date = parseStoredDate(date)
	return a, nil
}

func (r *SQLiteRepository) RecordAutoDistrict(ctx context.Context, e core.AutoDistrictExpense) (core.AutoDistrictExpense, bool, error) {
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	var created bool
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO district_expenses (source, source_ref, description, original_cents, district_cents, date, status)
			VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?)
			ON CONFLICT(source_ref) DO NOTHING`,
			e.Source, e.SourceRef, e.Description, e.OriginalAmount.Cents, e.DistrictAmount.Cents, e.Date.String(), e.Status)
		if err != nil {
			return fmt.Errorf("record allocation: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			created = true
			e.ID, err = res.LastInsertId()
			return err
		}
		row := tx.QueryRowContext(ctx, `SELECT `+autoColumns+` FROM district_expenses WHERE source_ref = ?`, e.SourceRef)
		if e, err = scanAuto(row); err != nil {
			return fmt.Errorf("read allocation: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.AutoDistrictExpense{}, false, err
	}
	if created {
		slog.InfoContext(ctx, "District allocation saved to SQLite",
			"id", e.ID, "source_ref", e.SourceRef, "district_cents", e.DistrictAmount.Cents)
	}
	return e, created, nil
}

func (r *SQLiteRepository) ListAutoDistrict(ctx context.Context) ([]core.AutoDistrictExpense, error) {
	return listAuto(ctx, r.db)
}

func listAuto(ctx context.Context, q querier) ([]core.AutoDistrictExpense, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+autoColumns+` FROM district_expenses ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()
	var out []core.AutoDistrictExpense
	for rows.Next() {
		a, err := scanAuto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PendingAllocations(ctx context.Context, limit int) ([]core.Income, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+incomeColumns+` FROM income i
		WHERE i.kind IN (?, ?)
		  AND NOT EXISTS (SELECT 1 FROM district_expenses d WHERE d.source_ref = 'income:' || i.id)
		ORDER BY i.id ASC
		LIMIT ?`, int(core.TitheIncome), int(core.OfferingIncome), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending allocations: %w", err)
	}
	defer rows.Close()
	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// ---- inventory ----

func (r *SQLiteRepository) CreateInventoryItem(ctx context.Context, it core.InventoryItem) (core.InventoryItem, error) {
	if err := it.Validate(); err != nil {
		return core.InventoryItem{}, err
	}
	it.DateAdded = core.DateOf(r.now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory (item_name, category, quantity, condition, date_added)
		VALUES (?, ?, ?, ?, ?)`,
		it.ItemName, it.Category, it.Quantity, string(it.Condition), it.DateAdded.String())
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("create inventory item: %w", err)
	}
	if it.ID, err = res.LastInsertId(); err != nil {
		return core.InventoryItem{}, fmt.Errorf("create inventory item: %w", err)
	}
	return it, nil
}

func (r *SQLiteRepository) ListInventory(ctx context.Context) ([]core.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_name, category, quantity, condition, date_added FROM inventory ORDER BY date_added DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var out []core.InventoryItem
	for rows.Next() {
		var (
			it              core.InventoryItem
			condition, date string
		)
		if err := rows.Scan(&it.ID, &it.ItemName, &it.Category, &it.Quantity, &condition, &date); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		it.Condition = core.Condition(condition)
		it.DateAdded = parseStoredDate(date)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteInventoryItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("inventory item", id)
	}
	return nil
}

// ---- year-end archive ----

// ArchivePeriod snapshots, archives and clears the working tables inside one
// transaction. Inventory is kept.
func (r *SQLiteRepository) ArchivePeriod(ctx context.Context, year int, build store.ArchiveFunc) (core.ArchivedPeriod, error) {
	var ap core.ArchivedPeriod
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM archived_periods WHERE year = ?`, year).Scan(&exists); err != nil {
			return fmt.Errorf("check archive: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("archive %d: %w", year, core.ErrConflict)
		}

		snap, err := snapshot(ctx, tx)
		if err != nil {
			return err
		}
		ap = build(snap)
		ap.Year = year
		if ap.ArchivedAt.IsZero() {
			ap.ArchivedAt = r.now()
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO archived_periods (year, archived_at) VALUES (?, ?)`,
			year, ap.ArchivedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert archive: %w", err)
		}
		if err := insertCategories(ctx, tx, year, "revenue", ap.Revenue); err != nil {
			return err
		}
		if err := insertCategories(ctx, tx, year, "expense", ap.Expenses); err != nil {
			return err
		}
		for i, t := range ap.Transactions {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO archived_transactions (year, position, date, type, category, description, amount_cents)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				year, i, t.Date.String(), t.Type, t.Category, t.Description, t.Amount.Cents); err != nil {
				return fmt.Errorf("insert archived transaction: %w", err)
			}
		}

		for _, table := range []string{"district_expenses", "income", "tithes", "offerings", "expenses"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.ArchivedPeriod{}, err
	}
	slog.InfoContext(ctx, "Period archived",
		"year", year,
		"transactions", len(ap.Transactions),
		"revenue_cents", ap.TotalRevenue().Cents,
		"expense_cents", ap.TotalExpenses().Cents)
	return ap, nil
}

func snapshot(ctx context.Context, q querier) (core.Snapshot, error) {
	var (
		snap core.Snapshot
		err  error
	)
	if snap.Income, err = listIncome(ctx, q, store.IncomeFilter{}); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Tithes, err = listLedger(ctx, q, "tithes", store.AllMonths, "month DESC, member_name ASC"); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Offerings, err = listLedger(ctx, q, "offerings", store.AllMonths, "id ASC"); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Expenses, err = listExpenses(ctx, q, ""); err != nil {
		return core.Snapshot{}, err
	}
	if snap.AutoDistrict, err = listAuto(ctx, q); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

func insertCategories(ctx context.Context, tx *sql.Tx, year int, section string, cats []core.CategoryAmount) error {
	for i, c := range cats {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO archived_categories (year, section, position, name, amount_cents)
			VALUES (?, ?, ?, ?, ?)`, year, section, i, c.Name, c.Amount.Cents); err != nil {
			return fmt.Errorf("insert archived %s category: %w", section, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) HistoricalYears(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT year FROM archived_periods ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list archived years: %w", err)
	}
	defer rows.Close()
	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan archived year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (r *SQLiteRepository) HistoricalPeriod(ctx context.Context, year int) (core.ArchivedPeriod, error) {
	ap := core.ArchivedPeriod{Year: year}
	var archivedAt string
	err := r.db.QueryRowContext(ctx, `SELECT archived_at FROM archived_periods WHERE year = ?`, year).Scan(&archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ArchivedPeriod{}, fmt.Errorf("archive %d: %w", year, core.ErrNotFound)
	}
	if err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("get archive: %w", err)
	}
	if ap.ArchivedAt, err = time.Parse(time.RFC3339Nano, archivedAt); err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("parse archive time %q: %w", archivedAt, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT section, name, amount_cents FROM archived_categories
		WHERE year = ? ORDER BY section, position`, year)
	if err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("list archived categories: %w", err)
	}
	for rows.Next() {
		var (
			section string
			c       core.CategoryAmount
		)
		if err := rows.Scan(&section, &c.Name, &c.Amount.Cents); err != nil {
			rows.Close()
			return core.ArchivedPeriod{}, fmt.Errorf("scan archived category: %w", err)
		}
		if section == "revenue" {
			ap.Revenue = append(ap.Revenue, c)
		} else {
			ap.Expenses = append(ap.Expenses, c)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return core.ArchivedPeriod{}, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT date, type, category, description, amount_cents FROM archived_transactions
		WHERE year = ? ORDER BY position`, year)
	if err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("list archived transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t    core.ArchivedTransaction
			date string
		)
		if err := rows.Scan(&date, &t.Type, &t.Category, &t.Description, &t.Amount.Cents); err != nil {
			return core.ArchivedPeriod{}, fmt.Errorf("scan archived transaction: %w", err)
		}
		t.Date = parseStoredDate(date)
		ap.Transactions = append(ap.Transactions, t)
	}
	return ap, rows.Err()
}
