package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRecordStore is the durable record store. Natural lookup order is
// rowid, i.e. insertion order.
type SQLiteRecordStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteRecordStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRecordStore{db: db}, nil
}

func (s *SQLiteRecordStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.Join(strings.Fields(q), " ")) + "%"
}

func (s *SQLiteRecordStore) GetBook(ctx context.Context, titleQuery string) (model.Book, bool, error) {
	if strings.TrimSpace(titleQuery) == "" {
		return model.Book{}, false, nil
	}
	var b model.Book
	err := s.db.QueryRowContext(ctx,
		`SELECT title, author, quantity FROM books WHERE title LIKE ? ESCAPE '\' ORDER BY rowid LIMIT 1`,
		likePattern(titleQuery),
	).Scan(&b.Title, &b.Author, &b.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, false, nil
	}
	if err != nil {
		return model.Book{}, false, fmt.Errorf("query book: %w", err)
	}
	return b, true, nil
}

func (s *SQLiteRecordStore) ListBooks(ctx context.Context, query string) ([]model.Book, error) {
	p := likePattern(query)
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, author, quantity FROM books
		 WHERE title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'
		 ORDER BY title COLLATE NOCASE, rowid`,
		p, p,
	)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.Title, &b.Author, &b.Quantity); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *SQLiteRecordStore) SetBookQuantity(ctx context.Context, title string, qty int) error {
	if qty < 0 {
		return ErrNegativeValue
	}
	res, err := s.db.ExecContext(ctx, `UPDATE books SET quantity = ? WHERE title = ?`, qty, title)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return expectOneRow(res, fmt.Errorf("%w: %q", ErrBookNotFound, title))
}

func (s *SQLiteRecordStore) GetAccount(ctx context.Context, userID int64) (model.Account, bool, error) {
	a := model.Account{UserID: userID}
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE user_id = ?`, userID).Scan(&a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("query account: %w", err)
	}
	return a, true, nil
}

func (s *SQLiteRecordStore) SetAccountBalance(ctx context.Context, userID int64, balance int) error {
	if balance < 0 {
		return ErrNegativeValue
	}
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE user_id = ?`, balance, userID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return expectOneRow(res, fmt.Errorf("%w: %d", ErrAccountNotFound, userID))
}

func (s *SQLiteRecordStore) SaveBook(ctx context.Context, b model.Book) error {
	if b.Quantity < 0 {
		return ErrNegativeValue
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (title, author, quantity) VALUES (?, ?, ?)
		 ON CONFLICT(title) DO UPDATE SET author = excluded.author, quantity = excluded.quantity`,
		b.Title, b.Author, b.Quantity,
	)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) SaveAccount(ctx context.Context, a model.Account) error {
	if a.Balance < 0 {
		return ErrNegativeValue
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, balance) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET balance = excluded.balance`,
		a.UserID, a.Balance,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var (
	_ model.RecordStore = (*SQLiteRecordStore)(nil)
	_ model.Seeder      = (*SQLiteRecordStore)(nil)
)
