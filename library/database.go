package library

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Database is the SQLite seed catalog: the books and members a Library
// starts with. Loans are never written here.
type Database struct {
	db  *sql.DB
	log *slog.Logger

	addBookStmt   *sql.Stmt
	addMemberStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite catalog at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db, log: logger}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addBookStmt != nil {
		d.addBookStmt.Close()
	}
	if d.addMemberStmt != nil {
		d.addMemberStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            role TEXT NOT NULL,
            department TEXT NOT NULL DEFAULT '',
            course TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            isbn TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            year INTEGER NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debug("catalog schema migrated", "from", current, "to", schemaVersion)
	return nil
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT OR IGNORE INTO books(isbn,title,author,genre,year,available) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addMemberStmt, err = d.db.Prepare(`INSERT OR IGNORE INTO members(id,name,role,department,course,password_hash) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// CRUD helpers
// ---------------------------------------------------------------------------

// AddBook stores b and reports false when its ISBN is already present.
func (d *Database) AddBook(b *Book) (bool, error) {
	res, err := d.addBookStmt.Exec(b.ISBN.String(), b.Title, b.Author, string(b.Genre), b.Year, b.Available())
	if err != nil {
		return false, fmt.Errorf("insert book %s: %w", b.ISBN, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// AddMember stores m and reports false when its ID is already present.
func (d *Database) AddMember(m *Member) (bool, error) {
	res, err := d.addMemberStmt.Exec(m.ID, m.Name, m.Role.String(), m.Department, m.Course, m.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("insert member %s: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetAllBooks returns the catalog in insertion order.
func (d *Database) GetAllBooks() ([]*Book, error) {
	rows, err := d.db.Query(`SELECT isbn,title,author,genre,year,available FROM books ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var (
			rawISBN, title, author, genre string
			year                          int
			available                     bool
		)
		if err := rows.Scan(&rawISBN, &title, &author, &genre, &year, &available); err != nil {
			return nil, err
		}
		b, err := bookFromRow(rawISBN, title, author, genre, year)
		if err != nil {
			return nil, fmt.Errorf("book %q: %w", rawISBN, err)
		}
		b.available = available
		books = append(books, b)
	}
	return books, rows.Err()
}

func bookFromRow(rawISBN, title, author, genre string, year int) (*Book, error) {
	isbn, err := NewISBN(rawISBN)
	if err != nil {
		return nil, err
	}
	g, err := ParseGenre(genre)
	if err != nil {
		return nil, err
	}
	return NewBook(isbn, title, author, g, year)
}

// GetMember fetches a single member.
func (d *Database) GetMember(id string) (*Member, error) {
	row := d.db.QueryRow(`SELECT id,name,role,department,course,password_hash FROM members WHERE id=?`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "no such user: %s", id)
	}
	return m, err
}

// GetAllMembers returns all members in ID order.
func (d *Database) GetAllMembers() ([]*Member, error) {
	rows, err := d.db.Query(`SELECT id,name,role,department,course,password_hash FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(r rowScanner) (*Member, error) {
	var m Member
	var role string
	if err := r.Scan(&m.ID, &m.Name, &role, &m.Department, &m.Course, &m.PasswordHash); err != nil {
		return nil, err
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", m.ID, err)
	}
	m.Role = parsed
	return &m, nil
}

// ResetMemberPassword stores a bcrypt hash of password for the member.
func (d *Database) ResetMemberPassword(id, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	res, err := d.db.Exec(`UPDATE members SET password_hash=? WHERE id=?`, hash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return newError(ErrNotFound, "no such user: %s", id)
	}
	return nil
}

// LoadLibrary builds an in-memory Library from the stored catalog and roster.
func (d *Database) LoadLibrary() (*Library, error) {
	books, err := d.GetAllBooks()
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	members, err := d.GetAllMembers()
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	items := make([]Item, 0, len(books))
	for _, b := range books {
		items = append(items, b)
	}
	d.log.Info("catalog loaded", "books", len(books), "members", len(members))
	return New(items, nil, members), nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", newError(ErrValidation, "password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return newError(ErrUnauthorized, "invalid password")
	}
	return nil
}
