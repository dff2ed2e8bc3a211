package library

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DateLayout is how loan dates are printed.
const DateLayout = "2006-01-02"

// PasswordPrompt asks the operator for a password.
type PasswordPrompt func() (string, error)

// LibraryManager is a thin façade over the Library, keeping CLI code simple.
// It supplies today's date, performs the admin gate for catalog changes and
// renders items and loans as text.
type LibraryManager struct {
	lib *Library
	db  *Database
	log *slog.Logger
	now func() time.Time
}

// NewLibraryManager loads the catalog at catalogPath, or the built-in seed
// when catalogPath is empty.
func NewLibraryManager(catalogPath string, logger *slog.Logger) (*LibraryManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if catalogPath == "" {
		logger.Info("using built-in catalog")
		return NewLibraryManagerFor(DefaultLibrary(), logger), nil
	}
	db, err := NewDatabase(catalogPath, logger)
	if err != nil {
		return nil, err
	}
	lib, err := db.LoadLibrary()
	if err != nil {
		db.Close()
		return nil, err
	}
	lm := NewLibraryManagerFor(lib, logger)
	lm.db = db
	return lm, nil
}

// NewLibraryManagerFor wraps an existing Library.
func NewLibraryManagerFor(lib *Library, logger *slog.Logger) *LibraryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryManager{lib: lib, log: logger, now: time.Now}
}

// Close closes the catalog database, if one was opened.
func (lm *LibraryManager) Close() error {
	if lm.db == nil {
		return nil
	}
	return lm.db.Close()
}

// SetClock replaces the source of today's date.
func (lm *LibraryManager) SetClock(now func() time.Time) { lm.now = now }

// Library exposes the underlying circulation service.
func (lm *LibraryManager) Library() *Library { return lm.lib }

// Today is the current calendar date at midnight UTC.
func (lm *LibraryManager) Today() time.Time {
	y, m, d := lm.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ------------------ Catalog ------------------

func (lm *LibraryManager) ListItems() []Item       { return lm.lib.Items() }
func (lm *LibraryManager) ListLoans() []LoanRecord { return lm.lib.Loans() }

// SearchByTitle returns items whose title contains q, ignoring case.
func (lm *LibraryManager) SearchByTitle(q string) []Item {
	q = strings.ToLower(strings.TrimSpace(q))
	return lm.lib.MatchingItems(func(it Item) bool {
		return strings.Contains(strings.ToLower(it.Name()), q)
	})
}

// ------------------ Circulation ------------------

// Borrow lends the book with rawISBN to memberID as of today.
func (lm *LibraryManager) Borrow(memberID, rawISBN string) (LoanRecord, error) {
	isbn, err := NewISBN(rawISBN)
	if err != nil {
		return LoanRecord{}, err
	}
	rec, err := lm.lib.Borrow(strings.TrimSpace(memberID), isbn, lm.Today())
	if err != nil {
		return LoanRecord{}, err
	}
	lm.log.Debug("book borrowed", "loan", rec.LoanID, "member", rec.MemberID, "isbn", rec.ISBN.String(), "due", rec.DueDate.Format(DateLayout))
	return rec, nil
}

// Return closes memberID's loan of rawISBN as of today and reports whether
// it was overdue.
func (lm *LibraryManager) Return(memberID, rawISBN string) (bool, error) {
	isbn, err := NewISBN(rawISBN)
	if err != nil {
		return false, err
	}
	overdue, err := lm.lib.GiveBack(strings.TrimSpace(memberID), isbn, lm.Today())
	if err != nil {
		return false, err
	}
	lm.log.Debug("book returned", "member", memberID, "isbn", isbn.String(), "overdue", overdue)
	return overdue, nil
}

// ------------------ Admin ------------------

// AuthorizeAdmin resolves adminID and requires the Admin role. Admins with a
// stored password hash must also pass prompt.
func (lm *LibraryManager) AuthorizeAdmin(adminID string, prompt PasswordPrompt) (*Member, error) {
	user, err := lm.lib.FindUserByID(strings.TrimSpace(adminID))
	if err != nil {
		return nil, newError(ErrNotFound, "admin not found")
	}
	if !user.IsAdmin() {
		return nil, newError(ErrUnauthorized, "only admin can change the catalog")
	}
	if user.PasswordHash == "" {
		return user, nil
	}
	if prompt == nil {
		return nil, newError(ErrUnauthorized, "password required")
	}
	password, err := prompt()
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		lm.log.Warn("admin authentication failed", "admin", user.ID)
		return nil, err
	}
	return user, nil
}

// AddBook builds a book from operator input and adds it to the catalog.
// It returns false when the ISBN is already catalogued.
func (lm *LibraryManager) AddBook(admin *Member, rawISBN, title, author, genre string, year int) (bool, error) {
	isbn, err := NewISBN(rawISBN)
	if err != nil {
		return false, err
	}
	g, err := ParseGenre(genre)
	if err != nil {
		return false, err
	}
	b, err := NewBook(isbn, title, author, g, year)
	if err != nil {
		return false, err
	}
	added := lm.lib.AddBook(b)
	lm.log.Info("add book", "admin", admin.ID, "isbn", isbn.String(), "added", added)
	return added, nil
}

// RemoveBook removes the book with rawISBN from the catalog.
func (lm *LibraryManager) RemoveBook(admin *Member, rawISBN string) (bool, error) {
	isbn, err := NewISBN(rawISBN)
	if err != nil {
		return false, err
	}
	removed, err := lm.lib.RemoveBook(isbn)
	if err != nil {
		return false, err
	}
	lm.log.Info("remove book", "admin", admin.ID, "isbn", isbn.String(), "removed", removed)
	return removed, nil
}

// ------------------ Utilities ------------------

// FormatItem renders an item for lists.
func FormatItem(it Item) string {
	switch v := it.(type) {
	case *Book:
		status := "On loan"
		if v.Available() {
			status = "Available"
		}
		return fmt.Sprintf("%s (ISBN %s) by %s [%s] - %s", v.Title, v.ISBN, v.Author, v.Genre, status)
	default:
		return it.Name()
	}
}

// FormatItemByType prefixes FormatItem with the item's kind.
func FormatItemByType(it Item) string {
	switch it.(type) {
	case *Book:
		return "Book:      " + FormatItem(it)
	default:
		return "Unknown item: " + it.Name()
	}
}

// FormatLoan renders a ledger line.
func FormatLoan(r LoanRecord) string {
	return fmt.Sprintf("Loan #%d - Member %s - ISBN %s - Borrowed %s - Due %s",
		r.LoanID, r.MemberID, r.ISBN, r.BorrowDate.Format(DateLayout), r.DueDate.Format(DateLayout))
}
