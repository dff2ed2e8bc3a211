package library

import (
	"sync"
	"time"
)

// Library owns the catalog, the member roster and the loan ledger. Every
// exported method holds the lock for its whole duration so a lookup and the
// mutation that follows it are applied together or not at all.
//
// Items and loans handed out by Library are copies; availability can only
// change through Borrow and GiveBack.
type Library struct {
	mu    sync.Mutex
	items []Item
	loans []LoanRecord
	users []*Member
}

// New builds a Library from seed collections. Uniqueness of IDs is the
// caller's responsibility. Nil or invalid items and nil users are skipped.
func New(items []Item, loans []LoanRecord, users []*Member) *Library {
	l := &Library{
		items: make([]Item, 0, len(items)),
		loans: append([]LoanRecord(nil), loans...),
		users: make([]*Member, 0, len(users)),
	}
	l.appendItems(items)
	for _, u := range users {
		l.appendUser(u)
	}
	return l
}

// AddItems appends items to the catalog without duplicate checks. Nil or
// invalid items are skipped.
func (l *Library) AddItems(items ...Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendItems(items)
}

// AddUser registers a copy of u without duplicate checks.
func (l *Library) AddUser(u *Member) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendUser(u)
}

func (l *Library) appendItems(items []Item) {
	for _, it := range items {
		if validItem(it) {
			l.items = append(l.items, it.clone())
		}
	}
}

func (l *Library) appendUser(u *Member) {
	if u == nil {
		return
	}
	cp := *u
	l.users = append(l.users, &cp)
}

// validItem rejects nil items, including typed nils, and books that could
// not have come from NewBook.
func validItem(it Item) bool {
	switch v := it.(type) {
	case nil:
		return false
	case *Book:
		return v != nil && !v.ISBN.IsZero() && validateStruct(v) == nil
	}
	return true
}

// ------------------ Lookups ------------------

func (l *Library) FindItemByID(id string) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.ID() == id {
			return it.clone(), nil
		}
	}
	return nil, newError(ErrNotFound, "item not found for ID %s", id)
}

func (l *Library) FindItemByISBN(isbn ISBN) (*Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.findBook(isbn)
	if err != nil {
		return nil, err
	}
	return b.clone().(*Book), nil
}

func (l *Library) FindUserByID(id string) (*Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.findUser(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (l *Library) findBook(isbn ISBN) (*Book, error) {
	it, err := l.findItemByISBN(isbn)
	if err != nil {
		return nil, err
	}
	return it.(*Book), nil
}

func (l *Library) findItemByISBN(isbn ISBN) (Item, error) {
	for _, it := range l.items {
		if b, ok := it.(*Book); ok && b.ISBN == isbn {
			return it, nil
		}
	}
	return nil, newError(ErrNotFound, "no such book: ISBN %s", isbn)
}

func (l *Library) findUser(id string) (*Member, error) {
	for _, u := range l.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, newError(ErrNotFound, "no such user: %s", id)
}

// ------------------ Circulation ------------------

// Borrow lends the book identified by isbn to memberID starting on
// borrowDate. The new loan's ID is the ledger size plus one, so IDs can repeat
// once earlier loans have been returned.
func (l *Library) Borrow(memberID string, isbn ISBN, borrowDate time.Time) (LoanRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	user, err := l.findUser(memberID)
	if err != nil {
		return LoanRecord{}, err
	}
	item, err := l.findItemByISBN(isbn)
	if err != nil {
		return LoanRecord{}, err
	}

	book, ok := item.(*Book)
	if !ok {
		return LoanRecord{}, newError(ErrConflict, "only books may be borrowed this way")
	}
	if !book.Available() {
		return LoanRecord{}, newError(ErrConflict, "book %s is already on loan", isbn)
	}
	if !user.CanBorrow() {
		return LoanRecord{}, newError(ErrUnauthorized, "only members may borrow books")
	}

	due, err := book.DueDate(borrowDate)
	if err != nil {
		return LoanRecord{}, err
	}
	rec := LoanRecord{
		LoanID:     len(l.loans) + 1,
		ISBN:       isbn,
		MemberID:   memberID,
		BorrowDate: borrowDate,
		DueDate:    due,
	}
	l.loans = append(l.loans, rec)
	book.setAvailable(false)
	return rec, nil
}

// GiveBack closes the loan of isbn held by memberID and reports whether it
// was returned after its due date.
func (l *Library) GiveBack(memberID string, isbn ISBN, returnDate time.Time) (overdue bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, rec := range l.loans {
		if rec.ISBN == isbn && rec.MemberID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, newError(ErrNotFound, "no matching loan for member %s and ISBN %s", memberID, isbn)
	}
	if returnDate.IsZero() {
		return false, newError(ErrValidation, "return date is required")
	}
	rec := l.loans[idx]

	if item, err := l.findItemByISBN(isbn); err == nil {
		item.setAvailable(true)
	}
	l.loans = append(l.loans[:idx], l.loans[idx+1:]...)
	return IsOverdue(rec.DueDate, returnDate), nil
}

// ------------------ Catalog mutation ------------------

// AddBook appends an available copy of b unless a book with the same ISBN is
// already catalogued. Duplicates and invalid books are reported as false, not
// as an error.
func (l *Library) AddBook(b *Book) bool {
	if !validItem(b) {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.findBook(b.ISBN); err == nil {
		return false
	}
	added := b.clone().(*Book)
	added.setAvailable(true)
	l.items = append(l.items, added)
	return true
}

// RemoveBook deletes the book with isbn. It fails while any loan references
// isbn and returns false when no such book exists.
func (l *Library) RemoveBook(isbn ISBN) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range l.loans {
		if rec.ISBN == isbn {
			return false, newError(ErrConflict, "cannot remove book %s while it has an active loan", isbn)
		}
	}
	removed := false
	kept := l.items[:0]
	for _, it := range l.items {
		if b, ok := it.(*Book); ok && b.ISBN == isbn {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = nil
	}
	l.items = kept
	return removed, nil
}

// ------------------ Listing ------------------

// Items returns a snapshot of the catalog in insertion order.
func (l *Library) Items() []Item {
	return l.MatchingItems(func(Item) bool { return true })
}

// MatchingItems returns the catalog entries for which match returns true.
func (l *Library) MatchingItems(match func(Item) bool) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Item, 0, len(l.items))
	for _, it := range l.items {
		if cp := it.clone(); match(cp) {
			out = append(out, cp)
		}
	}
	return out
}

// Loans returns a snapshot of the ledger in insertion order.
func (l *Library) Loans() []LoanRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LoanRecord(nil), l.loans...)
}

// Users returns a snapshot of the member roster.
func (l *Library) Users() []*Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Member, 0, len(l.users))
	for _, u := range l.users {
		cp := *u
		out = append(out, &cp)
	}
	return out
}
