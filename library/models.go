package library

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// BookLoanDays is how long a book may stay on loan.
const BookLoanDays = 14

var validate = validator.New()

// validateStruct maps validator failures onto ErrValidation.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return newError(ErrValidation, "%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return newError(ErrValidation, "%s", strings.Join(msgs, ", "))
}

// ---------------------------------------------------------------------------
// Catalog items
// ---------------------------------------------------------------------------

// ItemKind discriminates catalog item variants.
type ItemKind string

const KindBook ItemKind = "book"

// Item is anything the library lends. Book is the only variant today.
type Item interface {
	Kind() ItemKind
	ID() string
	Name() string
	Available() bool

	setAvailable(bool)
	clone() Item
}

// Genre classifies books.
type Genre string

const (
	GenreFiction    Genre = "FICTION"
	GenreTechnology Genre = "TECHNOLOGY"
	GenrePsychology Genre = "PSYCHOLOGY"
	GenreBusiness   Genre = "BUSINESS"
	GenreScience    Genre = "SCIENCE"
	GenreHistory    Genre = "HISTORY"
	GenreOther      Genre = "OTHER"
)

var genres = []Genre{
	GenreFiction, GenreTechnology, GenrePsychology, GenreBusiness,
	GenreScience, GenreHistory, GenreOther,
}

// ParseGenre matches s against the known genres ignoring case.
func ParseGenre(s string) (Genre, error) {
	g := Genre(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range genres {
		if g == known {
			return g, nil
		}
	}
	return "", newError(ErrValidation, "unknown genre %q", s)
}

// Book is a lendable catalog item identified by its ISBN.
type Book struct {
	ISBN   ISBN
	Title  string `validate:"required"`
	Author string `validate:"required"`
	Genre  Genre  `validate:"required"`
	Year   int

	available bool
}

// NewBook returns an available book. Title, author and genre are required.
func NewBook(isbn ISBN, title, author string, genre Genre, year int) (*Book, error) {
	if isbn.IsZero() {
		return nil, newError(ErrValidation, "isbn is required")
	}
	b := &Book{
		ISBN:      isbn,
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Genre:     genre,
		Year:      year,
		available: true,
	}
	if err := validateStruct(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Book) Kind() ItemKind     { return KindBook }
func (b *Book) ID() string         { return b.ISBN.String() }
func (b *Book) Name() string       { return b.Title }
func (b *Book) Available() bool    { return b.available }
func (b *Book) MaxBorrowDays() int { return BookLoanDays }

func (b *Book) setAvailable(v bool) { b.available = v }

func (b *Book) clone() Item {
	cp := *b
	return &cp
}

// DueDate is the day a loan of b starting on from must be returned.
func (b *Book) DueDate(from time.Time) (time.Time, error) {
	return DueDate(from, b.MaxBorrowDays())
}

func (b *Book) String() string {
	return fmt.Sprintf("Book{isbn=%s, title=%q, author=%q, genre=%s, year=%d, available=%t}",
		b.ISBN, b.Title, b.Author, b.Genre, b.Year, b.available)
}

// DueDate adds days calendar days to from.
func DueDate(from time.Time, days int) (time.Time, error) {
	if from.IsZero() {
		return time.Time{}, newError(ErrValidation, "borrow date is required")
	}
	return from.AddDate(0, 0, days), nil
}

// IsOverdue reports whether on falls strictly after due.
func IsOverdue(due, on time.Time) bool {
	return on.After(due)
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// Role is the kind of registered user.
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleStaff
	RoleStudent
)

// AdminRoleTag is carried by every admin.
const AdminRoleTag = "ADMIN"

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleStaff:
		return "Staff"
	case RoleStudent:
		return "Student"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole matches s against role names ignoring case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "staff":
		return RoleStaff, nil
	case "student":
		return RoleStudent, nil
	}
	return 0, newError(ErrValidation, "unknown role %q", s)
}

// Member is a registered library user. Department is set for staff, Course
// for students.
type Member struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Role         Role   `json:"role" validate:"required"`
	Department   string `json:"department,omitempty"`
	Course       string `json:"course,omitempty"`
	PasswordHash string `json:"-"`
}

func newMember(id, name string, role Role) (*Member, error) {
	m := &Member{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name), Role: role}
	if err := validateStruct(m); err != nil {
		return nil, err
	}
	return m, nil
}

func NewAdmin(id, name string) (*Member, error) {
	return newMember(id, name, RoleAdmin)
}

func NewStaff(id, name, department string) (*Member, error) {
	m, err := newMember(id, name, RoleStaff)
	if err != nil {
		return nil, err
	}
	m.Department = department
	return m, nil
}

func NewStudent(id, name, course string) (*Member, error) {
	m, err := newMember(id, name, RoleStudent)
	if err != nil {
		return nil, err
	}
	m.Course = course
	return m, nil
}

// Type is the display label of the member's role.
func (m *Member) Type() string { return m.Role.String() }

// RoleTag is AdminRoleTag for admins and empty otherwise.
func (m *Member) RoleTag() string {
	if m.Role == RoleAdmin {
		return AdminRoleTag
	}
	return ""
}

func (m *Member) IsAdmin() bool { return m.Role == RoleAdmin }

// CanBorrow reports whether the role may take books on loan.
func (m *Member) CanBorrow() bool {
	switch m.Role {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	}
	return false
}

func (m *Member) String() string {
	return fmt.Sprintf("%s %s (%s)", m.Type(), m.Name, m.ID)
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

// LoanRecord is an open loan of one item to one member.
type LoanRecord struct {
	LoanID     int
	ISBN       ISBN
	MemberID   string
	BorrowDate time.Time
	DueDate    time.Time
}
