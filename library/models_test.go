package library

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewBook(t *testing.T) {
	b, err := NewBook(MustISBN("9780451524935"), "1984", "George Orwell", GenreFiction, 1949)
	require.NoError(t, err)
	assert.True(t, b.Available())
	assert.Equal(t, KindBook, b.Kind())
	assert.Equal(t, "9780451524935", b.ID())
	assert.Equal(t, "1984", b.Name())
	assert.Equal(t, 14, b.MaxBorrowDays())
}

func TestNewBookValidation(t *testing.T) {
	isbn := MustISBN("9780451524935")
	tests := []struct {
		name   string
		isbn   ISBN
		title  string
		author string
		genre  Genre
	}{
		{name: "zero isbn", title: "T", author: "A", genre: GenreFiction},
		{name: "empty title", isbn: isbn, title: "  ", author: "A", genre: GenreFiction},
		{name: "empty author", isbn: isbn, title: "T", author: "", genre: GenreFiction},
		{name: "missing genre", isbn: isbn, title: "T", author: "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBook(tt.isbn, tt.title, tt.author, tt.genre, 2000)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestDueDate(t *testing.T) {
	b, err := NewBook(MustISBN("9780451524935"), "1984", "George Orwell", GenreFiction, 1949)
	require.NoError(t, err)

	due, err := b.DueDate(day(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 15), due)

	due, err = b.DueDate(day(2024, time.February, 20))
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.March, 5), due, "leap year")

	_, err = b.DueDate(time.Time{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestIsOverdue(t *testing.T) {
	due := day(2024, time.January, 15)
	assert.False(t, IsOverdue(due, day(2024, time.January, 14)))
	assert.False(t, IsOverdue(due, due), "returning on the due date is on time")
	assert.True(t, IsOverdue(due, day(2024, time.January, 16)))
}

func TestParseGenre(t *testing.T) {
	g, err := ParseGenre(" technology ")
	require.NoError(t, err)
	assert.Equal(t, GenreTechnology, g)

	_, err = ParseGenre("poetry")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMemberRoles(t *testing.T) {
	admin, err := NewAdmin("A001", "Admin Super")
	require.NoError(t, err)
	staff, err := NewStaff("T001", "Joe Staff", "Library")
	require.NoError(t, err)
	student, err := NewStudent("S001", "Jane Student", "CS")
	require.NoError(t, err)

	assert.Equal(t, "Admin", admin.Type())
	assert.Equal(t, AdminRoleTag, admin.RoleTag())
	assert.True(t, admin.IsAdmin())

	assert.Equal(t, "Staff", staff.Type())
	assert.Equal(t, "Library", staff.Department)
	assert.Empty(t, staff.RoleTag())
	assert.False(t, staff.IsAdmin())

	assert.Equal(t, "Student", student.Type())
	assert.Equal(t, "CS", student.Course)
	assert.Equal(t, "Student Jane Student (S001)", student.String())

	for _, m := range []*Member{admin, staff, student} {
		assert.True(t, m.CanBorrow(), m.String())
	}
	assert.False(t, (&Member{ID: "X", Name: "Ghost"}).CanBorrow())
}

func TestMemberValidation(t *testing.T) {
	_, err := NewAdmin("", "Nobody")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewStudent("S002", " ", "CS")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("STUDENT")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, r)

	_, err = ParseRole("guest")
	assert.True(t, errors.Is(err, ErrValidation))
}
