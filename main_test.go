package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"library-circulation/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, input ...string) (string, *library.LibraryManager) {
	t.Helper()
	mgr, err := library.NewLibraryManager("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	mgr.SetClock(func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) })

	var out bytes.Buffer
	a := &app{
		sc:  bufio.NewScanner(strings.NewReader(strings.Join(input, "\n") + "\n")),
		out: &out,
		mgr: mgr,
		prompt: func() (string, error) {
			t.Fatal("unexpected password prompt")
			return "", nil
		},
	}
	a.run()
	return out.String(), mgr
}

func TestSessionBorrowListReturn(t *testing.T) {
	out, mgr := runSession(t,
		"3", "S001", "9780451524935",
		"5",
		"4", "S001", "9780451524935",
		"5",
		"0",
	)
	assert.Contains(t, out, "Book borrowed successfully. Due 2024-01-15.")
	assert.Contains(t, out, "Loan #1 - Member S001 - ISBN 9780451524935 - Borrowed 2024-01-01 - Due 2024-01-15")
	assert.Contains(t, out, "Book returned successfully.")
	assert.NotContains(t, out, "overdue")
	assert.Contains(t, out, "No active loans.")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.Empty(t, mgr.ListLoans())
}

func TestSessionReportsErrorsAndContinues(t *testing.T) {
	out, _ := runSession(t,
		"",
		"abc",
		"42",
		"3", "S001", "9780134685991",
		"3", "T001", "9780134685991",
		"4", "T001", "9780451524935",
		"6", "S001",
		"0",
	)
	assert.Contains(t, out, "Invalid command: choice cannot be empty")
	assert.Contains(t, out, "Invalid command: choice must be a number")
	assert.Contains(t, out, "Invalid command: unknown menu option: 42")
	assert.Contains(t, out, "Error: book 9780134685991 is already on loan")
	assert.Contains(t, out, "Error: no matching loan for member T001 and ISBN 9780451524935")
	assert.Contains(t, out, "Error: only admin can change the catalog")
	assert.Contains(t, out, "Goodbye!")
}

func TestSessionAdminCatalogChanges(t *testing.T) {
	out, mgr := runSession(t,
		"6", "A001", "978-1-59327-584-6", "The Go Programming Language", "Alan Donovan", "technology", "2015",
		"6", "A001", "9781593275846", "Duplicate", "Someone", "FICTION", "2015",
		"7", "A001", "9780596009205",
		"7", "A001", "9780596009205",
		"2", "go programming",
		"8",
		"0",
	)
	assert.Contains(t, out, "Book added successfully!")
	assert.Contains(t, out, "Book with ISBN 9781593275846 already exists.")
	assert.Contains(t, out, "Book removed successfully.")
	assert.Contains(t, out, "Book not found or could not be removed.")
	assert.Contains(t, out, "The Go Programming Language (ISBN 9781593275846) by Alan Donovan [TECHNOLOGY] - Available")
	assert.Contains(t, out, "Book:      Dragon Ball (ISBN 9781569319307)")

	_, err := mgr.Library().FindItemByISBN(library.MustISBN("9780596009205"))
	assert.Error(t, err)
}

func TestSessionEndsOnEOF(t *testing.T) {
	out, _ := runSession(t, "1")
	assert.Contains(t, out, "--- All Library Items ---")
	assert.Contains(t, out, "1984 (ISBN 9780451524935) by George Orwell [FICTION] - Available")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
}

func TestPasswordPromptWritesToOutput(t *testing.T) {
	var out bytes.Buffer
	prompt := passwordPrompt(&out, "Enter admin password: ", func() ([]byte, error) {
		return []byte("  s3cret \n"), nil
	})

	password, err := prompt()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", password)
	assert.Equal(t, "Enter admin password: \n", out.String())
}

func TestSessionAdminPasswordPrompt(t *testing.T) {
	hash, err := library.HashPassword("letmein")
	require.NoError(t, err)
	lib := library.New(nil, nil, []*library.Member{{ID: "A002", Name: "Locked Admin", Role: library.RoleAdmin, PasswordHash: hash}})

	var out bytes.Buffer
	a := &app{
		sc:  bufio.NewScanner(strings.NewReader("7\nA002\n9780451524935\n7\nA002\n0\n")),
		out: &out,
		mgr: library.NewLibraryManagerFor(lib, nil),
	}
	answers := []string{"letmein", "wrong"}
	a.prompt = passwordPrompt(&out, "Enter admin password: ", func() ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	})
	a.run()

	assert.Equal(t, 2, strings.Count(out.String(), "Enter admin password: "))
	assert.Contains(t, out.String(), "Book not found or could not be removed.")
	assert.Contains(t, out.String(), "Error: invalid password")
}
