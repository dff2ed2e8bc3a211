package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"library-circulation/config"
	"library-circulation/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		catalog  string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "library",
		Short:        "Interactive library circulation manager",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("catalog") {
				cfg.CatalogPath = catalog
			}
			if cmd.Flags().Changed("log-level") {
				if cfg.LogLevel, err = config.ParseLevel(logLevel); err != nil {
					return err
				}
			}
			logger := config.NewLogger(cfg.LogLevel)

			manager, err := library.NewLibraryManager(cfg.CatalogPath, logger)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer manager.Close()

			app := &app{
				sc:     bufio.NewScanner(cmd.InOrStdin()),
				out:    cmd.OutOrStdout(),
				mgr:    manager,
				prompt: passwordPrompt(cmd.OutOrStdout(), "Enter admin password: ", readTerminalPassword),
			}
			app.run()
			return nil
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", "", "SQLite catalog to load (default: built-in seed, env LIBRARY_CATALOG)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (env LIBRARY_LOG_LEVEL)")
	return cmd
}

// readTerminalPassword reads a line from stdin without echoing it.
func readTerminalPassword() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

// passwordPrompt securely reads a password with masking, writing the prompt
// to out.
func passwordPrompt(out io.Writer, label string, read func() ([]byte, error)) library.PasswordPrompt {
	return func() (string, error) {
		fmt.Fprint(out, label)
		bytePassword, err := read()
		if err != nil {
			return "", err
		}
		fmt.Fprintln(out) // Add newline after password input
		return strings.TrimSpace(string(bytePassword)), nil
	}
}

// invalidCommand is operator input the menu cannot act on.
type invalidCommand string

func (e invalidCommand) Error() string { return string(e) }

type app struct {
	sc     *bufio.Scanner
	out    io.Writer
	mgr    *library.LibraryManager
	prompt library.PasswordPrompt
}

func (a *app) run() {
	for {
		a.printMenu()
		if !a.sc.Scan() {
			break
		}
		running, err := a.handleChoice(strings.TrimSpace(a.sc.Text()))
		var invalid invalidCommand
		switch {
		case errors.As(err, &invalid):
			fmt.Fprintf(a.out, "Invalid command: %s\n", invalid)
		case err != nil:
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
		if !running {
			break
		}
	}
	fmt.Fprintln(a.out, "Goodbye!")
}

func (a *app) printMenu() {
	var sb strings.Builder
	sb.WriteString("\n1. List all items\n")
	sb.WriteString("2. Search items by title\n")
	sb.WriteString("3. Borrow a book\n")
	sb.WriteString("4. Return a book\n")
	sb.WriteString("5. List active loans\n")
	sb.WriteString("6. Add a book (Admin Only)\n")
	sb.WriteString("7. Remove a book by ISBN (Admin Only)\n")
	sb.WriteString("8. List items by type\n")
	sb.WriteString("0. Exit\n")
	sb.WriteString("Choose an option: ")
	fmt.Fprint(a.out, sb.String())
}

func (a *app) handleChoice(choice string) (bool, error) {
	if choice == "" {
		return true, invalidCommand("choice cannot be empty")
	}
	n, err := strconv.Atoi(choice)
	if err != nil {
		return true, invalidCommand("choice must be a number")
	}
	switch n {
	case 1:
		a.handleListItems()
	case 2:
		a.handleSearch()
	case 3:
		return true, a.handleBorrow()
	case 4:
		return true, a.handleReturn()
	case 5:
		a.handleListLoans()
	case 6:
		return true, a.handleAddBook()
	case 7:
		return true, a.handleRemoveBook()
	case 8:
		a.handleListByType()
	case 0:
		return false, nil
	default:
		return true, invalidCommand(fmt.Sprintf("unknown menu option: %d", n))
	}
	return true, nil
}

// ask prints label and returns the next trimmed input line.
func (a *app) ask(label string) string {
	fmt.Fprint(a.out, label)
	if !a.sc.Scan() {
		return ""
	}
	return strings.TrimSpace(a.sc.Text())
}

func (a *app) handleListItems() {
	fmt.Fprintln(a.out, "\n--- All Library Items ---")
	for _, it := range a.mgr.ListItems() {
		fmt.Fprintln(a.out, library.FormatItem(it))
	}
}

func (a *app) handleListByType() {
	for _, it := range a.mgr.ListItems() {
		fmt.Fprintln(a.out, library.FormatItemByType(it))
	}
}

func (a *app) handleSearch() {
	query := a.ask("Enter part of the title: ")
	items := a.mgr.SearchByTitle(query)
	if len(items) == 0 {
		fmt.Fprintf(a.out, "No items found matching '%s'.\n", query)
		return
	}
	for _, it := range items {
		fmt.Fprintln(a.out, library.FormatItem(it))
	}
}

func (a *app) handleBorrow() error {
	memberID := a.ask("Enter member ID: ")
	isbn := a.ask("Enter ISBN: ")
	rec, err := a.mgr.Borrow(memberID, isbn)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Book borrowed successfully. Due %s.\n", rec.DueDate.Format(library.DateLayout))
	return nil
}

func (a *app) handleReturn() error {
	memberID := a.ask("Enter member ID: ")
	isbn := a.ask("Enter ISBN: ")
	overdue, err := a.mgr.Return(memberID, isbn)
	if err != nil {
		return err
	}
	if overdue {
		fmt.Fprintln(a.out, "Warning: this book is overdue!")
	}
	fmt.Fprintln(a.out, "Book returned successfully.")
	return nil
}

func (a *app) handleListLoans() {
	fmt.Fprintln(a.out, "\n--- Active Loans ---")
	loans := a.mgr.ListLoans()
	if len(loans) == 0 {
		fmt.Fprintln(a.out, "No active loans.")
		return
	}
	for _, rec := range loans {
		fmt.Fprintln(a.out, library.FormatLoan(rec))
	}
}

func (a *app) handleAddBook() error {
	admin, err := a.mgr.AuthorizeAdmin(a.ask("Enter admin ID: "), a.prompt)
	if err != nil {
		return err
	}

	isbn := a.ask("Enter ISBN: ")
	title := a.ask("Enter title: ")
	author := a.ask("Enter author: ")
	genre := a.ask("Enter genre (e.g. TECHNOLOGY, FICTION): ")
	yearStr := a.ask("Enter year: ")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return invalidCommand("year must be a number")
	}

	added, err := a.mgr.AddBook(admin, isbn, title, author, genre, year)
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintln(a.out, "Book added successfully!")
	} else {
		fmt.Fprintf(a.out, "Book with ISBN %s already exists.\n", strings.ReplaceAll(isbn, "-", ""))
	}
	return nil
}

func (a *app) handleRemoveBook() error {
	admin, err := a.mgr.AuthorizeAdmin(a.ask("Enter admin ID: "), a.prompt)
	if err != nil {
		return err
	}
	removed, err := a.mgr.RemoveBook(admin, a.ask("Enter ISBN to remove: "))
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(a.out, "Book removed successfully.")
	} else {
		fmt.Fprintln(a.out, "Book not found or could not be removed.")
	}
	return nil
}
