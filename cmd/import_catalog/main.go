package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"library-circulation/config"
	"library-circulation/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newImportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type importOptions struct {
	dbPath      string
	booksCSV    string
	membersCSV  string
	fresh       bool
	seedDefault bool
	resetID     string
	password    string
}

func newImportCmd() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "import_catalog",
		Short: "Build a SQLite seed catalog from CSV files",
		Long: `Books CSV columns: isbn,title,author,genre,year
Members CSV columns: id,name,role,department_or_course[,password]`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.dbPath == "" {
				opts.dbPath = cfg.CatalogPath
			}
			if opts.dbPath == "" {
				opts.dbPath = "library.db"
			}
			if opts.resetID != "" && opts.password == "" {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Enter new password for %s: ", opts.resetID)
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				fmt.Fprintln(out)
				opts.password = strings.TrimSpace(string(bytePassword))
			}
			return runImport(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "catalog to write (default: LIBRARY_CATALOG or library.db)")
	cmd.Flags().StringVar(&opts.booksCSV, "books", "", "books CSV file")
	cmd.Flags().StringVar(&opts.membersCSV, "members", "", "members CSV file")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "remove an existing catalog first")
	cmd.Flags().BoolVar(&opts.seedDefault, "seed", false, "also import the built-in books and members")
	cmd.Flags().StringVar(&opts.resetID, "reset-password", "", "member ID whose password to set after importing")
	cmd.Flags().StringVar(&opts.password, "password", "", "new password for --reset-password (prompted when empty)")
	return cmd
}

func runImport(out io.Writer, opts importOptions) error {
	if opts.fresh {
		fmt.Fprintln(out, "Cleaning up existing database files...")
		for _, file := range []string{opts.dbPath, opts.dbPath + "-shm", opts.dbPath + "-wal"} {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(out, "Warning: Could not remove %s: %v\n", file, err)
			}
		}
	}

	db, err := library.NewDatabase(opts.dbPath, nil)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	var books []*library.Book
	var members []*library.Member
	if opts.seedDefault {
		books = append(books, library.SeedBooks()...)
		members = append(members, library.SeedMembers()...)
	}
	if opts.booksCSV != "" {
		parsed, err := readBooks(opts.booksCSV)
		if err != nil {
			return err
		}
		books = append(books, parsed...)
	}
	if opts.membersCSV != "" {
		parsed, err := readMembers(opts.membersCSV)
		if err != nil {
			return err
		}
		members = append(members, parsed...)
	}
	if len(books) == 0 && len(members) == 0 && opts.resetID == "" {
		return errors.New("nothing to import: pass --books, --members, --seed or --reset-password")
	}

	var added, skipped int
	for _, b := range books {
		ok, err := db.AddBook(b)
		if err != nil {
			return err
		}
		if ok {
			added++
			fmt.Fprintf(out, "Imported book: %s (ISBN %s)\n", b.Title, b.ISBN)
		} else {
			skipped++
			fmt.Fprintf(out, "Skipped duplicate ISBN %s\n", b.ISBN)
		}
	}
	for _, m := range members {
		ok, err := db.AddMember(m)
		if err != nil {
			return err
		}
		if ok {
			added++
			fmt.Fprintf(out, "Imported member: %s\n", m)
		} else {
			skipped++
			fmt.Fprintf(out, "Skipped duplicate member ID %s\n", m.ID)
		}
	}

	fmt.Fprintf(out, "\nImport complete! Added: %d, skipped: %d\n", added, skipped)

	if opts.resetID != "" {
		if err := db.ResetMemberPassword(opts.resetID, opts.password); err != nil {
			return fmt.Errorf("reset password for %s: %w", opts.resetID, err)
		}
		fmt.Fprintf(out, "Password successfully reset for member %s\n", opts.resetID)
	}
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	// Optional header row.
	if len(records) > 0 && len(records[0]) > 0 && isHeader(records[0][0]) {
		records = records[1:]
	}
	return records, nil
}

func isHeader(first string) bool {
	first = strings.ToLower(strings.TrimSpace(first))
	return first == "isbn" || first == "id"
}

func readBooks(path string) ([]*library.Book, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	books := make([]*library.Book, 0, len(records))
	for i, rec := range records {
		if len(rec) < 5 {
			return nil, fmt.Errorf("%s line %d: want 5 columns, got %d", path, i+1, len(rec))
		}
		b, err := parseBook(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		books = append(books, b)
	}
	return books, nil
}

func parseBook(rec []string) (*library.Book, error) {
	isbn, err := library.NewISBN(rec[0])
	if err != nil {
		return nil, err
	}
	genre, err := library.ParseGenre(rec[3])
	if err != nil {
		return nil, err
	}
	year, err := strconv.Atoi(strings.TrimSpace(rec[4]))
	if err != nil {
		return nil, fmt.Errorf("year %q: %w", rec[4], err)
	}
	return library.NewBook(isbn, rec[1], rec[2], genre, year)
}

func readMembers(path string) ([]*library.Member, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	members := make([]*library.Member, 0, len(records))
	for i, rec := range records {
		if len(rec) < 3 {
			return nil, fmt.Errorf("%s line %d: want at least 3 columns, got %d", path, i+1, len(rec))
		}
		m, err := parseMember(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func parseMember(rec []string) (*library.Member, error) {
	role, err := library.ParseRole(rec[2])
	if err != nil {
		return nil, err
	}
	extra := column(rec, 3)

	var m *library.Member
	switch role {
	case library.RoleAdmin:
		m, err = library.NewAdmin(rec[0], rec[1])
	case library.RoleStaff:
		m, err = library.NewStaff(rec[0], rec[1], extra)
	case library.RoleStudent:
		m, err = library.NewStudent(rec[0], rec[1], extra)
	}
	if err != nil {
		return nil, err
	}
	if password := column(rec, 4); password != "" {
		if m.PasswordHash, err = library.HashPassword(password); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func column(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
