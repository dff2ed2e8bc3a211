package library

// SeedBooks is the built-in starter catalog.
func SeedBooks() []*Book {
	return []*Book{
		seedBook("9781569319307", "Dragon Ball", "Akira Toriyama", GenreFiction, 1985),
		seedBook("9780134685991", "Effective Java", "Joshua Bloch", GenreTechnology, 2018),
		seedBook("9780596009205", "Head First Design Patterns", "Eric Freeman", GenreTechnology, 2004),
		seedBook("9780262033848", "Introduction to Algorithms", "Cormen et al.", GenreTechnology, 2009),
		seedBook("9780143127741", "Thinking, Fast and Slow", "Daniel Kahneman", GenrePsychology, 2011),
		seedBook("9780307277785", "The Lean Startup", "Eric Ries", GenreBusiness, 2011),
		seedBook("9780553380163", "The Selfish Gene", "Richard Dawkins", GenreScience, 2006),
		seedBook("9780451524935", "1984", "George Orwell", GenreFiction, 1949),
	}
}

// SeedMembers is the built-in roster: one admin, one student, one staff member.
func SeedMembers() []*Member {
	return []*Member{
		{ID: "A001", Name: "Admin Super", Role: RoleAdmin},
		{ID: "S001", Name: "Jane Student", Role: RoleStudent, Course: "CS"},
		{ID: "T001", Name: "Joe Staff", Role: RoleStaff, Department: "Library"},
	}
}

// DefaultLibrary returns a Library holding the seed catalog and roster with
// an empty ledger.
func DefaultLibrary() *Library {
	books := SeedBooks()
	items := make([]Item, 0, len(books))
	for _, b := range books {
		items = append(items, b)
	}
	return New(items, nil, SeedMembers())
}

func seedBook(isbn, title, author string, genre Genre, year int) *Book {
	b, err := NewBook(MustISBN(isbn), title, author, genre, year)
	if err != nil {
		panic(err)
	}
	return b
}
