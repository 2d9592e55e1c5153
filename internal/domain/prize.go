// Package domain holds the core types shared across the service.
package domain

// Laureate is a single person (or organization) named on a prize.
// Surname is empty for organizations.
type Laureate struct {
	ID         string `json:"id"`
	Firstname  string `json:"firstname"`
	Surname    string `json:"surname,omitempty"`
	Motivation string `json:"motivation"`
	Share      string `json:"share"`
}

// Prize is one award record: a year/category pair with zero or more
// laureates. Laureates is empty when no award was given that year.
type Prize struct {
	Year      int        `json:"year"`
	Category  string     `json:"category"`
	Laureates []Laureate `json:"laureates"`
}
