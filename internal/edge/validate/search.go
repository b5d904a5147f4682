package validate

import (
	"strconv"
	"strings"
)

const (
	minGuests = 1
	maxGuests = 50
)

// SearchForm is the stay-search payload. Guests arrives as a string from
// the query form; it must parse as an integer inside [1, 50] — out of
// range or non-numeric values fail validation rather than being clamped.
type SearchForm struct {
	Query  string `json:"query"`
	Dates  string `json:"dates"`
	Guests string `json:"guests"`

	// GuestCount is populated by Validate when Guests is present and valid.
	GuestCount int `json:"-"`
}

func (f *SearchForm) Validate() FieldErrors {
	fe := FieldErrors{}

	f.Query = strings.TrimSpace(f.Query)

	switch {
	case len(f.Query) > 200:
		fe.set("query", "Search query must be less than 200 characters")
	case !noXSS(f.Query):
		fe.set("query", "Invalid search query")
	case !noHTMLTags(f.Query):
		fe.set("query", "HTML tags are not allowed in search")
	}

	if f.Dates != "" {
		switch {
		case len(f.Dates) > 50:
			fe.set("dates", "Date string too long")
		case !dateCharset.MatchString(f.Dates):
			fe.set("dates", "Invalid date format")
		}
	}

	if f.Guests != "" {
		if !digitsOnly.MatchString(f.Guests) {
			fe.set("guests", "Guests must be a number")
		} else {
			n, err := strconv.Atoi(f.Guests)
			if err != nil || n < minGuests || n > maxGuests {
				fe.set("guests", "Guests must be between 1 and 50")
			} else {
				f.GuestCount = n
			}
		}
	}

	return fe
}
