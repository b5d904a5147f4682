package http

import (
	"net/http"

	"github.com/discoveruz/edge/internal/edge/sanitize"
	"github.com/discoveruz/edge/internal/edge/validate"
	"github.com/discoveruz/edge/pkg/httpx"
)

// searchResponse echoes the normalized stay-search parameters. The page
// layer treats these as the canonical values, not the raw query string.
type searchResponse struct {
	Success bool   `json:"success"`
	Query   string `json:"query"`
	Dates   string `json:"dates,omitempty"`
	Guests  int    `json:"guests,omitempty"`
}

// SearchHandler validates and normalizes stay-search input at the edge
// before the page layer runs the actual search.
func SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		form := validate.SearchForm{
			Query:  q.Get("query"),
			Dates:  q.Get("dates"),
			Guests: q.Get("guests"),
		}

		if fields := form.Validate(); len(fields) > 0 {
			httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
				Error:  "Validation failed",
				Fields: fields,
			})
			return
		}

		httpx.WriteJSON(w, http.StatusOK, searchResponse{
			Success: true,
			Query:   sanitize.Sanitize(form.Query),
			Dates:   form.Dates,
			Guests:  form.GuestCount,
		})
	}
}
