package validate

import (
	"slices"
	"strings"

	"github.com/discoveruz/edge/internal/edge/domain"
)

// ContactForm is the contact endpoint payload.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate normalizes the form in place (trim, lowercase email) and
// returns the first violated constraint per field.
func (f *ContactForm) Validate() FieldErrors {
	fe := FieldErrors{}

	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Message = strings.TrimSpace(f.Message)

	switch {
	case len(f.Name) < 2:
		fe.set("name", "Name must be at least 2 characters")
	case len(f.Name) > 100:
		fe.set("name", "Name must be less than 100 characters")
	case !noXSS(f.Name):
		fe.set("name", "Invalid characters detected")
	case !noHTMLTags(f.Name):
		fe.set("name", "HTML tags are not allowed")
	}

	checkEmail(fe, "email", f.Email)

	if !slices.Contains(domain.ContactSubjects, f.Subject) {
		fe.set("subject", "Please select a valid subject")
	}

	switch {
	case len(f.Message) < 10:
		fe.set("message", "Message must be at least 10 characters")
	case len(f.Message) > 2000:
		fe.set("message", "Message must be less than 2000 characters")
	case !noXSS(f.Message):
		fe.set("message", "Invalid characters detected")
	}

	return fe
}

// NewsletterForm is the newsletter signup payload.
type NewsletterForm struct {
	Email string `json:"email"`
}

func (f *NewsletterForm) Validate() FieldErrors {
	fe := FieldErrors{}
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	checkEmail(fe, "email", f.Email)
	return fe
}
