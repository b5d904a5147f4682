package domain

// ContactSubject enumerates the allowed contact form categories.
var ContactSubjects = []string{"general", "booking", "partnership", "support", "other"}

// ContactMessage is a validated, sanitized contact form submission ready
// to be forwarded to the notification mailbox.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}
