package validate

import "strings"

// SignupForm is the account creation payload.
type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Terms           bool   `json:"terms"`
}

func (f *SignupForm) Validate() FieldErrors {
	fe := FieldErrors{}

	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))

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
	checkPassword(fe, "password", f.Password)

	if f.ConfirmPassword != f.Password {
		fe.set("confirmPassword", "Passwords do not match")
	}

	if !f.Terms {
		fe.set("terms", "You must accept the terms and conditions")
	}

	return fe
}

// LoginForm is the login payload. Deliberately loose: anything beyond
// shape goes through the credential check, which answers with a generic
// message either way.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (f *LoginForm) Validate() FieldErrors {
	fe := FieldErrors{}

	f.Email = strings.ToLower(strings.TrimSpace(f.Email))

	checkEmail(fe, "email", f.Email)

	if f.Password == "" {
		fe.set("password", "Password is required")
	}

	return fe
}

// PasswordResetRequestForm asks for a reset link.
type PasswordResetRequestForm struct {
	Email string `json:"email"`
}

func (f *PasswordResetRequestForm) Validate() FieldErrors {
	fe := FieldErrors{}
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	checkEmail(fe, "email", f.Email)
	return fe
}

// PasswordResetConfirmForm redeems a reset token with a new password.
type PasswordResetConfirmForm struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (f *PasswordResetConfirmForm) Validate() FieldErrors {
	fe := FieldErrors{}

	if strings.TrimSpace(f.Token) == "" {
		fe.set("token", "Reset token is required")
	}

	checkPassword(fe, "password", f.Password)

	if f.ConfirmPassword != f.Password {
		fe.set("confirmPassword", "Passwords do not match")
	}

	return fe
}
