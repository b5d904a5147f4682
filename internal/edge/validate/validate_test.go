package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContactFormValidate(t *testing.T) {
	t.Parallel()

	valid := func() ContactForm {
		return ContactForm{
			Name:    "Aziz Karimov",
			Email:   "aziz@example.com",
			Subject: "booking",
			Message: "I would like to book a tour through the Fergana valley.",
		}
	}

	t.Run("valid form passes", func(t *testing.T) {
		f := valid()
		require.True(t, f.Validate().Ok())
	})

	t.Run("normalizes in place", func(t *testing.T) {
		f := valid()
		f.Name = "  Aziz Karimov  "
		f.Email = "  AZIZ@Example.COM "
		require.True(t, f.Validate().Ok())
		require.Equal(t, "Aziz Karimov", f.Name)
		require.Equal(t, "aziz@example.com", f.Email)
	})

	t.Run("short name", func(t *testing.T) {
		f := valid()
		f.Name = "A"
		fe := f.Validate()
		require.Equal(t, "Name must be at least 2 characters", fe["name"])
	})

	t.Run("first failure per field wins", func(t *testing.T) {
		// Too long AND carries a tag; only the length message surfaces.
		f := valid()
		f.Name = "<b>" + strings.Repeat("a", 120) + "</b>"
		fe := f.Validate()
		require.Equal(t, "Name must be less than 100 characters", fe["name"])
	})

	t.Run("html tags in name rejected", func(t *testing.T) {
		f := valid()
		f.Name = "<b>Aziz</b>"
		fe := f.Validate()
		require.Equal(t, "HTML tags are not allowed", fe["name"])
	})

	t.Run("invalid subject", func(t *testing.T) {
		f := valid()
		f.Subject = "spam"
		fe := f.Validate()
		require.Equal(t, "Please select a valid subject", fe["subject"])
	})

	t.Run("short message", func(t *testing.T) {
		f := valid()
		f.Message = "hi"
		fe := f.Validate()
		require.Equal(t, "Message must be at least 10 characters", fe["message"])
	})

	t.Run("oversized message", func(t *testing.T) {
		f := valid()
		f.Message = strings.Repeat("a", 2001)
		fe := f.Validate()
		require.Equal(t, "Message must be less than 2000 characters", fe["message"])
	})

	t.Run("xss payload in message", func(t *testing.T) {
		f := valid()
		f.Message = "please visit javascript:alert(1) for details"
		fe := f.Validate()
		require.Equal(t, "Invalid characters detected", fe["message"])
	})

	t.Run("collects all failing fields", func(t *testing.T) {
		f := ContactForm{}
		fe := f.Validate()
		require.Len(t, fe, 4)
	})
}

func TestSignupFormValidate(t *testing.T) {
	t.Parallel()

	valid := func() SignupForm {
		return SignupForm{
			Name:            "Aziz Karimov",
			Email:           "aziz@example.com",
			Password:        "Str0ng!pass",
			ConfirmPassword: "Str0ng!pass",
			Terms:           true,
		}
	}

	t.Run("valid form passes", func(t *testing.T) {
		f := valid()
		require.True(t, f.Validate().Ok())
	})

	t.Run("password policy", func(t *testing.T) {
		cases := map[string]string{
			"Sh0r!":                    "Password must be at least 8 characters",
			strings.Repeat("Aa1!", 40): "Password must be less than 128 characters",
			"nouppercase1!":            "Password must contain an uppercase letter",
			"NOLOWERCASE1!":            "Password must contain a lowercase letter",
			"NoDigitsHere!":            "Password must contain a digit",
			"NoSymbolsHere1":           "Password must contain a symbol",
		}
		for password, want := range cases {
			f := valid()
			f.Password = password
			f.ConfirmPassword = password
			fe := f.Validate()
			require.Equal(t, want, fe["password"], "password %q", password)
		}
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		f := valid()
		f.ConfirmPassword = "Different1!"
		fe := f.Validate()
		require.Equal(t, "Passwords do not match", fe["confirmPassword"])
	})

	t.Run("terms must be accepted", func(t *testing.T) {
		f := valid()
		f.Terms = false
		fe := f.Validate()
		require.Equal(t, "You must accept the terms and conditions", fe["terms"])
	})
}

func TestLoginFormValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid form passes", func(t *testing.T) {
		f := LoginForm{Email: "aziz@example.com", Password: "whatever"}
		require.True(t, f.Validate().Ok())
	})

	t.Run("missing password", func(t *testing.T) {
		f := LoginForm{Email: "aziz@example.com"}
		fe := f.Validate()
		require.Equal(t, "Password is required", fe["password"])
	})

	t.Run("bad email", func(t *testing.T) {
		f := LoginForm{Email: "not-an-email", Password: "x"}
		require.False(t, f.Validate().Ok())
	})
}

func TestSearchFormValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid guests parses", func(t *testing.T) {
		f := SearchForm{Guests: "4"}
		require.True(t, f.Validate().Ok())
		require.Equal(t, 4, f.GuestCount)
	})

	t.Run("non-numeric guests fails", func(t *testing.T) {
		f := SearchForm{Guests: "many"}
		require.False(t, f.Validate().Ok())
	})

	t.Run("out of range fails instead of clamping", func(t *testing.T) {
		for _, g := range []string{"0", "51", "-3"} {
			f := SearchForm{Guests: g}
			require.False(t, f.Validate().Ok(), "guests %q", g)
		}
	})
}
