package users

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MinPasswordLength = 8

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

type LoginForm struct {
	Username string
	Password string
	Next     string
	Error    string
}

func NewLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
		Next:     values.Get("next"),
	}
}

type SignupForm struct {
	Username  string
	Password1 string
	Password2 string
	Errors    map[string]string
}

func NewSignupForm(values url.Values) *SignupForm {
	return &SignupForm{
		Username:  strings.TrimSpace(values.Get("username")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    map[string]string{},
	}
}

func (f *SignupForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}

	switch {
	case f.Username == "":
		f.Errors["username"] = "This field is required."
	case utf8.RuneCountInString(f.Username) > MaxUsernameLength:
		f.Errors["username"] = "Ensure this value has at most 150 characters."
	case !usernameRegex.MatchString(f.Username):
		f.Errors["username"] = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}

	if f.Password1 == "" {
		f.Errors["password1"] = "This field is required."
	} else if utf8.RuneCountInString(f.Password1) < MinPasswordLength {
		f.Errors["password1"] = "This password is too short. It must contain at least 8 characters."
	}

	if f.Password2 != f.Password1 {
		f.Errors["password2"] = "The two password fields didn't match."
	}

	return len(f.Errors) == 0
}

// SafeNext returns next if it is a local absolute path, otherwise an empty string.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
