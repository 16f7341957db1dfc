package handlers

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{
		"writer@example.com",
		"a.b+tag@sub.domain.org",
		"x@y.co",
	}
	for _, email := range valid {
		if !validEmail(email) {
			t.Errorf("validEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{
		"",
		"not-an-email",
		"@example.com",
		"user@",
		"user@domain",
		"user name@example.com",
	}
	for _, email := range invalid {
		if validEmail(email) {
			t.Errorf("validEmail(%q) = true, want false", email)
		}
	}
}
