package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@example.io",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@localhost",
		"user @example.com",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	if !ValidateRequired("x") {
		t.Error("non-blank value should pass")
	}
	if ValidateRequired("") || ValidateRequired("   ") {
		t.Error("blank values should fail")
	}
}
