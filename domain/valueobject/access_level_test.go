package valueobject

import (
	"errors"
	"testing"
)

func TestAccessLevel(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		if !AccessRead.Valid() || !AccessReadWrite.Valid() {
			t.Error("R and RW are the valid levels")
		}
		for _, bad := range []AccessLevel{"", "r", "rw", "W", "RWX", "READ"} {
			if bad.Valid() {
				t.Errorf("level %q must not be valid", bad)
			}
		}
	})

	t.Run("In", func(t *testing.T) {
		if !AccessRead.In(ReadLevels()...) {
			t.Error("R belongs to the read set")
		}
		if !AccessReadWrite.In(ReadLevels()...) {
			t.Error("RW belongs to the read set")
		}
		if AccessRead.In(AccessReadWrite) {
			t.Error("R is not RW")
		}
		if AccessRead.In() {
			t.Error("nothing belongs to the empty set")
		}
	})
}

func TestNewAccessEntry(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		entry, err := NewAccessEntry("User Profile", AccessReadWrite)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Page != "User Profile" || entry.Level != AccessReadWrite {
			t.Errorf("unexpected entry: %+v", entry)
		}
	})

	t.Run("BlankPage", func(t *testing.T) {
		if _, err := NewAccessEntry("   ", AccessRead); err == nil {
			t.Error("blank page name must be rejected")
		}
	})

	t.Run("BadLevel", func(t *testing.T) {
		_, err := NewAccessEntry("Dashboard", "RWX")
		if !errors.Is(err, ErrInvalidAccessLevel) {
			t.Errorf("expected ErrInvalidAccessLevel, got %v", err)
		}
	})
}

func TestNormalizePageField(t *testing.T) {
	cases := map[string]string{
		"User Profile":     "user_profile",
		"user profile":     "user_profile",
		"Dashboard":        "dashboard",
		"Multi Word Page":  "multi_word_page",
		"ALREADY_SNAKEish": "already_snakeish",
	}
	for in, want := range cases {
		if got := NormalizePageField(in); got != want {
			t.Errorf("NormalizePageField(%q) = %q, want %q", in, got, want)
		}
	}

	entry := AccessEntry{Page: "User Profile", Level: AccessRead}
	if entry.FieldName() != "user_profile" {
		t.Errorf("FieldName() = %q", entry.FieldName())
	}
}
