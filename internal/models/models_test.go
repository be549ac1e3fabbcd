package models

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "doctor", "nurse"} {
		r, err := ParseRole(s)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", s, err)
		}
		if string(r) != s {
			t.Fatalf("expected %q, got %q", s, r)
		}
	}
	for _, s := range []string{"", "Admin", "client", "root"} {
		if _, err := ParseRole(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestPatientUpdateSetFields_OnlySupplied(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	phone := "555-0101"
	set := PatientUpdate{Phone: &phone}.SetFields(now)

	if len(set) != 2 {
		t.Fatalf("expected phone and updatedAt only, got %v", set)
	}
	if set["phone"] != phone {
		t.Errorf("expected phone %q, got %v", phone, set["phone"])
	}
	if set["updatedAt"] != now {
		t.Errorf("expected updatedAt %v, got %v", now, set["updatedAt"])
	}
}

func TestUserUpdateSetFields_RoleOptional(t *testing.T) {
	now := time.Now()
	set := UserUpdate{Name: "Ada", Email: "ada@example.com"}.SetFields(now)
	if _, ok := set["role"]; ok {
		t.Fatal("role must not be set when not supplied")
	}

	role := RoleDoctor
	set = UserUpdate{Name: "Ada", Email: "ada@example.com", Role: &role}.SetFields(now)
	if set["role"] != RoleDoctor {
		t.Fatalf("expected role doctor, got %v", set["role"])
	}
}
