package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		if !IsValidDate(s) {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidDate(s) {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-42d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"0188d0f2-7b8c-9b4a-8a2b-6b8b8b8b8b8b", // invalid version
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"AUTO", "MANUAL"}
	if !IsInSlice("AUTO", slice) {
		t.Errorf("IsInSlice(AUTO) = false, want true")
	}
	if IsInSlice("auto", slice) {
		t.Errorf("IsInSlice(auto) = true, want false")
	}
	if IsInSlice("", nil) {
		t.Errorf("IsInSlice on nil slice = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "period_start", Message: "is required"},
		{Field: "run_type", Message: "must be 'AUTO' or 'MANUAL'"},
	}

	if errs.Error() != "period_start: is required; run_type: must be 'AUTO' or 'MANUAL'" {
		t.Errorf("unexpected Error(): %q", errs.Error())
	}

	m := errs.ToMap()
	if len(m) != 2 || m["period_start"] != "is required" {
		t.Errorf("unexpected ToMap(): %v", m)
	}
}
