package validator

import "testing"

type signup struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Priority *string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate  *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidateStruct(t *testing.T) {
	bad := "Urgent"
	day := "15/01/2025"
	errs := ValidateStruct(&signup{Email: "nope", Password: "123", Priority: &bad, DueDate: &day})

	want := map[string]string{
		"name":     "The field 'name' is required.",
		"email":    "The field 'email' must be a valid email address.",
		"password": "The field 'password' must be at least 6 characters long.",
		"priority": "The field 'priority' must be one of [Low, Medium, High].",
		"due_date": "The field 'due_date' must match the format YYYY-MM-DD.",
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs)
	}
	for k, v := range want {
		if errs[k] != v {
			t.Errorf("errs[%q] = %q, want %q", k, errs[k], v)
		}
	}
}

func TestValidateStructOK(t *testing.T) {
	errs := ValidateStruct(&signup{Name: "Ann", Email: "ann@example.com", Password: "secret"})
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
