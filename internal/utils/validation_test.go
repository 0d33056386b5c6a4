package utils

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type registerShape struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=8"`
}

func TestBindingErrorsPerField(t *testing.T) {
	v := validator.New()
	err := v.Struct(registerShape{Email: "not-an-email", Username: "jd", Password: ""})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	fields := BindingErrors(err)
	if len(fields) != 3 {
		t.Fatalf("got %d field errors, want 3: %v", len(fields), fields)
	}

	byField := make(map[string]FieldError)
	for _, fe := range fields {
		byField[fe.Field] = fe
	}
	if byField["email"].Type != "email" {
		t.Errorf("email error = %+v", byField["email"])
	}
	if byField["username"].Type != "min" || byField["username"].Message != "must be at least 3 characters" {
		t.Errorf("username error = %+v", byField["username"])
	}
	if byField["password"].Type != "required" {
		t.Errorf("password error = %+v", byField["password"])
	}
}

func TestBindingErrorsNonValidator(t *testing.T) {
	fields := BindingErrors(errors.New("unexpected EOF"))
	if len(fields) != 1 {
		t.Fatalf("got %d field errors, want 1", len(fields))
	}
	if fields[0].Field != "body" || fields[0].Type != "invalid" {
		t.Errorf("body-level error = %+v", fields[0])
	}
}
