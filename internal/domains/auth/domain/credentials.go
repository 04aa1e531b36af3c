package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmptyName    = errors.New("name is required")
	ErrEmptyEmail   = errors.New("email is required")
	ErrInvalidEmail = errors.New("email is malformed")
)

// Credentials identify a visitor. The service accepts any well formed pair.
type Credentials struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// NewCredentials trims and validates the pair.
func NewCredentials(name, email string) (Credentials, error) {
	c := Credentials{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Validate reports the first failing field, name before email.
func (c Credentials) Validate() error {
	trimmed := Credentials{Name: strings.TrimSpace(c.Name), Email: strings.TrimSpace(c.Email)}
	err := validate().Struct(trimmed)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	switch first.Field() {
	case "name":
		return ErrEmptyName
	case "email":
		if first.Tag() == "required" {
			return ErrEmptyEmail
		}
		return ErrInvalidEmail
	}
	return err
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validatorInst = v
	})
	return validatorInst
}
