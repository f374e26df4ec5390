// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

// StructValidator validates structs by their `validate` tags.
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator returns a [Validator] that reports failed fields by
// their JSON names.
func NewStructValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &StructValidator{v: v}
}

func (s *StructValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	log := logger.FromContext(ctx)

	if !isStruct(obj) {
		return ErrUnsupportedType
	}

	var err error
	if len(fields) == 0 {
		err = s.v.StructCtx(ctx, obj)
	} else {
		err = s.v.StructPartialCtx(ctx, obj, s.qualify(obj, fields)...)
	}
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		log.Err(err).Str("func", "*StructValidator.Validate").Msg("validator failed")
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		out.Fields[fe.Field()] = fieldError(fe)
	}

	return out
}

// qualify maps JSON field names to the struct field names StructPartial
// expects.
func (s *StructValidator) qualify(obj any, fields []string) []string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make([]string, 0, len(fields))
	for _, name := range fields {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if jsonFieldName(f) == name {
				out = append(out, f.Name)
				break
			}
		}
	}

	return out
}

func isStruct(obj any) bool {
	if obj == nil {
		return false
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}

	return v.Kind() == reflect.Struct
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
