/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"bitchain-ledger-go/internal/store"

	"github.com/go-playground/validator/v10"
)

var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their payload name rather than the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// validateRequest checks req and converts the first failure into a
// store.FieldError naming the payload field.
func (s *LedgerService) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	fe := validationErrors[0]
	if fe.Tag() == "required" {
		return store.MissingField(fe.Field())
	}
	return store.InvalidField(fe.Field(), getErrorMsg(fe))
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "email":
		return "enter a valid email address"
	case "min":
		return "ensure this field has at least " + err.Param() + " characters"
	case "max":
		return "ensure this field has no more than " + err.Param() + " characters"
	case "len":
		return "ensure this field has exactly " + err.Param() + " characters"
	case "gt":
		return "ensure this value is greater than " + err.Param()
	case "datetime":
		return "enter a valid date in YYYY-MM-DD format"
	case "digits":
		return "this field may only contain digits"
	default:
		return "invalid value"
	}
}

func validateSymbol(field, symbol string) error {
	if symbol == "" {
		return store.MissingField(field)
	}
	if utf8.RuneCountInString(symbol) > maxSymbolLength {
		return store.InvalidField(field, "ensure this field has no more than 10 characters")
	}
	return nil
}
