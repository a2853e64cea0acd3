package controls

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Defaults applied when a parameterised rule has no value.
const (
	DefaultMinLength = 0
	DefaultMaxLength = 100
	DefaultMin       = 0
	DefaultMax       = 100
)

// Required fails on nil, blank strings and empty collections.
func Required() ValidatorFunc {
	return func(value any) *ValidationError {
		if isEmpty(value) {
			return &ValidationError{Kind: string(model.ValidatorRequired), Message: "value is required"}
		}
		return nil
	}
}

// MinLength fails when a string or collection is shorter than n. Empty values
// pass.
func MinLength(n int) ValidatorFunc {
	return func(value any) *ValidationError {
		size, ok := length(value)
		if !ok || size == 0 || size >= n {
			return nil
		}
		return &ValidationError{
			Kind:    string(model.ValidatorMinLength),
			Message: fmt.Sprintf("must be at least %d characters", n),
			Limit:   float64(n),
			Actual:  float64(size),
		}
	}
}

// MaxLength fails when a string or collection is longer than n.
func MaxLength(n int) ValidatorFunc {
	return func(value any) *ValidationError {
		size, ok := length(value)
		if !ok || size <= n {
			return nil
		}
		return &ValidationError{
			Kind:    string(model.ValidatorMaxLength),
			Message: fmt.Sprintf("must be at most %d characters", n),
			Limit:   float64(n),
			Actual:  float64(size),
		}
	}
}

// Min fails when a numeric value is below limit. Empty and non-numeric values
// pass.
func Min(limit float64) ValidatorFunc {
	return func(value any) *ValidationError {
		n, ok := number(value)
		if !ok || n >= limit {
			return nil
		}
		return &ValidationError{
			Kind:    string(model.ValidatorMin),
			Message: "must be at least " + formatNumber(limit),
			Limit:   limit,
			Actual:  n,
		}
	}
}

// Max fails when a numeric value is above limit.
func Max(limit float64) ValidatorFunc {
	return func(value any) *ValidationError {
		n, ok := number(value)
		if !ok || n <= limit {
			return nil
		}
		return &ValidationError{
			Kind:    string(model.ValidatorMax),
			Message: "must be at most " + formatNumber(limit),
			Limit:   limit,
			Actual:  n,
		}
	}
}

// validatorTable maps rule kinds to validation functions.
var validatorTable = map[model.ValidatorKind]func(def model.ValidatorDefinition) ValidatorFunc{
	model.ValidatorRequired: func(model.ValidatorDefinition) ValidatorFunc {
		return Required()
	},
	model.ValidatorMinLength: func(def model.ValidatorDefinition) ValidatorFunc {
		return MinLength(int(def.NumberOr(DefaultMinLength)))
	},
	model.ValidatorMaxLength: func(def model.ValidatorDefinition) ValidatorFunc {
		return MaxLength(int(def.NumberOr(DefaultMaxLength)))
	},
	model.ValidatorMin: func(def model.ValidatorDefinition) ValidatorFunc {
		return Min(def.NumberOr(DefaultMin))
	},
	model.ValidatorMax: func(def model.ValidatorDefinition) ValidatorFunc {
		return Max(def.NumberOr(DefaultMax))
	},
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func length(value any) (int, bool) {
	if value == nil {
		return 0, false
	}
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		return n, err == nil
	case fmt.Stringer:
		n, err := strconv.ParseFloat(v.String(), 64)
		return n, err == nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
