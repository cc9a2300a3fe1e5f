// Package convert provides number coercion for loosely typed JSON values.
package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNotNumeric = errors.New("value is not numeric")
	ErrNonFinite  = errors.New("value is not finite")
)

// StrictNumber accepts JSON numbers and numeric strings. Anything else,
// including NaN and infinities, is an error.
func StrictNumber(r gjson.Result) (float64, error) {
	switch r.Type {
	case gjson.Number:
		return finite(r.Num, r.Raw)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return 0, fmt.Errorf("%w: empty string", ErrNotNumeric)
		}
		if isSpecialLiteral(s) {
			return 0, fmt.Errorf("%w: %q", ErrNonFinite, s)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
		}
		return finite(f, s)
	default:
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, describe(r))
	}
}

// LooseNumber follows unary-plus semantics from the browser: blank strings,
// null and false give 0, true gives 1, anything unparsable gives NaN.
func LooseNumber(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Null:
		return 0
	case gjson.False:
		return 0
	case gjson.True:
		return 1
	case gjson.Number:
		return r.Num
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		if isSpecialLiteral(s) {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func finite(f float64, raw string) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNonFinite, raw)
	}
	return f, nil
}

// isSpecialLiteral catches the nan/inf spellings strconv accepts.
func isSpecialLiteral(s string) bool {
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	return lower == "nan" || lower == "inf" || lower == "infinity"
}

func describe(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "boolean " + r.Raw
	case gjson.JSON:
		if r.IsArray() {
			return "array"
		}
		return "object"
	default:
		return r.Raw
	}
}
