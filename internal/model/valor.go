package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrValorInvalido is returned when a monetary string cannot be parsed.
var ErrValorInvalido = errors.New("valor monetário inválido")

// Valor is a monetary amount in centavos. Storing cents as an integer
// keeps sums exact; the total of a sheet never depends on the order the
// rows are added in.
type Valor int64

// maxCentavos caps parsed amounts to the range where float64 still
// represents every centavo exactly (2^53). Anything larger would have
// silently lost precision during parsing.
const maxCentavos = float64(int64(1) << 53)

// ParseValor reads a decimal string using either '.' or ',' as the
// decimal separator. Digits past two decimal places are rounded half
// away from zero.
func ParseValor(s string) (Valor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrValorInvalido
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrValorInvalido
	}
	cents := math.Round(f * 100)
	if math.IsNaN(cents) || math.IsInf(cents, 0) || math.Abs(cents) > maxCentavos {
		return 0, ErrValorInvalido
	}
	return Valor(cents), nil
}

// String renders the amount with two decimal places, e.g. "-12.50".
func (v Valor) String() string {
	sign := ""
	n := int64(v)
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

// MarshalJSON emits the amount as a plain JSON number.
func (v Valor) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string; the
// mobile client sends both. null becomes zero.
func (v *Valor) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return ErrValorInvalido
		}
		s = inner
	}
	parsed, err := ParseValor(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Scan reads a DECIMAL column, which the MySQL driver hands over as
// bytes unless it decided on a numeric type.
func (v *Valor) Scan(src interface{}) error {
	switch t := src.(type) {
	case nil:
		*v = 0
		return nil
	case []byte:
		parsed, err := ParseValor(string(t))
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case string:
		parsed, err := ParseValor(t)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case int64:
		*v = Valor(t * 100)
		return nil
	case float64:
		*v = Valor(math.Round(t * 100))
		return nil
	default:
		return fmt.Errorf("valor: tipo de coluna não suportado %T", src)
	}
}

// Value writes the amount back as a decimal string for DECIMAL columns.
func (v Valor) Value() (driver.Value, error) {
	return v.String(), nil
}
