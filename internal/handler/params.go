package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexNumber accepts a JSON number or a numeric string, as browsers send
// either depending on how the form was built.  It also binds from form
// and query values.
type flexNumber struct {
	raw string
	set bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = flexNumber{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.UnmarshalParam(s)
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected number, got %s", b)
	}
	*n = flexNumber{raw: num.String(), set: true}
	return nil
}

// UnmarshalParam implements echo.BindUnmarshaler.
func (n *flexNumber) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = flexNumber{}
		return nil
	}
	// ParseFloat also accepts "NaN" and "Inf", which JSON cannot encode back.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected number, got %q", s)
	}
	*n = flexNumber{raw: s, set: true}
	return nil
}

// Int returns the value as an integer; fractional values are rejected.
func (n flexNumber) Int() (int64, bool) {
	if !n.set {
		return 0, false
	}
	if i, err := strconv.ParseInt(n.raw, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int64(f), true
}

// Float returns the value, 0 when unset.
func (n flexNumber) Float() (float64, bool) {
	if !n.set {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	return f, err == nil
}
