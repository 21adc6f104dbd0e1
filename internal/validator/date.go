package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

// DateValidator checks that a string parses under a configurable date
// format and optionally falls within a min/max bound. Format strings
// use the YYYY/MM/DD token convention from validator/date.rs, converted
// to a Go reference-time layout.
type DateValidator struct {
	Layout   string
	Min, Max *time.Time
}

func newDateValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	format, ok := argString(args, "format", 0)
	if !ok {
		format = "YYYY-MM-DD"
	}
	layout := convertDateFormat(format)
	v := &DateValidator{Layout: layout}
	if s, ok := argString(args, "min", -1); ok {
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid min date %q: %v", s, err)
		}
		v.Min = &t
	}
	if s, ok := argString(args, "max", -1); ok {
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid max date %q: %v", s, err)
		}
		v.Max = &t
	}
	return v, nil
}

// convertDateFormat translates the validator/date.rs token vocabulary
// (YYYY, YY, MM, DD, HH, nn, ss) into Go's reference-time layout. Longer
// tokens are replaced first so "YYYY" isn't partially consumed by "YY".
func convertDateFormat(f string) string {
	r := strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MM", "01",
		"DD", "02",
		"HH", "15",
		"nn", "04",
		"ss", "05",
	)
	return r.Replace(f)
}

func (v *DateValidator) Name() string { return "date" }

func (v *DateValidator) Validate(val bytecode.Value) error {
	if !val.IsString() {
		return fmt.Errorf("expected a date string, got %s", val.TypeName())
	}
	t, err := time.Parse(v.Layout, val.AsString())
	if err != nil {
		return fmt.Errorf("does not match date format %q", v.Layout)
	}
	if v.Min != nil && t.Before(*v.Min) {
		return fmt.Errorf("date must not be before %s", v.Min.Format(v.Layout))
	}
	if v.Max != nil && t.After(*v.Max) {
		return fmt.Errorf("date must not be after %s", v.Max.Format(v.Layout))
	}
	return nil
}
