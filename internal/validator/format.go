package validator

import (
	"fmt"
	"regexp"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

// formatPatterns holds the subset of validator/format.rs's FormatValidator
// kinds expressible as a single regular expression; "date"/"datetime"
// are handled by delegating to DateValidator instead, since those need
// real calendar parsing rather than shape-matching.
var formatPatterns = map[string]string{
	"email": `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
	"url":   `^[a-zA-Z][a-zA-Z0-9+.-]*://\S+$`,
	"uuid":  `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`,
	"ipv4":  `^(25[0-5]|2[0-4]\d|1?\d?\d)(\.(25[0-5]|2[0-4]\d|1?\d?\d)){3}$`,
	"time":  `^\d{2}:\d{2}(:\d{2})?$`,
	"month": `^\d{4}-(0[1-9]|1[0-2])$`,
	"color": `^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`,
}

// FormatValidator checks that a string matches one of a fixed set of
// well-known shapes. Grounded on validator/format.rs's FormatValidator;
// trimmed to the formats expressible without the Rust original's
// nested ISO-week/USCC-checksum helpers (week/ipv6/uscc), which have no
// analogous requirement in this spec.
type FormatValidator struct {
	Kind string
	re   *regexp.Regexp
}

func newFormatValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	kind, ok := argString(args, "type", 0)
	if !ok {
		return nil, fmt.Errorf("@format requires a format type argument")
	}
	switch kind {
	case "date":
		return &DateValidator{Layout: "2006-01-02"}, nil
	case "datetime":
		return &DateValidator{Layout: "2006-01-02T15:04:05"}, nil
	}
	pattern, ok := formatPatterns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown @format type %q", kind)
	}
	return &FormatValidator{Kind: kind, re: regexp.MustCompile(pattern)}, nil
}

func (v *FormatValidator) Name() string { return "format:" + v.Kind }

func (v *FormatValidator) Validate(val bytecode.Value) error {
	if !val.IsString() {
		return fmt.Errorf("expected a string, got %s", val.TypeName())
	}
	if !v.re.MatchString(val.AsString()) {
		return fmt.Errorf("does not match %s format", v.Kind)
	}
	return nil
}
