package config

import (
	"errors"
	"fmt"
)

// Reserved launch parameters. They are resolved before the cvars exist and
// are never treated as cvar overrides.
const (
	KeyMap     = "map"
	KeyBalance = "balance"
)

// IsReserved reports whether key is handled by dedicated selection logic.
func IsReserved(key string) bool {
	return key == KeyMap || key == KeyBalance
}

// Pair is one textual override, e.g. {"g_armor", "150"}.
type Pair struct {
	Key   string
	Value string
}

// ParseError reports an override value that does not parse as its field's kind.
type ParseError struct {
	Field string
	Kind  Kind
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: cannot set %s (%s) to %q: %v", e.Field, e.Kind, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// OverrideReport summarizes what ApplyOverrides did.
type OverrideReport struct {
	Applied  []string // cvar names that changed, in input order
	Unknown  []string // keys that name no cvar
	Rejected []string // cvar names whose value failed to parse
}

// ApplyOverrides applies pairs in order. Each field is set all-or-nothing:
// a value that fails to parse leaves that field unchanged and the remaining
// pairs are still applied. Unknown and reserved keys are skipped.
// The returned error joins every ParseError, or is nil.
func ApplyOverrides(c *Cvars, pairs []Pair) (OverrideReport, error) {
	var (
		report OverrideReport
		errs   []error
	)
	for _, p := range pairs {
		if IsReserved(p.Key) {
			continue
		}
		f, ok := LookupField(p.Key)
		if !ok {
			report.Unknown = append(report.Unknown, p.Key)
			continue
		}
		v, err := f.Parse(p.Value)
		if err != nil {
			report.Rejected = append(report.Rejected, p.Key)
			errs = append(errs, &ParseError{Field: p.Key, Kind: f.Kind, Value: p.Value, Err: err})
			continue
		}
		f.set(c, v)
		report.Applied = append(report.Applied, p.Key)
	}
	return report, errors.Join(errs...)
}

// PairsFromArgs turns "name value name value ..." into pairs.
// A trailing name without a value is an error.
func PairsFromArgs(args []string) ([]Pair, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("config: cvar %q has no value", args[len(args)-1])
	}
	pairs := make([]Pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, Pair{Key: args[i], Value: args[i+1]})
	}
	return pairs, nil
}
