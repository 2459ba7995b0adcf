// Package bootstrap turns a launch request into the two startup resources the
// engine needs: the texture manifest and the level text. Resources are fetched
// strictly in order and any failure aborts the whole startup.
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vovakirdan/recwars/internal/config"
)

// Request is what a session was launched with.
type Request struct {
	Map       string        // explicit level, empty for a random one
	Balance   string        // raw profile name as given
	Overrides []config.Pair // every other parameter, in the order given
}

// ParseQuery reads a query string like "map=Atrium&g_armor=150&hud_names=false".
// A leading '?' is allowed. Parameter order is kept so later overrides win.
// A parameter without '=' is an override with an empty value.
func ParseQuery(raw string) (Request, error) {
	var r Request
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return r, nil
	}

	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return Request{}, fmt.Errorf("bootstrap: bad query key %q: %w", k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return Request{}, fmt.Errorf("bootstrap: bad value for %q: %w", key, err)
		}
		r.add(key, val)
	}
	return r, nil
}

// FromArgs builds a request from command-line input: flag values for the
// reserved parameters followed by "name value" override pairs.
func FromArgs(mapName, balance string, args []string) (Request, error) {
	pairs, err := config.PairsFromArgs(args)
	if err != nil {
		return Request{}, err
	}
	r := Request{Map: mapName, Balance: balance}
	for _, p := range pairs {
		r.add(p.Key, p.Value)
	}
	return r, nil
}

// Merge appends other on top of r. Non-empty reserved values in other win.
func (r Request) Merge(other Request) Request {
	if other.Map != "" {
		r.Map = other.Map
	}
	if other.Balance != "" {
		r.Balance = other.Balance
	}
	r.Overrides = append(append([]config.Pair(nil), r.Overrides...), other.Overrides...)
	return r
}

func (r *Request) add(key, val string) {
	switch key {
	case config.KeyMap:
		r.Map = val
	case config.KeyBalance:
		r.Balance = val
	default:
		r.Overrides = append(r.Overrides, config.Pair{Key: key, Value: val})
	}
}

// Settings is the outcome of resolving a request into runtime configuration.
type Settings struct {
	Balance  config.Balance
	Cvars    config.Cvars
	Report   config.OverrideReport
	Warnings []string // user-visible, e.g. an unknown balance name
}

// Resolve selects the balance profile, loads the cvars file on top of it and
// applies the request's overrides. Values that fail to parse are reported as
// warnings and leave their field unchanged. Only a broken cvars file is an error.
func (r Request) Resolve(cvarsFile string) (Settings, error) {
	var s Settings

	b, ok := config.ResolveBalance(r.Balance)
	if !ok {
		s.Warnings = append(s.Warnings,
			fmt.Sprintf("unknown balance %q, using %s", r.Balance, b))
	}
	s.Balance = b

	c, err := config.Load(cvarsFile, b)
	if err != nil {
		return Settings{}, err
	}

	report, err := config.ApplyOverrides(&c, r.Overrides)
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			s.Warnings = append(s.Warnings, line)
		}
	}
	s.Cvars = c
	s.Report = report
	return s, nil
}
