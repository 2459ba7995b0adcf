package config

import "strings"

// Balance names a ruleset profile.
type Balance string

const (
	// BalanceRecWars is the modern default ruleset.
	BalanceRecWars Balance = "recwars"
	// BalanceRecWar approximates the settings of the game RecWar.
	BalanceRecWar Balance = "recwar"

	DefaultBalance = BalanceRecWars
)

// Balances returns every known profile.
func Balances() []Balance {
	return []Balance{BalanceRecWars, BalanceRecWar}
}

// ResolveBalance maps a launch parameter to a profile. An empty value selects
// the default. An unrecognized value also selects the default and ok is false
// so the caller can warn visibly.
func ResolveBalance(name string) (b Balance, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultBalance, true
	}
	for _, known := range Balances() {
		if Balance(name) == known {
			return known, true
		}
	}
	return DefaultBalance, false
}

// NewCvars returns the defaults of a balance profile.
func NewCvars(b Balance) Cvars {
	c := DefaultCvars()
	ApplyBalance(&c, b)
	return c
}

// ApplyBalance modifies the cvars according to a profile.
func ApplyBalance(c *Cvars, b Balance) {
	switch b {
	case BalanceRecWar:
		// Effectively instant; the biggest curated maps are well under this many pixels wide.
		// Infinity would break the math.
		c.GRailgunSpeed = 1_000_000.0
	case BalanceRecWars:
		c.GRailgunSpeed = DefaultCvars().GRailgunSpeed
	}
}
