package input

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Bindings maps every action to a set of case-insensitive key aliases.
// It is built once at startup and never mutated afterwards.
type Bindings struct {
	byAction [actionCount]key.Binding
}

// NewBindings builds a table from action -> aliases. Aliases are lower-cased.
// Actions missing from the map get a disabled binding.
func NewBindings(aliases map[Action][]string) Bindings {
	var b Bindings
	for a := range actionCount {
		keys := make([]string, 0, len(aliases[a]))
		for _, k := range aliases[a] {
			if k == "" {
				continue
			}
			keys = append(keys, strings.ToLower(k))
		}
		b.byAction[a] = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(helpKeys(keys), strings.ReplaceAll(a.String(), "_", " ")),
		)
		if len(keys) == 0 {
			b.byAction[a].SetEnabled(false)
		}
	}
	return b
}

// DefaultBindings returns the player 1 and player 2 keymaps merged into one table.
// Chat and pause are shared actions and only bound on the player 1 side.
// Terminals don't report modifier keys alone, so shift binds from the
// desktop layout are replaced by nearby letters.
func DefaultBindings() Bindings {
	return NewBindings(map[Action][]string{
		ActionLeft:         {"a", "left"},
		ActionRight:        {"d", "right"},
		ActionUp:           {"w", "up"},
		ActionDown:         {"s", "down"},
		ActionTurretLeft:   {"q", ","},
		ActionTurretRight:  {"e", "."},
		ActionPrevWeapon:   {"v", "l"},
		ActionNextWeapon:   {"c", "/", "-", "0"},
		ActionFire:         {" ", "space", "n"},
		ActionMine:         {"x", "m"},
		ActionSelfDestruct: {"g", "j"},
		ActionHorn:         {"r", "k"},
		ActionChat:         {"enter", "t"},
		ActionPause:        {"p", "pause"},
	})
}

// Binding returns the bubbles key binding for an action.
func (b Bindings) Binding(a Action) key.Binding {
	if !a.Valid() {
		return key.Binding{}
	}
	return b.byAction[a]
}

// Lookup returns every action bound to k. The match is case-insensitive and
// one key may drive several actions.
func (b Bindings) Lookup(k string) []Action {
	k = strings.ToLower(k)
	var matched []Action
	for a := range actionCount {
		if !b.byAction[a].Enabled() {
			continue
		}
		for _, alias := range b.byAction[a].Keys() {
			if alias == k {
				matched = append(matched, a)
				break
			}
		}
	}
	return matched
}

// Collisions reports keys bound to more than one action.
// Collisions are allowed; both actions fire together.
func (b Bindings) Collisions() map[string][]Action {
	seen := make(map[string][]Action)
	for a := range actionCount {
		for _, alias := range b.byAction[a].Keys() {
			seen[alias] = append(seen[alias], a)
		}
	}
	for k, actions := range seen {
		if len(actions) < 2 {
			delete(seen, k)
		}
	}
	return seen
}

// Keys returns every bound alias, sorted.
func (b Bindings) Keys() []string {
	set := make(map[string]struct{})
	for a := range actionCount {
		for _, alias := range b.byAction[a].Keys() {
			set[alias] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func helpKeys(keys []string) string {
	shown := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == " " {
			continue
		}
		shown = append(shown, k)
	}
	return strings.Join(shown, "/")
}
