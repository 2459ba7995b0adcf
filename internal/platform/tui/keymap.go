package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/vovakirdan/recwars/internal/input"
)

// KeyMap holds the host keys and the game bindings shown in the help bar.
// Host keys never reach the aggregator.
type KeyMap struct {
	game       input.Bindings
	Quit       key.Binding
	Help       key.Binding
	Screenshot key.Binding
}

// NewKeyMap creates the host keymap around a game bindings table.
func NewKeyMap(b input.Bindings) KeyMap {
	return KeyMap{
		game: b,
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.game.Binding(input.ActionUp),
		k.game.Binding(input.ActionLeft),
		k.game.Binding(input.ActionDown),
		k.game.Binding(input.ActionRight),
		k.game.Binding(input.ActionFire),
		k.game.Binding(input.ActionPause),
		k.Help,
		k.Quit,
	}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	group := func(actions ...input.Action) []key.Binding {
		out := make([]key.Binding, 0, len(actions))
		for _, a := range actions {
			out = append(out, k.game.Binding(a))
		}
		return out
	}
	return [][]key.Binding{
		group(input.ActionUp, input.ActionDown, input.ActionLeft, input.ActionRight),
		group(input.ActionTurretLeft, input.ActionTurretRight, input.ActionPrevWeapon, input.ActionNextWeapon),
		group(input.ActionFire, input.ActionMine, input.ActionSelfDestruct, input.ActionHorn),
		append(group(input.ActionChat, input.ActionPause), k.Screenshot, k.Quit),
	}
}
