// Package input turns raw key events into the fixed action-state structure
// the simulation engine reads once per frame.
package input

import "strings"

// Action is one of the fixed set of player intents the engine understands.
type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionUp
	ActionDown
	ActionTurretLeft
	ActionTurretRight
	ActionPrevWeapon
	ActionNextWeapon
	ActionFire
	ActionMine
	ActionSelfDestruct
	ActionHorn
	ActionChat
	ActionPause

	actionCount
)

var actionNames = [actionCount]string{
	ActionLeft:         "left",
	ActionRight:        "right",
	ActionUp:           "up",
	ActionDown:         "down",
	ActionTurretLeft:   "turret_left",
	ActionTurretRight:  "turret_right",
	ActionPrevWeapon:   "prev_weapon",
	ActionNextWeapon:   "next_weapon",
	ActionFire:         "fire",
	ActionMine:         "mine",
	ActionSelfDestruct: "self_destruct",
	ActionHorn:         "horn",
	ActionChat:         "chat",
	ActionPause:        "pause",
}

// String returns the snake_case name of the action.
func (a Action) String() string {
	if !a.Valid() {
		return "unknown"
	}
	return actionNames[a]
}

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	return a >= 0 && a < actionCount
}

// Actions returns every action in declaration order.
func Actions() []Action {
	all := make([]Action, actionCount)
	for i := range all {
		all[i] = Action(i)
	}
	return all
}

// ParseAction looks up an action by name, ignoring case.
func ParseAction(name string) (Action, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// ActionState holds the "held" flag of every action.
// It is a value type so a copy is a consistent snapshot.
type ActionState [actionCount]bool

// Held reports whether the action is currently held.
func (s ActionState) Held(a Action) bool {
	if !a.Valid() {
		return false
	}
	return s[a]
}

// Any reports whether at least one action is held.
func (s ActionState) Any() bool {
	for _, held := range s {
		if held {
			return true
		}
	}
	return false
}

// Axis returns right minus left, in {-1, 0, 1}.
func (s ActionState) Axis() int {
	x := 0
	if s[ActionRight] {
		x++
	}
	if s[ActionLeft] {
		x--
	}
	return x
}

// String lists the held actions, e.g. "Input { left fire }".
func (s ActionState) String() string {
	var sb strings.Builder
	sb.WriteString("Input { ")
	for i, held := range s {
		if held {
			sb.WriteString(actionNames[i])
			sb.WriteByte(' ')
		}
	}
	sb.WriteString("}")
	return sb.String()
}

func (s *ActionState) set(a Action, held bool) {
	if a.Valid() {
		s[a] = held
	}
}
