package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the scalar type of a cvar. It never changes for a given field.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindUint
	KindFloat
	KindEnum
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Value is a tagged scalar. Only the member matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
}

// String formats the value the way it would be typed as an override.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindUint:
		return strconv.FormatUint(v.Uint, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// Field describes one cvar: its name, kind and how to read and write it.
// Dispatch happens on Kind; no reflection is involved.
type Field struct {
	Name    string
	Kind    Kind
	Choices []string // allowed values of an enum field

	get func(*Cvars) Value
	set func(*Cvars, Value)
}

// Descriptor is a field together with its current value.
type Descriptor struct {
	Name    string
	Kind    Kind
	Choices []string
	Current Value
}

// Describe returns the field's descriptor for c.
func (f Field) Describe(c *Cvars) Descriptor {
	return Descriptor{Name: f.Name, Kind: f.Kind, Choices: f.Choices, Current: f.get(c)}
}

// Parse converts text into a value of the field's kind.
func (f Field) Parse(text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch f.Kind {
	case KindBool:
		// Only the literal tokens; a non-empty string is not "true".
		switch text {
		case "true":
			return Value{Kind: KindBool, Bool: true}, nil
		case "false":
			return Value{Kind: KindBool, Bool: false}, nil
		}
		return Value{}, fmt.Errorf("expected true or false")
	case KindInt:
		n, err := strconv.ParseInt(text, 10, strconv.IntSize)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt, Int: n}, nil
	case KindUint:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUint, Uint: n}, nil
	case KindFloat:
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, err
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Value{}, fmt.Errorf("expected a finite number")
		}
		return Value{Kind: KindFloat, Float: x}, nil
	case KindEnum:
		lower := strings.ToLower(text)
		for _, choice := range f.Choices {
			if choice == lower {
				return Value{Kind: KindEnum, Str: choice}, nil
			}
		}
		return Value{}, fmt.Errorf("expected one of %s", strings.Join(f.Choices, ", "))
	}
	return Value{}, fmt.Errorf("unsupported kind %s", f.Kind)
}

func boolField(name string, p func(*Cvars) *bool) Field {
	return Field{
		Name: name,
		Kind: KindBool,
		get:  func(c *Cvars) Value { return Value{Kind: KindBool, Bool: *p(c)} },
		set:  func(c *Cvars, v Value) { *p(c) = v.Bool },
	}
}

func intField(name string, p func(*Cvars) *int) Field {
	return Field{
		Name: name,
		Kind: KindInt,
		get:  func(c *Cvars) Value { return Value{Kind: KindInt, Int: int64(*p(c))} },
		set:  func(c *Cvars, v Value) { *p(c) = int(v.Int) },
	}
}

func uintField(name string, p func(*Cvars) *uint) Field {
	return Field{
		Name: name,
		Kind: KindUint,
		get:  func(c *Cvars) Value { return Value{Kind: KindUint, Uint: uint64(*p(c))} },
		set:  func(c *Cvars, v Value) { *p(c) = uint(v.Uint) },
	}
}

func uint64Field(name string, p func(*Cvars) *uint64) Field {
	return Field{
		Name: name,
		Kind: KindUint,
		get:  func(c *Cvars) Value { return Value{Kind: KindUint, Uint: *p(c)} },
		set:  func(c *Cvars, v Value) { *p(c) = v.Uint },
	}
}

func floatField(name string, p func(*Cvars) *float64) Field {
	return Field{
		Name: name,
		Kind: KindFloat,
		get:  func(c *Cvars) Value { return Value{Kind: KindFloat, Float: *p(c)} },
		set:  func(c *Cvars, v Value) { *p(c) = v.Float },
	}
}

func enumField(name string, choices []string, p func(*Cvars) *string) Field {
	return Field{
		Name:    name,
		Kind:    KindEnum,
		Choices: choices,
		get:     func(c *Cvars) Value { return Value{Kind: KindEnum, Str: *p(c)} },
		set:     func(c *Cvars, v Value) { *p(c) = v.Str },
	}
}

// Keep alphabetical.
var fields = []Field{
	boolField("ai", func(c *Cvars) *bool { return &c.AI }),
	uintField("bots_max", func(c *Cvars) *uint { return &c.BotsMax }),
	boolField("d_dbg", func(c *Cvars) *bool { return &c.DDbg }),
	boolField("d_draw", func(c *Cvars) *bool { return &c.DDraw }),
	boolField("d_fps", func(c *Cvars) *bool { return &c.DFps }),
	floatField("d_fps_period", func(c *Cvars) *float64 { return &c.DFpsPeriod }),
	floatField("d_large_delta_warn", func(c *Cvars) *float64 { return &c.DLargeDeltaWarn }),
	uint64Field("d_seed", func(c *Cvars) *uint64 { return &c.DSeed }),
	floatField("d_speed", func(c *Cvars) *float64 { return &c.DSpeed }),
	uintField("d_timing_samples", func(c *Cvars) *uint { return &c.DTimingSamples }),
	floatField("g_armor", func(c *Cvars) *float64 { return &c.GArmor }),
	intField("g_ffa_score_death", func(c *Cvars) *int { return &c.GFfaScoreDeath }),
	intField("g_ffa_score_kill", func(c *Cvars) *int { return &c.GFfaScoreKill }),
	floatField("g_machine_gun_refire", func(c *Cvars) *float64 { return &c.GMachineGunRefire }),
	floatField("g_railgun_damage", func(c *Cvars) *float64 { return &c.GRailgunDamage }),
	floatField("g_railgun_speed", func(c *Cvars) *float64 { return &c.GRailgunSpeed }),
	floatField("g_respawn_delay", func(c *Cvars) *float64 { return &c.GRespawnDelay }),
	floatField("g_rockets_refire", func(c *Cvars) *float64 { return &c.GRocketsRefire }),
	floatField("g_self_destruct_radius", func(c *Cvars) *float64 { return &c.GSelfDestructRadius }),
	floatField("g_turret_turn_speed_deg", func(c *Cvars) *float64 { return &c.GTurretTurnSpeedDeg }),
	boolField("hud_help", func(c *Cvars) *bool { return &c.HudHelp }),
	boolField("hud_names", func(c *Cvars) *bool { return &c.HudNames }),
	floatField("r_explosion_duration", func(c *Cvars) *float64 { return &c.RExplosionDuration }),
	floatField("r_min_frame_delay", func(c *Cvars) *float64 { return &c.RMinFrameDelay }),
	floatField("r_preview_cursor_speed", func(c *Cvars) *float64 { return &c.RPreviewCursorSpeed }),
	boolField("r_smoothing", func(c *Cvars) *bool { return &c.RSmoothing }),
	boolField("sv_auto_pause_on_minimize", func(c *Cvars) *bool { return &c.SvAutoPauseOnMinimize }),
	boolField("sv_auto_unpause_on_restore", func(c *Cvars) *bool { return &c.SvAutoUnpauseOnRestore }),
	floatField("sv_gamelogic_fixed_fps", func(c *Cvars) *float64 { return &c.SvGamelogicFixedFps }),
	enumField("sv_gamelogic_mode",
		[]string{string(TickrateVariable), string(TickrateFixed)},
		func(c *Cvars) *string { return (*string)(&c.SvGamelogicMode) }),
}

var fieldIndex = func() map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return idx
}()

// Fields returns every cvar field sorted by name.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupField finds a field by its cvar name.
func LookupField(name string) (Field, bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return fields[i], true
}

// Describe returns the descriptor of the named cvar.
func (c *Cvars) Describe(name string) (Descriptor, bool) {
	f, ok := LookupField(name)
	if !ok {
		return Descriptor{}, false
	}
	return f.Describe(c), true
}

// Get returns the current value of the named cvar as text.
func (c *Cvars) Get(name string) (string, error) {
	f, ok := LookupField(name)
	if !ok {
		return "", fmt.Errorf("config: unknown cvar %q", name)
	}
	return f.get(c).String(), nil
}

// Set parses text with the field's own parser and stores it.
// On error the field keeps its previous value.
func (c *Cvars) Set(name, text string) error {
	f, ok := LookupField(name)
	if !ok {
		return fmt.Errorf("config: unknown cvar %q", name)
	}
	v, err := f.Parse(text)
	if err != nil {
		return &ParseError{Field: name, Kind: f.Kind, Value: text, Err: err}
	}
	f.set(c, v)
	return nil
}

// Validate checks values that the YAML decoder cannot constrain.
func (c *Cvars) Validate() error {
	switch c.SvGamelogicMode {
	case TickrateVariable, TickrateFixed:
	default:
		return fmt.Errorf("config: sv_gamelogic_mode %q is not one of variable, fixed", c.SvGamelogicMode)
	}
	if c.SvGamelogicMode == TickrateFixed && c.SvGamelogicFixedFps <= 0 {
		return fmt.Errorf("config: sv_gamelogic_fixed_fps must be positive, got %v", c.SvGamelogicFixedFps)
	}
	for _, f := range fields {
		if f.Kind != KindFloat {
			continue
		}
		if x := f.get(c).Float; math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("config: %s must be a finite number, got %v", f.Name, x)
		}
	}
	return nil
}
