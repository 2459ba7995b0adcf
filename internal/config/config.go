// Package config holds the runtime tunables ("cvars") shared by the host and
// the simulation engine, the textual override layer on top of them, balance
// profiles and process-level settings read from the environment.
package config

import "time"

// TickrateMode selects how the engine turns frame time into gamelogic steps.
type TickrateMode string

const (
	// TickrateVariable runs one gamelogic step per rendered frame.
	TickrateVariable TickrateMode = "variable"
	// TickrateFixed runs fixed-size steps and carries the remainder to the next frame.
	TickrateFixed TickrateMode = "fixed"
)

// Cvars are the named tunables read by the engine every frame.
// The host may change any of them at any time between frames.
//
// Prefix meanings:
// d_ is debug, g_ is gameplay, hud_ is the heads-up display,
// r_ is rendering, sv_ is administration and performance.
type Cvars struct {
	AI      bool `yaml:"ai"`
	BotsMax uint `yaml:"bots_max"`

	DDbg            bool    `yaml:"d_dbg"`
	DDraw           bool    `yaml:"d_draw"`
	DFps            bool    `yaml:"d_fps"`
	DFpsPeriod      float64 `yaml:"d_fps_period"`
	DSeed           uint64  `yaml:"d_seed"`
	DSpeed          float64 `yaml:"d_speed"` // Multiplies the speed of everything
	DTimingSamples  uint    `yaml:"d_timing_samples"`
	DLargeDeltaWarn float64 `yaml:"d_large_delta_warn"`

	GArmor              float64 `yaml:"g_armor"`
	GFfaScoreKill       int     `yaml:"g_ffa_score_kill"`
	GFfaScoreDeath      int     `yaml:"g_ffa_score_death"`
	GMachineGunRefire   float64 `yaml:"g_machine_gun_refire"`
	GRailgunDamage      float64 `yaml:"g_railgun_damage"`
	GRailgunSpeed       float64 `yaml:"g_railgun_speed"`
	GRespawnDelay       float64 `yaml:"g_respawn_delay"`
	GRocketsRefire      float64 `yaml:"g_rockets_refire"`
	GSelfDestructRadius float64 `yaml:"g_self_destruct_radius"`
	GTurretTurnSpeedDeg float64 `yaml:"g_turret_turn_speed_deg"`

	HudNames bool `yaml:"hud_names"`
	HudHelp  bool `yaml:"hud_help"`

	RExplosionDuration  float64 `yaml:"r_explosion_duration"`
	RMinFrameDelay      float64 `yaml:"r_min_frame_delay"` // Seconds; frames arriving sooner are dropped
	RPreviewCursorSpeed float64 `yaml:"r_preview_cursor_speed"`
	RSmoothing          bool    `yaml:"r_smoothing"`

	SvAutoPauseOnMinimize  bool         `yaml:"sv_auto_pause_on_minimize"`
	SvAutoUnpauseOnRestore bool         `yaml:"sv_auto_unpause_on_restore"`
	SvGamelogicMode        TickrateMode `yaml:"sv_gamelogic_mode"`
	SvGamelogicFixedFps    float64      `yaml:"sv_gamelogic_fixed_fps"`
}

// EnsureSeed replaces a zero d_seed with one derived from now.
// It runs once, before the engine is constructed.
func (c *Cvars) EnsureSeed(now time.Time) {
	if c.DSeed == 0 {
		c.DSeed = uint64(now.UnixNano())
	}
}
