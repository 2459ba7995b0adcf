package config

import (
	_ "embed"
)

//go:embed defaults/cvars.yaml
var defaultCvarsYAML []byte

// DefaultCvars returns the RecWars defaults.
func DefaultCvars() Cvars {
	return Cvars{
		AI:      true,
		BotsMax: 20,

		DDbg:            false,
		DDraw:           true,
		DFps:            true,
		DFpsPeriod:      1.0,
		DSeed:           0,
		DSpeed:          1.0,
		DTimingSamples:  60,
		DLargeDeltaWarn: 5.0,

		GArmor:              50.0,
		GFfaScoreKill:       1,
		GFfaScoreDeath:      -1,
		GMachineGunRefire:   0.050,
		GRailgunDamage:      47.0,
		GRailgunSpeed:       2000.0,
		GRespawnDelay:       2.0,
		GRocketsRefire:      0.200,
		GSelfDestructRadius: 175.0,
		GTurretTurnSpeedDeg: 120.0,

		HudNames: true,
		HudHelp:  true,

		RExplosionDuration:  0.5,
		RMinFrameDelay:      0,
		RPreviewCursorSpeed: 4.0,
		RSmoothing:          false,

		SvAutoPauseOnMinimize:  true,
		SvAutoUnpauseOnRestore: false,
		SvGamelogicMode:        TickrateVariable,
		SvGamelogicFixedFps:    150.0,
	}
}
