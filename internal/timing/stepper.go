package timing

import "github.com/vovakirdan/recwars/internal/config"

// maxFixedSteps bounds the catch-up work of one frame so a long stall
// doesn't turn into a death spiral.
const maxFixedSteps = 250

// Stepper splits the advance of the simulation clock into gamelogic steps.
type Stepper struct {
	gameTime float64
}

// GameTime returns the time of the last completed step.
func (s *Stepper) GameTime() float64 {
	return s.gameTime
}

// Carry returns how much of target is left over for the next frame.
func (s *Stepper) Carry(target float64) float64 {
	return target - s.gameTime
}

// Advance runs steps up to target. In variable mode that is a single step
// covering the whole interval, run even when the interval is empty. In fixed mode steps are 1/fixedFps long and
// the remainder carries over. step receives the new game time and the step length.
// The first step error stops the advance. It returns the number of steps run.
func (s *Stepper) Advance(target float64, mode config.TickrateMode, fixedFps float64, step func(gameTime, dt float64) error) (int, error) {
	if target < s.gameTime {
		return 0, nil
	}

	if mode != config.TickrateFixed || fixedFps <= 0 {
		dt := target - s.gameTime
		s.gameTime = target
		return 1, step(s.gameTime, dt)
	}

	dt := 1 / fixedFps
	n := 0
	for s.gameTime+dt <= target {
		if n == maxFixedSteps {
			// Drop the backlog but keep the sub-step remainder.
			behind := target - s.gameTime
			s.gameTime = target - (behind - float64(int(behind/dt))*dt)
			break
		}
		s.gameTime += dt
		n++
		if err := step(s.gameTime, dt); err != nil {
			return n, err
		}
	}
	return n, nil
}
