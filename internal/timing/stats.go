package timing

// Fps counts frames seen during a trailing period.
//
// Counting frames in the last period gives a steadier number than inverting
// the average frame delay, which jitters around 59.9 and 60.1.
type Fps struct {
	times []float64
}

// Tick records a frame at realTime and forgets frames older than period.
func (f *Fps) Tick(period, realTime float64) {
	f.times = append(f.times, realTime)
	drop := 0
	for drop < len(f.times) && f.times[drop]+period < realTime {
		drop++
	}
	f.times = f.times[drop:]
}

// Rate returns frames per second over the recorded window.
func (f *Fps) Rate() float64 {
	if len(f.times) < 2 {
		return 0
	}
	span := f.times[len(f.times)-1] - f.times[0]
	if span <= 0 {
		return 0
	}
	return float64(len(f.times)-1) / span
}

// Durations keeps the most recent samples of some measured duration.
type Durations struct {
	samples []float64
}

// Add records one sample, keeping at most limit of them.
func (d *Durations) Add(limit int, duration float64) {
	if limit <= 0 {
		limit = 1
	}
	d.samples = append(d.samples, duration)
	if over := len(d.samples) - limit; over > 0 {
		d.samples = d.samples[over:]
	}
}

// Stats returns the average and maximum of the kept samples.
func (d *Durations) Stats() (avg, max float64, ok bool) {
	if len(d.samples) == 0 {
		return 0, 0, false
	}
	var sum float64
	for _, s := range d.samples {
		sum += s
		if s > max {
			max = s
		}
	}
	return sum / float64(len(d.samples)), max, true
}

// Len returns the number of kept samples.
func (d *Durations) Len() int {
	return len(d.samples)
}
