package analysis

import (
	"runlog/internal/geo"
	"runlog/internal/track"
)

// Effort relates running speed to heart rate over a run
type Effort struct {
	// EfficiencyFactor is meters per minute per bpm. Typical values range
	// from 1.0 to 2.0, higher means faster at the same heart rate.
	EfficiencyFactor float64

	// Decoupling is the pace:HR drift between the first and second half of
	// the moving time, in percent. Positive means the second half was less
	// efficient. Under 5% on long runs indicates a good aerobic base.
	Decoupling    float64
	HasDecoupling bool
}

const (
	minMovingSpeed       = 0.5 // m/s
	minEffortHR          = 80
	maxEffortHR          = 220
	minDecouplingSeconds = 120
)

// effortSample is one interval of a series
type effortSample struct {
	speed   float64 // m/s
	hr      float64 // bpm at the start of the interval
	seconds float64
}

// AnalyzeEffort computes efficiency factor and aerobic decoupling.
// Only intervals that are moving, timed and carry a plausible heart rate count.
func AnalyzeEffort(s track.Series) Effort {
	samples := effortSamples(s)

	e := Effort{EfficiencyFactor: efficiencyFactor(samples)}

	var total float64
	for _, sm := range samples {
		total += sm.seconds
	}
	if total < minDecouplingSeconds {
		return e
	}

	// Split by moving time rather than sample count so uneven recording
	// intervals don't skew the halves
	var elapsed float64
	var first, second []effortSample
	for _, sm := range samples {
		if elapsed < total/2 {
			first = append(first, sm)
		} else {
			second = append(second, sm)
		}
		elapsed += sm.seconds
	}

	firstEF, secondEF := efficiencyFactor(first), efficiencyFactor(second)
	if firstEF == 0 || secondEF == 0 {
		return e
	}
	e.Decoupling = round1((firstEF/secondEF - 1) * 100)
	e.HasDecoupling = true
	return e
}

func effortSamples(s track.Series) []effortSample {
	var out []effortSample
	for i := 0; i+1 < len(s); i++ {
		p, next := s[i], s[i+1]
		if p.Time == nil || next.Time == nil || p.HeartRate == nil {
			continue
		}
		dt := next.Time.Sub(*p.Time).Seconds()
		if dt <= 0 {
			continue
		}

		hr := float64(*p.HeartRate)
		speed := geo.Distance(p.Lat, p.Lon, next.Lat, next.Lon) / dt
		// Filter noise: must be actually moving with reasonable HR
		if speed < minMovingSpeed || hr < minEffortHR || hr > maxEffortHR {
			continue
		}
		out = append(out, effortSample{speed: speed, hr: hr, seconds: dt})
	}
	return out
}

// efficiencyFactor is the time-weighted speed in m/min over the time-weighted heart rate
func efficiencyFactor(samples []effortSample) float64 {
	var meters, beats float64
	for _, sm := range samples {
		meters += sm.speed * sm.seconds
		beats += sm.hr * sm.seconds
	}
	if beats == 0 {
		return 0
	}
	return meters * 60 / beats
}
