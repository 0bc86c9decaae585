package service

const (
	// DayLayout is the calendar day format accepted by RunOn
	DayLayout = "2006-01-02"

	// HistoryLimit caps the runs listed in history views
	HistoryLimit = 200

	// ThresholdStep is how far one keypress moves the threshold (bpm)
	ThresholdStep = 1.0

	// Plausible threshold heart rate range (bpm)
	MinThresholdHR = 60
	MaxThresholdHR = 230
)
