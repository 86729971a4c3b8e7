package poll

import "time"

// HourRange is a half-open range of hours [Start, End) on the slot's day.
type HourRange struct {
	Start int
	End   int
}

// Config carries everything a PollSession needs to know about its environment.
type Config struct {
	// BackendURL is the base URL of the vote and deadline API.
	BackendURL string
	// DeadlinePollInterval is the countdown tick period.
	DeadlinePollInterval time.Duration
	CandidateHorizonDays int
	SlotHoursWeekday     HourRange
	SlotHoursWeekend     HourRange
	// Location is the time zone slots and their ISO timestamps are expressed in.
	Location *time.Location
}

// DefaultConfig returns a Config for the standard two-week Tokyo poll.
func DefaultConfig() Config {
	return Config{
		DeadlinePollInterval: time.Second,
		CandidateHorizonDays: 14,
		SlotHoursWeekday:     HourRange{Start: 19, End: 21},
		SlotHoursWeekend:     HourRange{Start: 17, End: 20},
		Location:             DefaultLocation(),
	}
}

// DefaultLocation returns Asia/Tokyo, or a fixed +09:00 zone when tzdata is unavailable.
func DefaultLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DeadlinePollInterval <= 0 {
		c.DeadlinePollInterval = d.DeadlinePollInterval
	}
	if c.CandidateHorizonDays <= 0 {
		c.CandidateHorizonDays = d.CandidateHorizonDays
	}
	if c.SlotHoursWeekday == (HourRange{}) {
		c.SlotHoursWeekday = d.SlotHoursWeekday
	}
	if c.SlotHoursWeekend == (HourRange{}) {
		c.SlotHoursWeekend = d.SlotHoursWeekend
	}
	if c.Location == nil {
		c.Location = d.Location
	}
	return c
}
