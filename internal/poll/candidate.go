package poll

import (
	"fmt"
	"sync/atomic"
	"time"
)

var weekdayKanji = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// Generator produces the candidate slate. Generate is deterministic in
// everything but slot IDs, which carry a per-call run number.
type Generator struct {
	cfg Config
	run atomic.Uint64
}

// NewGenerator returns a Generator for cfg. Zero fields take their defaults.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg.withDefaults()}
}

// Generate returns one slot per day for the configured horizon starting at today.
func (g *Generator) Generate(today time.Time) []Slot {
	run := g.run.Add(1)
	y, m, d := today.In(g.cfg.Location).Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, g.cfg.Location)

	slots := make([]Slot, 0, g.cfg.CandidateHorizonDays)
	for i := 0; i < g.cfg.CandidateHorizonDays; i++ {
		date := base.AddDate(0, 0, i)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
		hours := g.cfg.SlotHoursWeekday
		if weekend {
			hours = g.cfg.SlotHoursWeekend
		}
		slots = append(slots, Slot{
			ID:        fmt.Sprintf("%d-%d", run, i),
			Date:      date,
			StartHour: hours.Start,
			EndHour:   hours.End,
			IsWeekend: weekend,
			Label:     SlotLabel(date, hours),
			DateKey:   date.Format(time.DateOnly),
		})
	}
	return slots
}

// SlotLabel formats a slot as "6月10日(月) 19:00–21:00".
func SlotLabel(date time.Time, hours HourRange) string {
	return fmt.Sprintf("%d月%d日(%s) %d:00–%d:00",
		int(date.Month()), date.Day(), weekdayKanji[date.Weekday()], hours.Start, hours.End)
}
