// Package slots turns the weekly business-hours configuration into bookable
// delivery windows.
package slots

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

const dateLayout = "2006-01-02"
const clockLayout = "15:04"

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

type Schedule struct {
	// Hours is keyed by lowercase weekday name ("monday".."sunday").
	Hours              map[string]DayHours `json:"hours"`
	SlotMinutes        int                 `json:"slot_minutes"`
	AdvanceNoticeHours int                 `json:"advance_notice_hours"`
	MaxDaysAhead       int                 `json:"max_days_ahead"`
	BlackoutDates      []string            `json:"blackout_dates"`
}

type Slot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// DefaultSchedule is the configuration written for a fresh install.
func DefaultSchedule() Schedule {
	hours := map[string]DayHours{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[d] = DayHours{Open: "09:00", Close: "21:00"}
	}
	hours["saturday"] = DayHours{Open: "10:00", Close: "22:00"}
	hours["sunday"] = DayHours{Open: "10:00", Close: "18:00", Closed: true}
	return Schedule{
		Hours:              hours,
		SlotMinutes:        120,
		AdvanceNoticeHours: 24,
		MaxDaysAhead:       7,
		BlackoutDates:      nil,
	}
}

func Parse(raw string) (Schedule, error) {
	var s Schedule
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Schedule{}, fmt.Errorf("parse schedule: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

func (s Schedule) Validate() error {
	if s.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if s.AdvanceNoticeHours < 0 {
		return fmt.Errorf("advance_notice_hours must not be negative")
	}
	if s.MaxDaysAhead <= 0 {
		return fmt.Errorf("max_days_ahead must be positive")
	}
	if len(s.Hours) == 0 {
		return fmt.Errorf("hours are required")
	}
	for day, h := range s.Hours {
		if _, err := time.Parse(clockLayout, h.Open); err != nil {
			return fmt.Errorf("%s: bad open time %q", day, h.Open)
		}
		if _, err := time.Parse(clockLayout, h.Close); err != nil {
			return fmt.Errorf("%s: bad close time %q", day, h.Close)
		}
	}
	for _, d := range s.BlackoutDates {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("bad blackout date %q", d)
		}
	}
	return nil
}

// Generate slices each day's open window into fixed-duration slots from today
// through today+MaxDaysAhead. A slot whose end would pass closing time is
// dropped entirely; slots before the advance-notice cutoff, on blackout dates
// or on closed weekdays are kept but marked unavailable with a reason.
func (s Schedule) Generate(now time.Time) []Slot {
	cutoff := now.Add(time.Duration(s.AdvanceNoticeHours) * time.Hour)
	dur := time.Duration(s.SlotMinutes) * time.Minute

	blackout := make(map[string]bool, len(s.BlackoutDates))
	for _, d := range s.BlackoutDates {
		blackout[d] = true
	}

	var out []Slot
	for d := 0; d <= s.MaxDaysAhead; d++ {
		day := now.AddDate(0, 0, d)
		hours, ok := s.Hours[weekdayKey(day.Weekday())]
		if !ok {
			continue
		}
		open, err1 := time.Parse(clockLayout, hours.Open)
		closeT, err2 := time.Parse(clockLayout, hours.Close)
		if err1 != nil || err2 != nil {
			continue
		}

		dateStr := day.Format(dateLayout)
		start := time.Date(day.Year(), day.Month(), day.Day(), open.Hour(), open.Minute(), 0, 0, now.Location())
		closing := time.Date(day.Year(), day.Month(), day.Day(), closeT.Hour(), closeT.Minute(), 0, 0, now.Location())

		for t := start; !t.Add(dur).After(closing); t = t.Add(dur) {
			slot := Slot{
				Date:      dateStr,
				Time:      t.Format(clockLayout),
				EndTime:   t.Add(dur).Format(clockLayout),
				Available: true,
			}
			switch {
			case hours.Closed:
				slot.Available = false
				slot.Reason = "closed on this day"
			case blackout[dateStr]:
				slot.Available = false
				slot.Reason = "closed for holiday"
			case t.Before(cutoff):
				slot.Available = false
				slot.Reason = fmt.Sprintf("requires %d hours notice", s.AdvanceNoticeHours)
			}
			out = append(out, slot)
		}
	}
	return out
}

// Find reports whether the schedule contains an available slot at the given
// date and start time.
func (s Schedule) Find(now time.Time, date, startTime string) (Slot, bool) {
	for _, sl := range s.Generate(now) {
		if sl.Date == date && sl.Time == startTime {
			return sl, sl.Available
		}
	}
	return Slot{}, false
}

// Fallback is the demo schedule served when no configuration can be loaded:
// the next 7 days with six fixed two-hour slots and randomized availability.
func Fallback(now time.Time) []Slot {
	starts := []string{"09:00", "11:00", "13:00", "15:00", "17:00", "19:00"}
	var out []Slot
	for d := 0; d < 7; d++ {
		day := now.AddDate(0, 0, d)
		dateStr := day.Format(dateLayout)
		for _, st := range starts {
			t, _ := time.Parse(clockLayout, st)
			out = append(out, Slot{
				Date:      dateStr,
				Time:      st,
				EndTime:   t.Add(2 * time.Hour).Format(clockLayout),
				Available: rand.Intn(3) > 0,
			})
		}
	}
	return out
}

func weekdayKey(w time.Weekday) string {
	switch w {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
