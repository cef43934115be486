// Package schedule computes a doctor's bookable half-hour windows. Everything
// here is pure: the caller captures "now" once per request and threads it
// through, so a single availability query never straddles a clock tick.
package schedule

import (
	"time"

	"curaconnect/models"
)

const (
	// SlotDuration is the nominal window length; a working span not evenly
	// divisible by it yields one shorter trailing window.
	SlotDuration = 30 * time.Minute

	// DefaultTargetDays is how many qualifying days an availability query
	// collects when the caller does not say otherwise.
	DefaultTargetDays = 7

	// lookaheadCeiling bounds the forward walk so an empty or never-matching
	// working-day set terminates with an empty schedule instead of spinning.
	lookaheadCeiling = 30
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// DaySlots produces the ordered half-hour windows covering [hours.Start,
// hours.End) on the given date. For today's date, windows whose start instant
// is not strictly after now are dropped; future dates keep every window.
// A malformed or inverted working-hours pair yields no windows.
func DaySlots(date string, hours models.WorkingHours, now time.Time) []models.Slot {
	start, err := atClock(date, hours.Start, now.Location())
	if err != nil {
		return nil
	}
	end, err := atClock(date, hours.End, now.Location())
	if err != nil {
		return nil
	}

	today := now.Format(dateLayout)
	var slots []models.Slot
	for cur := start; cur.Before(end); {
		slotEnd := cur.Add(SlotDuration)
		if slotEnd.After(end) {
			slotEnd = end
		}
		if date > today || (date == today && cur.After(now)) {
			slots = append(slots, models.Slot{
				Date:  date,
				Start: cur.Format(clockLayout),
				End:   slotEnd.Format(clockLayout),
			})
		}
		cur = slotEnd
	}
	return slots
}

// NextSlots walks calendar days forward from now's date, keeps days whose
// weekday is in workingDays, and collects DaySlots per kept day until
// targetDays qualifying days have been seen or the lookahead ceiling is hit.
// Output is grouped by day in chronological order; within a day, windows are
// chronological.
func NextSlots(workingDays []int, hours models.WorkingHours, targetDays int, now time.Time) []models.Slot {
	if targetDays <= 0 {
		targetDays = DefaultTargetDays
	}
	allowed := make(map[int]bool, len(workingDays))
	for _, d := range workingDays {
		allowed[d] = true
	}

	var slots []models.Slot
	matched := 0
	for offset := 0; matched < targetDays && offset < lookaheadCeiling; offset++ {
		day := now.AddDate(0, 0, offset)
		if !allowed[int(day.Weekday())] {
			continue
		}
		slots = append(slots, DaySlots(day.Format(dateLayout), hours, now)...)
		matched++
	}
	return slots
}

// Annotate returns a copy of slots with Booked set for every window that an
// appointment in appts occupies. A window is occupied iff some appointment
// matches the doctor, date, start and end exactly and carries status booked.
// The inputs are not mutated.
func Annotate(doctorID string, slots []models.Slot, appts []models.Appointment) []models.Slot {
	out := make([]models.Slot, len(slots))
	for i, s := range slots {
		s.Booked = occupied(doctorID, s, appts)
		out[i] = s
	}
	return out
}

func occupied(doctorID string, s models.Slot, appts []models.Appointment) bool {
	for _, a := range appts {
		if a.DoctorID == doctorID &&
			a.Status == models.StatusBooked &&
			a.Date == s.Date && a.Start == s.Start && a.End == s.End {
			return true
		}
	}
	return false
}

// atClock anchors a wall-clock "HH:MM" string on the given date in loc.
func atClock(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+"T"+clockLayout, date+"T"+clock, loc)
}
