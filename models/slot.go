package models

// WorkingHours is a doctor's daily availability template. Start and End are
// wall-clock "HH:MM" strings with no timezone attached; Start must precede End
// within the same day.
type WorkingHours struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// Slot is a bookable half-hour (or shorter, trailing) window on a given date.
// Slots are computed fresh on every query and never persisted; Booked is
// derived from the appointments collection.
type Slot struct {
	Date   string `json:"date"`  // "2006-01-02"
	Start  string `json:"start"` // "15:04"
	End    string `json:"end"`   // "15:04"
	Booked bool   `json:"booked"`
}

// Defaults applied when a doctor record carries no availability template.
var (
	DefaultWorkingDays  = []int{1, 2, 3, 4, 5, 6} // Mon-Sat
	DefaultWorkingHours = WorkingHours{Start: "10:00", End: "16:00"}
)
