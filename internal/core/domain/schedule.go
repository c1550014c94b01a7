package domain

import "time"

// Training locations
const (
	LocationAlmereHaven    = "Almere Haven Sporthal"
	LocationNoordenplassen = "Noordenplassen Gymzaal Kraaiennest"
	LocationTrial          = "Sporthal Almere, Bataviaplein 60"
)

// Trial lesson defaults
const (
	TrialLessonTime   = "18:00"
	TrialLessonCount  = 3
	TrialBookingDays  = 14
	TrialPeriodDays   = 30
	TrialCooldownDays = 365
)

// Booking windows
const (
	SlotProjectionDays    = 56
	SlotsPerLocation      = 4
	CancelCutoffHours     = 4
	RescheduleCutoffHours = 24
	PunchCardSize         = 10
)

// Schedule describes a weekly recurring training session
type Schedule struct {
	Weekday   time.Weekday
	StartTime string
	EndTime   string
	Location  string
	Address   string
	Capacity  int
}

// TrainingSchedules is the club's weekly training programme
var TrainingSchedules = []Schedule{
	{
		Weekday:   time.Tuesday,
		StartTime: "19:30",
		EndTime:   "21:30",
		Location:  LocationAlmereHaven,
		Address:   "Parkweg 138, Almere",
		Capacity:  38,
	},
	{
		Weekday:   time.Thursday,
		StartTime: "18:30",
		EndTime:   "20:30",
		Location:  LocationNoordenplassen,
		Address:   "Kraaiennest, Almere",
		Capacity:  16,
	},
}

// CapacityFor returns the hall capacity for a training location
func CapacityFor(location string) int {
	if location == LocationAlmereHaven {
		return 38
	}
	return 16
}

// dutch day names, indexed by time.Weekday
var dayNames = [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}

// DayName returns the Dutch name for a weekday
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// Slot is one bookable training session in the projection window
type Slot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	EndTime  string `json:"endTime"`
	Location string `json:"location"`
	Address  string `json:"address"`
	DayName  string `json:"dayName"`
	Booked   int64  `json:"booked"`
	Capacity int    `json:"capacity"`
}
