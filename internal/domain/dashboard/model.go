package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// TrendDays is the length of the appointment trend, today included.
const TrendDays = 7

// RecentLimit caps the upcoming appointments shown on the dashboard.
const RecentLimit = 5

type Counts struct {
	TotalPatients       int `json:"totalPatients"`
	TotalDoctors        int `json:"totalDoctors"`
	TotalMedicines      int `json:"totalMedicines"`
	TodayAppointments   int `json:"todayAppointments"`
	PendingAppointments int `json:"pendingAppointments"`
	LowStockMedicines   int `json:"lowStockMedicines"`
	ExpiredMedicines    int `json:"expiredMedicines"`
}

type Monthly struct {
	Patients      int `json:"patients"`
	Prescriptions int `json:"prescriptions"`
	Appointments  int `json:"appointments"`
}

type PatientRef struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	PatientID string    `json:"patientId"`
}

type DoctorRef struct {
	ID             uuid.UUID `json:"_id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
}

// RecentAppointment is an upcoming booking with slim patient and doctor
// summaries; a summary is nil when the record was deleted.
type RecentAppointment struct {
	ID      uuid.UUID   `json:"_id"`
	Patient *PatientRef `json:"patient"`
	Doctor  *DoctorRef  `json:"doctor"`
	Date    time.Time   `json:"date"`
	Time    string      `json:"time"`
	Reason  string      `json:"reason"`
	Status  string      `json:"status"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type GenderDistribution struct {
	Male   int `json:"male"`
	Female int `json:"female"`
	Other  int `json:"other"`
}

type Stats struct {
	Counts             Counts              `json:"counts"`
	Monthly            Monthly             `json:"monthly"`
	RecentAppointments []RecentAppointment `json:"recentAppointments"`
	AppointmentTrends  []TrendPoint        `json:"appointmentTrends"`
	GenderDistribution GenderDistribution  `json:"genderDistribution"`
}

// Window pins "today" and "this month" in the clinic's time zone. Day and
// the Month* days are calendar days at midnight UTC, compared with DATE
// columns; DayStart and the month bounds are instants, compared with
// timestamps.
type Window struct {
	Day        time.Time
	DayStart   time.Time
	MonthFirst time.Time
	MonthLast  time.Time
	MonthStart time.Time
	MonthEnd   time.Time
}

// NewWindow builds the window around now as seen in loc.
func NewWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	y, m, d := local.Date()
	return Window{
		Day:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		DayStart:   time.Date(y, m, d, 0, 0, 0, 0, loc),
		MonthFirst: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		MonthLast:  time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC),
		MonthStart: time.Date(y, m, 1, 0, 0, 0, 0, loc),
		MonthEnd:   time.Date(y, m+1, 1, 0, 0, 0, 0, loc),
	}
}
