package appointment

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusCompleted: true, StatusCancelled: true,
}

// slotTime matches a 24h "HH:MM" clock time.
var slotTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

const slotTakenMsg = "Doctor already has an appointment at this time"

// PatientSummary is the slice of a patient shown next to an appointment.
type PatientSummary struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	PatientID string    `json:"patientId"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
}

type DoctorSummary struct {
	ID              uuid.UUID `json:"_id"`
	Name            string    `json:"name"`
	Specialization  string    `json:"specialization"`
	ConsultationFee float64   `json:"consultationFee"`
}

// Appointment books a patient with a doctor for a calendar day and a clock
// time. Date is midnight UTC of that day. Patient and Doctor are nil when the
// referenced row no longer exists.
type Appointment struct {
	ID        uuid.UUID       `json:"_id"`
	PatientID *uuid.UUID      `json:"-"`
	DoctorID  *uuid.UUID      `json:"-"`
	Patient   *PatientSummary `json:"patient"`
	Doctor    *DoctorSummary  `json:"doctor"`
	Date      time.Time       `json:"date"`
	Time      string          `json:"time"`
	Reason    string          `json:"reason"`
	Notes     string          `json:"notes"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateInput books a new appointment. New bookings are always pending.
type CreateInput struct {
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Reason  string `json:"reason"`
	Notes   string `json:"notes"`
}

// UpdateInput replaces the schedule and outcome of a booking. Patient and
// doctor are fixed once booked. An empty status keeps the current one.
type UpdateInput struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// ListQuery carries the raw list filters from the query string.
type ListQuery struct {
	Patient   string
	Doctor    string
	Status    string
	Date      string
	StartDate string
	EndDate   string
}

// calendarDay returns midnight UTC of t's calendar day in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
