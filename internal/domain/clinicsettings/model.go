package clinicsettings

import (
	"time"

	"github.com/google/uuid"
)

const DefaultClinicName = "Sariva Clinic"

const (
	SlotSingle = "single"
	SlotDouble = "double"
)

// Weekdays lists the days in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Timing is the opening schedule of one weekday. A single slot uses
// SingleStart/SingleEnd; a double slot uses the morning and evening pairs.
// Times are "HH:MM" in 24h form.
type Timing struct {
	Day          string `json:"day"`
	IsOpen       bool   `json:"isOpen"`
	SlotType     string `json:"slotType"`
	SingleStart  string `json:"singleStart"`
	SingleEnd    string `json:"singleEnd"`
	MorningStart string `json:"morningStart"`
	MorningEnd   string `json:"morningEnd"`
	EveningStart string `json:"eveningStart"`
	EveningEnd   string `json:"eveningEnd"`
}

type Settings struct {
	ID             uuid.UUID `json:"_id"`
	ClinicName     string    `json:"clinicName"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Pincode        string    `json:"pincode"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Website        string    `json:"website"`
	Tagline        string    `json:"tagline"`
	RegistrationNo string    `json:"registrationNo"`
	Logo           string    `json:"logo"`
	Timings        []Timing  `json:"timings"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input replaces the text fields. An empty clinic name, a missing logo and
// missing timings keep the stored values.
type Input struct {
	ClinicName     string   `json:"clinicName"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Pincode        string   `json:"pincode"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Website        string   `json:"website"`
	Tagline        string   `json:"tagline"`
	RegistrationNo string   `json:"registrationNo"`
	Logo           *string  `json:"logo"`
	Timings        []Timing `json:"timings"`
}

// DefaultTimings returns all seven days closed with a double slot.
func DefaultTimings() []Timing {
	out := make([]Timing, len(Weekdays))
	for i, d := range Weekdays {
		out[i] = Timing{Day: d, SlotType: SlotDouble}
	}
	return out
}

// Default returns the settings created on first read.
func Default() *Settings {
	return &Settings{ClinicName: DefaultClinicName, Timings: DefaultTimings()}
}
