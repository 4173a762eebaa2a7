package doctor

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

var validDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// Availability is one weekly consulting window. StartTime/EndTime are the
// single-slot form kept for older clients.
type Availability struct {
	Day          string `json:"day"`
	MorningStart string `json:"morningStart,omitempty"`
	MorningEnd   string `json:"morningEnd,omitempty"`
	EveningStart string `json:"eveningStart,omitempty"`
	EveningEnd   string `json:"eveningEnd,omitempty"`
	StartTime    string `json:"startTime,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
}

type Doctor struct {
	ID              uuid.UUID      `json:"_id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Specialization  string         `json:"specialization"`
	Qualification   string         `json:"qualification"`
	RegistrationNo  string         `json:"registrationNo"`
	ConsultationFee float64        `json:"consultationFee"`
	Availability    []Availability `json:"availability"`
	IsActive        bool           `json:"isActive"`
	Signature       *string        `json:"signature"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// OptionalString records whether a JSON key was present at all, so an
// omitted signature can be told apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Input is the request body for create and update. CreateUser and Password
// are only read on create; IsActive and Signature only on update.
type Input struct {
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Specialization  string         `json:"specialization"`
	Qualification   string         `json:"qualification"`
	RegistrationNo  string         `json:"registrationNo"`
	ConsultationFee *float64       `json:"consultationFee"`
	Availability    []Availability `json:"availability"`
	IsActive        *bool          `json:"isActive"`
	Signature       OptionalString `json:"signature"`
	CreateUser      bool           `json:"createUser"`
	Password        string         `json:"password"`
}
