package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CounterName is the id_counters row that numbers patients.
const CounterName = "patient"

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

var validBloodGroups = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true, "": true,
}

type Patient struct {
	ID             uuid.UUID `json:"_id"`
	PatientID      string    `json:"patientId"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	BloodGroup     string    `json:"bloodGroup"`
	MedicalHistory []string  `json:"medicalHistory"`
	Allergies      []string  `json:"allergies"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input is the writable part of a patient. Age is a pointer so a missing
// value can be told apart from zero.
type Input struct {
	Name           string   `json:"name"`
	Age            *int     `json:"age"`
	Gender         string   `json:"gender"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Address        string   `json:"address"`
	BloodGroup     string   `json:"bloodGroup"`
	MedicalHistory []string `json:"medicalHistory"`
	Allergies      []string `json:"allergies"`
}

// FormatPatientID renders the n-th patient number as PAT000001.
func FormatPatientID(n int64) string {
	return fmt.Sprintf("PAT%06d", n)
}
