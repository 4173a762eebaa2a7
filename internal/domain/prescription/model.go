package prescription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/domain/doctor"
	"github.com/sariva/clinic/internal/domain/patient"
	"github.com/sariva/clinic/pkg/dates"
)

// CounterName is the id_counters row that numbers prescriptions.
const CounterName = "prescription"

// Dosage marks the times of day a medicine is taken.
type Dosage struct {
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
	Night     bool `json:"night"`
}

// MedicineRef is the current inventory entry behind a prescribed item.
type MedicineRef struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"name"`
	GenericName string    `json:"genericName"`
}

// Item is one prescribed medicine. MedicineName is copied from the
// inventory when the prescription is written and never follows later
// renames. Ref is only set when reading a patient's history; it is never
// stored.
type Item struct {
	Medicine     *uuid.UUID   `json:"medicine"`
	MedicineName string       `json:"medicineName"`
	Dosage       Dosage       `json:"dosage"`
	Duration     int          `json:"duration"`
	Instructions string       `json:"instructions"`
	Ref          *MedicineRef `json:"-"`
}

// MarshalJSON renders medicine as an object when Ref is populated and as a
// bare id otherwise.
func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	if it.Ref == nil {
		return json.Marshal(plain(it))
	}
	return json.Marshal(struct {
		plain
		Medicine *MedicineRef `json:"medicine"`
	}{plain(it), it.Ref})
}

// UnmarshalJSON accepts medicine as an id string or as a populated object,
// so a form can send back what it read.
func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	aux := struct {
		*plain
		Medicine json.RawMessage `json:"medicine"`
	}{plain: (*plain)(it)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	it.Medicine = nil
	it.Ref = nil

	raw := bytes.TrimSpace(aux.Medicine)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if raw[0] == '{' {
		var ref struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &ref); err != nil {
			return fmt.Errorf("medicine: %w", err)
		}
		s = ref.ID
	} else if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("medicine must be an id: %w", err)
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid medicine id %q", s)
	}
	it.Medicine = &id
	return nil
}

type PatientSummary struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	PatientID string    `json:"patientId"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
}

type DoctorSummary struct {
	ID             uuid.UUID `json:"_id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
}

type Prescription struct {
	ID             uuid.UUID       `json:"_id"`
	PrescriptionID string          `json:"prescriptionId"`
	PatientID      *uuid.UUID      `json:"-"`
	DoctorID       *uuid.UUID      `json:"-"`
	Patient        *PatientSummary `json:"patient"`
	Doctor         *DoctorSummary  `json:"doctor"`
	Date           time.Time       `json:"date"`
	Diagnosis      string          `json:"diagnosis"`
	Medicines      []Item          `json:"medicines"`
	DietPlan       string          `json:"dietPlan"`
	Advice         string          `json:"advice"`
	FollowUpDate   *time.Time      `json:"followUpDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Detail is a prescription with the full patient and doctor records, as
// needed for printing. Either is nil when the record was deleted.
type Detail struct {
	*Prescription
	Patient *patient.Patient `json:"patient"`
	Doctor  *doctor.Doctor   `json:"doctor"`
}

type CreateInput struct {
	Patient      string     `json:"patient"`
	Doctor       string     `json:"doctor"`
	Date         dates.Date `json:"date"`
	Diagnosis    string     `json:"diagnosis"`
	Medicines    []Item     `json:"medicines"`
	DietPlan     string     `json:"dietPlan"`
	Advice       string     `json:"advice"`
	FollowUpDate dates.Date `json:"followUpDate"`
}

// UpdateInput replaces the clinical content. Patient, doctor and date are
// fixed once written.
type UpdateInput struct {
	Diagnosis    string     `json:"diagnosis"`
	Medicines    []Item     `json:"medicines"`
	DietPlan     string     `json:"dietPlan"`
	Advice       string     `json:"advice"`
	FollowUpDate dates.Date `json:"followUpDate"`
}

type ListQuery struct {
	Patient   string
	Doctor    string
	StartDate string
	EndDate   string
}

// FormatPrescriptionID renders RX + two-digit year + month + five-digit n,
// e.g. RX250100042.
func FormatPrescriptionID(t time.Time, n int64) string {
	return fmt.Sprintf("RX%02d%02d%05d", t.Year()%100, int(t.Month()), n)
}
