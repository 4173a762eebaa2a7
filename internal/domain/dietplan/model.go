package dietplan

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Request asks for a diet plan for a diagnosis. Age and gender are optional
// and only refine the prompt.
type Request struct {
	Diagnosis     string `json:"diagnosis"`
	PatientAge    Age    `json:"patientAge"`
	PatientGender string `json:"patientGender"`
}

type Plan struct {
	DietPlan string `json:"dietPlan"`
}

// Age accepts a JSON number, a string or null.
type Age string

func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Age(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Age(n.String())
	return nil
}
