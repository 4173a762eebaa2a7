package dietplan

import "fmt"

const promptTemplate = `You are an expert Ayurvedic and general medical dietitian. Based on the following diagnosis, generate a concise diet plan for the patient.

Diagnosis: %s
%s
%s

Provide a brief, practical diet plan in the following format:
- Foods to Eat (4-5 items)
- Foods to Avoid (4-5 items)
- General Diet Tips (2-3 tips)

Keep it concise and practical. Use simple language that patients can understand. Response should be in plain text, not markdown. Keep total response under 200 words.`

// BuildPrompt fills the dietitian prompt. Missing age or gender leave their
// line blank.
func BuildPrompt(r Request) string {
	var age, gender string
	if r.PatientAge != "" {
		age = fmt.Sprintf("Patient Age: %s years", r.PatientAge)
	}
	if r.PatientGender != "" {
		gender = "Patient Gender: " + r.PatientGender
	}
	return fmt.Sprintf(promptTemplate, r.Diagnosis, age, gender)
}
