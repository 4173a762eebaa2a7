// Package rxprint renders prescriptions as printable A4 HTML in one of
// several layouts, and delivers them by email.
package rxprint

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sariva/clinic/internal/domain/clinicsettings"
	"github.com/sariva/clinic/internal/domain/prescription"
)

//go:embed templates/*.html
var templateFS embed.FS

// Info describes a selectable layout.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type layout struct {
	Info
	file string
	tpl  *template.Template
}

// The first layout is the default.
var layouts = []*layout{
	{Info: Info{ID: "light-red", Name: "Light Red (Default)"}, file: "light_red.html"},
	{Info: Info{ID: "classic", Name: "Classic Traditional"}, file: "classic.html"},
	{Info: Info{ID: "minimal", Name: "Modern Minimal"}, file: "minimal.html"},
	{Info: Info{ID: "blue", Name: "Blue Professional"}, file: "blue.html"},
}

var funcs = template.FuncMap{
	"marathi":  TranslateToMarathi,
	"dosage":   DosageString,
	"dosageMr": func(d prescription.Dosage) string { return TranslateDosage(DosageString(d)) },
	"inc":      func(i int) int { return i + 1 },
}

func init() {
	for _, l := range layouts {
		l.tpl = template.Must(template.New(l.file).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+l.file))
	}
}

// Templates lists the available layouts, default first.
func Templates() []Info {
	out := make([]Info, len(layouts))
	for i, l := range layouts {
		out[i] = l.Info
	}
	return out
}

// Lookup returns the layout with the given id, or the default.
func Lookup(id string) Info {
	return find(id).Info
}

func find(id string) *layout {
	for _, l := range layouts {
		if l.ID == id {
			return l
		}
	}
	return layouts[0]
}

// Clinic is the letterhead.
type Clinic struct {
	Name           string
	Tagline        string
	Address        string
	Phone          string
	Email          string
	Website        string
	RegistrationNo string
	Logo           template.URL
	Timings        TimingLines
}

type Doctor struct {
	Name           string
	Qualification  string
	Specialization string
	RegistrationNo string
	Phone          string
	Signature      template.URL
}

type Patient struct {
	Name      string
	PatientID string
	Age       int
	Gender    string
	Phone     string
	Email     string
}

// Document is everything a layout prints. Patient and Doctor are never nil;
// missing records render as blanks.
type Document struct {
	Clinic         Clinic
	Doctor         Doctor
	Patient        Patient
	PrescriptionID string
	Date           string
	DateTime       string
	Diagnosis      string
	Medicines      []prescription.Item
	Advice         string
	FollowUp       string
	DietPlan       string
}

// NewDocument flattens a populated prescription and the clinic settings.
// Dates are shown in loc.
func NewDocument(d *prescription.Detail, s *clinicsettings.Settings, loc *time.Location) Document {
	if loc == nil {
		loc = time.UTC
	}
	doc := Document{
		PrescriptionID: d.PrescriptionID,
		Date:           d.Date.In(loc).Format("02 Jan 2006"),
		DateTime:       d.Date.In(loc).Format("02 Jan 2006, 03:04 PM"),
		Diagnosis:      d.Diagnosis,
		Medicines:      d.Medicines,
		Advice:         d.Advice,
		DietPlan:       d.DietPlan,
	}
	if d.FollowUpDate != nil {
		doc.FollowUp = d.FollowUpDate.In(loc).Format("02 Jan 2006")
	}
	if s != nil {
		doc.Clinic = Clinic{
			Name:           s.ClinicName,
			Tagline:        s.Tagline,
			Address:        joinNonEmpty(", ", s.Address, s.City, s.State, s.Pincode),
			Phone:          s.Phone,
			Email:          s.Email,
			Website:        s.Website,
			RegistrationNo: s.RegistrationNo,
			Logo:           imageURL(s.Logo),
			Timings:        FormatClinicTimings(s.Timings),
		}
	}
	if doc.Clinic.Name == "" {
		doc.Clinic.Name = clinicsettings.DefaultClinicName
	}
	if p := d.Patient; p != nil {
		doc.Patient = Patient{Name: p.Name, PatientID: p.PatientID, Age: p.Age, Gender: p.Gender, Phone: p.Phone, Email: p.Email}
	}
	if dr := d.Doctor; dr != nil {
		doc.Doctor = Doctor{
			Name:           dr.Name,
			Qualification:  dr.Qualification,
			Specialization: dr.Specialization,
			RegistrationNo: dr.RegistrationNo,
			Phone:          dr.Phone,
		}
		if dr.Signature != nil {
			doc.Doctor.Signature = imageURL(*dr.Signature)
		}
	}
	return doc
}

// Render executes the layout with the given id, falling back to the default
// for an unknown id.
func Render(id string, doc Document) ([]byte, error) {
	l := find(id)
	var buf bytes.Buffer
	if err := l.tpl.ExecuteTemplate(&buf, l.file, doc); err != nil {
		return nil, fmt.Errorf("render %s template: %w", l.ID, err)
	}
	return buf.Bytes(), nil
}

// imageURL trusts only inline image data; anything else is dropped.
func imageURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
