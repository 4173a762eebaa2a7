package rxprint

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sariva/clinic/internal/domain/clinicsettings"
	"github.com/sariva/clinic/internal/domain/prescription"
)

// asDirected is the Marathi for "as directed by the doctor".
const asDirected = "डॉक्टरांच्या सल्ल्यानुसार"

type phrase struct{ en, mr string }

// Order matters: replacement runs top to bottom over the lowercased text.
var phrases = []phrase{
	{"before food", "जेवणापूर्वी"},
	{"after food", "जेवणानंतर"},
	{"empty stomach", "रिकाम्या पोटी"},
	{"with milk", "दुधासोबत"},
	{"with water", "पाण्यासोबत"},
	{"with lukewarm water", "कोमट पाण्यासोबत"},
	{"with hot water", "गरम पाण्यासोबत"},
	{"before sleep", "झोपण्यापूर्वी"},
	{"at bedtime", "झोपण्यापूर्वी"},
	{"with honey", "मधासोबत"},
	{"with ghee", "तुपासोबत"},
	{"chew", "चघळून खा"},
	{"as needed", "गरजेनुसार"},
	{"sos", "गरजेनुसार"},
	{"external use", "बाह्य वापरासाठी"},
	{"apply on affected area", "प्रभावित भागावर लावा"},
	{"as directed", asDirected},
	{"as directed by physician", asDirected},
	{"once daily", "दिवसातून एकदा"},
	{"twice daily", "दिवसातून दोनदा"},
	{"thrice daily", "दिवसातून तीनदा"},
	{"morning", "सकाळी"},
	{"afternoon", "दुपारी"},
	{"evening", "संध्याकाळी"},
	{"night", "रात्री"},
	{"tablet", "गोळी"},
	{"tablets", "गोळ्या"},
	{"capsule", "कॅप्सूल"},
	{"capsules", "कॅप्सूल"},
	{"syrup", "सिरप"},
	{"ml", "मिली"},
	{"drops", "थेंब"},
	{"teaspoon", "चमचा"},
	{"tablespoon", "मोठा चमचा"},
	{"days", "दिवस"},
	{"day", "दिवस"},
	{"week", "आठवडा"},
	{"weeks", "आठवडे"},
	{"month", "महिना"},
	{"months", "महिने"},
	{"male", "पुरुष"},
	{"female", "स्त्री"},
	{"other", "इतर"},
	{"years", "वर्षे"},
	{"yrs", "वर्षे"},
}

var exactPhrases = func() map[string]string {
	m := make(map[string]string, len(phrases))
	for _, p := range phrases {
		if _, ok := m[p.en]; !ok {
			m[p.en] = p.mr
		}
	}
	return m
}()

// TranslateToMarathi renders an English instruction for the bilingual
// templates. Whole-phrase matches are used as is; otherwise every known
// phrase is replaced in table order.
func TranslateToMarathi(text string) string {
	if text == "" {
		return asDirected
	}
	result := strings.ToLower(text)
	if mr, ok := exactPhrases[result]; ok {
		return mr
	}
	for _, p := range phrases {
		result = strings.ReplaceAll(result, p.en, p.mr)
	}
	return upperFirst(result)
}

var dosageWords = strings.NewReplacer(
	"Morning", "सकाळी", "morning", "सकाळी",
	"Afternoon", "दुपारी", "afternoon", "दुपारी",
	"Evening", "संध्याकाळी", "evening", "संध्याकाळी",
	"Night", "रात्री", "night", "रात्री",
)

// TranslateDosage replaces the times of day in a dosage string.
func TranslateDosage(s string) string {
	return dosageWords.Replace(s)
}

// DosageString lists the selected times of day, e.g. "Morning, Night".
func DosageString(d prescription.Dosage) string {
	var parts []string
	if d.Morning {
		parts = append(parts, "Morning")
	}
	if d.Afternoon {
		parts = append(parts, "Afternoon")
	}
	if d.Night {
		parts = append(parts, "Night")
	}
	return strings.Join(parts, ", ")
}

// TimingLines holds the compact opening hours: double-slot day ranges and
// single-slot day ranges, printed on separate lines.
type TimingLines struct {
	DoubleLine []string `json:"doubleLine"`
	SingleLine []string `json:"singleLine"`
}

// Empty reports whether no open day produced a line.
func (t TimingLines) Empty() bool {
	return len(t.DoubleLine) == 0 && len(t.SingleLine) == 0
}

var dayAbbr = map[string]string{
	"Monday": "Mon", "Tuesday": "Tue", "Wednesday": "Wed", "Thursday": "Thu",
	"Friday": "Fri", "Saturday": "Sat", "Sunday": "Sun",
}

var dayIndex = func() map[string]int {
	m := make(map[string]int, len(clinicsettings.Weekdays))
	for i, d := range clinicsettings.Weekdays {
		m[d] = i
	}
	return m
}()

// FormatClinicTimings collapses the weekly timings into day ranges such as
// "Mon-Fri: 9:00AM-1:00PM, 5:00PM-9:00PM". Open days that follow each other
// in the week and share the same slots are merged.
func FormatClinicTimings(timings []clinicsettings.Timing) TimingLines {
	var open []clinicsettings.Timing
	for _, t := range timings {
		if t.IsOpen {
			open = append(open, t)
		}
	}

	var out TimingLines
	for i := 0; i < len(open); {
		cur := open[i]
		j := i
		for j+1 < len(open) && adjacent(open[j], open[j+1]) && sameTiming(open[j+1], cur) {
			j++
		}

		label := dayAbbr[cur.Day]
		if j > i {
			label += "-" + dayAbbr[open[j].Day]
		}
		if slots := timeSlots(cur); slots != "" {
			line := label + ": " + slots
			if cur.SlotType == clinicsettings.SlotSingle {
				out.SingleLine = append(out.SingleLine, line)
			} else {
				out.DoubleLine = append(out.DoubleLine, line)
			}
		}
		i = j + 1
	}
	return out
}

// TimingSummary is FormatClinicTimings on one line, joined with " | ".
func TimingSummary(timings []clinicsettings.Timing) string {
	lines := FormatClinicTimings(timings)
	all := append(append([]string{}, lines.DoubleLine...), lines.SingleLine...)
	return strings.Join(all, " | ")
}

func adjacent(a, b clinicsettings.Timing) bool {
	ia, okA := dayIndex[a.Day]
	ib, okB := dayIndex[b.Day]
	return okA && okB && ib == ia+1
}

func sameTiming(a, b clinicsettings.Timing) bool {
	if a.SlotType != b.SlotType {
		return false
	}
	if a.SlotType == clinicsettings.SlotSingle {
		return a.SingleStart == b.SingleStart && a.SingleEnd == b.SingleEnd
	}
	return a.MorningStart == b.MorningStart && a.MorningEnd == b.MorningEnd &&
		a.EveningStart == b.EveningStart && a.EveningEnd == b.EveningEnd
}

func timeSlots(t clinicsettings.Timing) string {
	if t.SlotType == clinicsettings.SlotSingle {
		return slot(t.SingleStart, t.SingleEnd)
	}
	var parts []string
	if s := slot(t.MorningStart, t.MorningEnd); s != "" {
		parts = append(parts, s)
	}
	if s := slot(t.EveningStart, t.EveningEnd); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func slot(start, end string) string {
	if start == "" || end == "" {
		return ""
	}
	return clock12(start) + "-" + clock12(end)
}

// clock12 turns "17:30" into "5:30PM". Unparseable input is returned as is.
func clock12(hhmm string) string {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return hhmm
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return hhmm
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	switch {
	case hour > 12:
		hour -= 12
	case hour == 0:
		hour = 12
	}
	return fmt.Sprintf("%d:%s%s", hour, m, suffix)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
