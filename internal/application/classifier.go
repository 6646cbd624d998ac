package application

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Input is the classified form of one inbound message. The concrete types
// below are the only implementations.
type Input interface {
	Kind() string
}

// DateInput is a day/month with an optional year (zero when omitted). The
// values are not yet checked against the calendar.
type DateInput struct {
	Day   int
	Month int
	Year  int
}

// TimeInput is a start time as typed; range checks happen later.
type TimeInput struct {
	Hour   int
	Minute int
}

// ResourceSelection is a court number.
type ResourceSelection struct {
	ResourceID int
}

// Affirmation is a bare "si".
type Affirmation struct{}

// Cancellation asks to abandon the dialogue in progress.
type Cancellation struct{}

// Unknown is anything else.
type Unknown struct {
	Text string
}

func (DateInput) Kind() string         { return "date" }
func (TimeInput) Kind() string         { return "time" }
func (ResourceSelection) Kind() string { return "resource" }
func (Affirmation) Kind() string       { return "affirmation" }
func (Cancellation) Kind() string      { return "cancellation" }
func (Unknown) Kind() string           { return "unknown" }

var (
	datePattern     = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})(?:[-/](\d{4}|\d{2}))?$`)
	timePattern     = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	resourcePattern = regexp.MustCompile(`^\d{1,2}$`)
)

const tokenPunctuation = ".,;:!?¡¿()\"'"

// Classify maps a message body to an Input. A date-shaped token wins in
// every step; times are only recognised while a time is expected and court
// numbers only while a court is expected.
func Classify(body string, step Step) Input {
	folded := fold(body)
	tokens := tokenize(folded)

	for _, token := range tokens {
		if m := datePattern.FindStringSubmatch(token); m != nil {
			in := DateInput{Day: atoi(m[1]), Month: atoi(m[2])}
			if m[3] != "" {
				in.Year = atoi(m[3])
				if len(m[3]) == 2 {
					in.Year += 2000
				}
			}
			return in
		}
	}

	if step == StepAwaitingTime {
		for _, token := range tokens {
			if m := timePattern.FindStringSubmatch(token); m != nil {
				return TimeInput{Hour: atoi(m[1]), Minute: atoi(m[2])}
			}
		}
	}

	if step == StepAwaitingResource {
		for _, token := range tokens {
			if resourcePattern.MatchString(token) {
				return ResourceSelection{ResourceID: atoi(token)}
			}
		}
	}

	switch strings.Join(tokens, " ") {
	case "si":
		return Affirmation{}
	case "cancelar", "salir":
		return Cancellation{}
	}
	return Unknown{Text: strings.TrimSpace(body)}
}

// fold lower-cases text and strips diacritics so "Sí" and "si" compare equal.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, text)
	if err != nil {
		return strings.ToLower(text)
	}
	return folded
}

func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := fields[:0]
	for _, field := range fields {
		field = strings.Trim(field, tokenPunctuation)
		if field != "" {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
