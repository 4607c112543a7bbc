package models

// Status is a restaurant availability value. Three vocabularies exist:
// the form offers "Open Now"/"Closed", the store returns "Open"/"Closed" at
// two nesting levels, and the store expects "Open"/"Closed" on writes.
type Status string

const (
	StatusOpen    Status = "Open"
	StatusClosed  Status = "Closed"
	StatusOpenNow Status = "Open Now"
)

// statusVocabulary maps each display state to its form and wire spelling.
// Every translation in the module goes through this table.
var statusVocabulary = []struct {
	display Status
	form    Status
	wire    Status
}{
	{display: StatusOpen, form: StatusOpenNow, wire: StatusOpen},
	{display: StatusClosed, form: StatusClosed, wire: StatusClosed},
}

// StatusFromRead resolves the display status of a raw store record.
// The record is closed when either the nested restaurant status or the
// top-level status says so.
func StatusFromRead(nested, topLevel string) Status {
	if Status(nested) == StatusClosed || Status(topLevel) == StatusClosed {
		return StatusClosed
	}
	return StatusOpen
}

// WireStatus translates a display or form status into the store's write
// vocabulary. Unknown values are passed through unchanged.
func WireStatus(s Status) Status {
	for _, v := range statusVocabulary {
		if s == v.display || s == v.form {
			return v.wire
		}
	}
	return s
}

// FormStatus translates a display status into the form vocabulary.
// Anything that is not closed is shown as open.
func FormStatus(s Status) Status {
	for _, v := range statusVocabulary {
		if s == v.display || s == v.form {
			return v.form
		}
	}
	return StatusOpenNow
}

// FormStatuses lists the values the form accepts.
func FormStatuses() []Status {
	out := make([]Status, 0, len(statusVocabulary))
	for _, v := range statusVocabulary {
		out = append(out, v.form)
	}
	return out
}

// ValidFormStatus reports whether s is one of the form values.
func ValidFormStatus(s Status) bool {
	for _, v := range statusVocabulary {
		if s == v.form {
			return true
		}
	}
	return false
}
