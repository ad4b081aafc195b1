package health

import "strings"

type Kind string

const (
	KindVaccination Kind = "vaccination"
	KindMedication  Kind = "medication"
	KindWeight      Kind = "weight"
	KindVetVisit    Kind = "vet_visit"
	KindNote        Kind = "note"
)

// Kinds lists all valid kinds in presentation order.
func Kinds() []Kind {
	return []Kind{KindVaccination, KindMedication, KindWeight, KindVetVisit, KindNote}
}

func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindVaccination:
		return KindVaccination, true
	case KindMedication:
		return KindMedication, true
	case KindWeight:
		return KindWeight, true
	case KindVetVisit:
		return KindVetVisit, true
	case KindNote:
		return KindNote, true
	}
	return "", false
}

// HasDueCycle reports whether the kind carries a next-due date that the
// reminder scheduler should track.
func (k Kind) HasDueCycle() bool {
	return k == KindVaccination || k == KindMedication
}

var kindKeywords = map[Kind][]string{
	KindVaccination: {"vaccin", "shot", "immuni"},
	KindMedication:  {"medic", "pill", "tablet", "drops", "ointment", "dose"},
	KindWeight:      {"weigh", "kg", "gram"},
	KindVetVisit:    {"vet", "clinic", "checkup", "appointment", "exam"},
}

// DetectKind guesses a kind from a free-form note. Falls back to KindNote
// when no keyword matches.
func DetectKind(text string) Kind {
	lower := strings.ToLower(text)
	for _, k := range []Kind{KindVaccination, KindMedication, KindWeight, KindVetVisit} {
		for _, kw := range kindKeywords[k] {
			if strings.Contains(lower, kw) {
				return k
			}
		}
	}
	return KindNote
}
