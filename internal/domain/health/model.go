package health

import "time"

// Event is a single entry in a pet's health history. Events are immutable
// once created, except for LastNotified which the reminder scheduler
// advances to dedupe deliveries within one due cycle.
type Event struct {
	ID    string
	PetID string

	Kind Kind

	// OccurredOn is the calendar day the event happened (midnight UTC).
	// Never after the creation date.
	OccurredOn time.Time
	RecordedAt time.Time

	Detail string

	// NextDue drives reminders for kinds with a due cycle. When set it is
	// strictly after OccurredOn.
	NextDue      *time.Time
	LastNotified *time.Time
}
