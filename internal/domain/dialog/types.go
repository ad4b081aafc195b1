package dialog

// State is the position of a session inside a flow. One flow runs from
// Idle back to Idle.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingPetName      State = "awaiting_pet_name"
	StateAwaitingPetSpecies   State = "awaiting_pet_species"
	StateAwaitingPetBirthdate State = "awaiting_pet_birthdate"
	StateAwaitingEventKind    State = "awaiting_event_kind"
	StateAwaitingEventDate    State = "awaiting_event_date"
	StateAwaitingEventDetail  State = "awaiting_event_detail"
	StateAwaitingEventNextDue State = "awaiting_event_next_due"
	StateAwaitingReportSelect State = "awaiting_report_selection"
	// StateCancelled is transient: a cancel command passes through it and
	// lands on Idle within the same Handle call.
	StateCancelled State = "cancelled"
)

type InboundKind string

const (
	InboundText   InboundKind = "text"
	InboundButton InboundKind = "button_press"
)

// Inbound is one raw event from the bot adapter.
type Inbound struct {
	UserID  string
	Kind    InboundKind
	Payload string
}

type Button struct {
	Label   string
	Payload string
}

type Attachment struct {
	Filename string
	Bytes    []byte
	MIMEType string
}

// Outbound is one instruction for the bot adapter: a prompt, a
// confirmation, or a generated report.
type Outbound struct {
	UserID     string
	Text       string
	Buttons    []Button
	Attachment *Attachment
}
