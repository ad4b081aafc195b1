package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

// Reporter produces a PDF history for one of ownerID's pets. Satisfied by
// *report.Service.
type Reporter interface {
	Generate(ctx context.Context, ownerID, petID string) (filename string, data []byte, err error)
}

type petDraft struct {
	Name      string
	Species   pets.Species
	BirthDate *time.Time
}

type eventDraft struct {
	PetID      string
	PetName    string
	Kind       health.Kind
	OccurredOn time.Time
	Detail     string
	NextDue    *time.Time
}

// session holds one user's conversation state. Drafts are immutable from
// the store's point of view: nothing is written until a flow completes.
type session struct {
	mu     sync.Mutex
	userID string
	state  State
	pet    *petDraft
	event  *eventDraft
}

// Engine is the finite-state conversation controller. Events for one user
// are processed strictly in arrival order (the session mutex), while
// distinct users proceed concurrently on disjoint owner-scoped data.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*session

	pets    *pets.Service
	health  *health.Service
	reports Reporter

	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(petsSvc *pets.Service, healthSvc *health.Service, reports Reporter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sessions: make(map[string]*session),
		pets:     petsSvc,
		health:   healthSvc,
		reports:  reports,
		logger:   logger,
		now:      time.Now,
	}
}

func (e *Engine) session(userID string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		s = &session{userID: userID, state: StateIdle}
		e.sessions[userID] = s
	}
	return s
}

// Handle consumes one inbound event and returns the outbound instructions
// for the bot adapter. User-facing failures become messages, never errors.
func (e *Engine) Handle(ctx context.Context, in Inbound) []Outbound {
	s := e.session(in.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, arg, isCmd := classify(in)

	if isCmd && cmd == "cancel" {
		return e.cancel(s)
	}

	switch s.state {
	case StateIdle:
		return e.handleIdle(ctx, s, cmd, arg, in.Payload, isCmd)
	case StateAwaitingPetName:
		return e.handlePetName(s, in.Payload, isCmd)
	case StateAwaitingPetSpecies:
		return e.handlePetSpecies(s, cmd, arg, in.Payload, isCmd)
	case StateAwaitingPetBirthdate:
		return e.handlePetBirthdate(ctx, s, cmd, in.Payload, isCmd)
	case StateAwaitingEventKind:
		return e.handleEventKind(s, cmd, arg, in.Payload, isCmd)
	case StateAwaitingEventDate:
		return e.handleEventDate(s, cmd, in.Payload, isCmd)
	case StateAwaitingEventDetail:
		return e.handleEventDetail(ctx, s, in.Payload, isCmd)
	case StateAwaitingEventNextDue:
		return e.handleEventNextDue(ctx, s, cmd, in.Payload, isCmd)
	case StateAwaitingReportSelect:
		return e.handleReportSelection(ctx, s, cmd, arg, in.Payload, isCmd)
	default:
		e.logger.Warn("session in unknown state, resetting", "user_id", s.userID, "state", s.state)
		e.reset(s)
		return e.say(s, msgHelp)
	}
}

// classify splits an inbound event into a structured command and its
// argument. Button payloads are always commands; text is a command only
// when it starts with "/".
func classify(in Inbound) (cmd, arg string, ok bool) {
	payload := strings.TrimSpace(in.Payload)
	switch in.Kind {
	case InboundButton:
	case InboundText:
		if !strings.HasPrefix(payload, "/") {
			return "", "", false
		}
		payload = strings.TrimPrefix(payload, "/")
	default:
		return "", "", false
	}

	cmd = strings.ToLower(payload)
	if i := strings.Index(payload, ":"); i >= 0 {
		cmd = strings.ToLower(payload[:i])
		arg = payload[i+1:]
	}
	return cmd, arg, true
}

func (e *Engine) cancel(s *session) []Outbound {
	if s.state == StateIdle {
		return e.say(s, "Nothing to cancel.")
	}
	s.state = StateCancelled
	e.reset(s)
	return e.say(s, "Cancelled. The draft was discarded.")
}

func (e *Engine) reset(s *session) {
	s.state = StateIdle
	s.pet = nil
	s.event = nil
}

func (e *Engine) say(s *session, text string, buttons ...Button) []Outbound {
	return []Outbound{{UserID: s.userID, Text: text, Buttons: buttons}}
}

// storeFail reports a persistence failure without touching the session, so
// the user can answer again and retry the same step.
func (e *Engine) storeFail(s *session, err error) []Outbound {
	e.logger.Error("store failure", "user_id", s.userID, "state", s.state, "error", err)
	return e.say(s, "Something went wrong on my side. Please try again in a moment — nothing was lost.")
}

func (e *Engine) handleIdle(ctx context.Context, s *session, cmd, arg, payload string, isCmd bool) []Outbound {
	if !isCmd {
		return e.quickNote(ctx, s, payload)
	}

	switch cmd {
	case "start", "help":
		return e.say(s, msgHelp, mainButtons()...)

	case "add_pet":
		s.pet = &petDraft{}
		s.state = StateAwaitingPetName
		return e.say(s, "What's your pet's name?")

	case "add_event", "add_event_for":
		return e.startEventFlow(ctx, s, arg)

	case "report":
		return e.startReportFlow(ctx, s, arg)

	case "pets":
		return e.listPets(ctx, s)

	case "history", "history_for":
		return e.history(ctx, s, arg)

	case "delete_pet":
		return e.deletePetPrompt(ctx, s, arg)

	case "confirm_delete":
		return e.deletePet(ctx, s, arg)

	default:
		return e.say(s, "I don't know that command. "+msgHelp, mainButtons()...)
	}
}

// quickNote saves free text in Idle directly as a note-style event when
// the user has exactly one pet, guessing the kind from keywords. With no
// pets it starts onboarding instead.
func (e *Engine) quickNote(ctx context.Context, s *session, text string) []Outbound {
	text = strings.TrimSpace(text)
	if text == "" {
		return e.say(s, msgHelp, mainButtons()...)
	}

	list, err := e.pets.ListByOwner(ctx, s.userID)
	if err != nil {
		return e.storeFail(s, err)
	}

	switch len(list) {
	case 0:
		s.pet = &petDraft{}
		s.state = StateAwaitingPetName
		return e.say(s, "Hi! Let's add your pet first. 🐾\n\nWhat's your pet's name?")
	case 1:
		kind := health.DetectKind(text)
		_, err := e.health.Create(ctx, s.userID, list[0].ID, health.CreateInput{
			Kind:       kind,
			OccurredOn: e.now(),
			Detail:     text,
		})
		if err != nil {
			if apperr.IsStore(err) {
				return e.storeFail(s, err)
			}
			return e.say(s, "I couldn't save that as a note. "+msgHelp, mainButtons()...)
		}
		return e.say(s, fmt.Sprintf("✅ Saved for %s (%s).", list[0].Name, kind))
	default:
		return e.say(s, "You have several pets — use the buttons so I know which one you mean.", mainButtons()...)
	}
}

func (e *Engine) listPets(ctx context.Context, s *session) []Outbound {
	list, err := e.pets.ListByOwner(ctx, s.userID)
	if err != nil {
		return e.storeFail(s, err)
	}
	if len(list) == 0 {
		return e.say(s, "No pets yet.", Button{Label: "Add a pet", Payload: "add_pet"})
	}

	var b strings.Builder
	b.WriteString("Your pets:\n")
	for _, p := range list {
		b.WriteString("— " + p.Name + " (" + string(p.Species))
		if p.BirthDate != nil {
			b.WriteString(", born " + p.BirthDate.Format(dateLayout))
		}
		b.WriteString(")\n")
	}
	return e.say(s, b.String())
}

func (e *Engine) deletePetPrompt(ctx context.Context, s *session, petID string) []Outbound {
	if petID == "" {
		list, err := e.pets.ListByOwner(ctx, s.userID)
		if err != nil {
			return e.storeFail(s, err)
		}
		if len(list) == 0 {
			return e.say(s, "No pets to delete.")
		}
		buttons := make([]Button, 0, len(list))
		for _, p := range list {
			buttons = append(buttons, Button{Label: p.Name, Payload: "delete_pet:" + p.ID})
		}
		return e.say(s, "Which pet should I delete?", buttons...)
	}

	p, err := e.pets.Get(ctx, s.userID, petID)
	if err != nil {
		if apperr.IsStore(err) {
			return e.storeFail(s, err)
		}
		return e.say(s, "I couldn't find that pet.")
	}
	return e.say(s,
		fmt.Sprintf("Delete %s and the whole health history? This cannot be undone.", p.Name),
		Button{Label: "Yes, delete", Payload: "confirm_delete:" + p.ID},
		Button{Label: "Keep", Payload: "cancel"},
	)
}

func (e *Engine) deletePet(ctx context.Context, s *session, petID string) []Outbound {
	p, err := e.pets.Get(ctx, s.userID, petID)
	if err == nil {
		err = e.pets.Delete(ctx, s.userID, petID)
	}
	if err != nil {
		if apperr.IsStore(err) {
			return e.storeFail(s, err)
		}
		return e.say(s, "I couldn't find that pet.")
	}
	return e.say(s, fmt.Sprintf("🗑 %s and the health history were deleted.", p.Name))
}

func (e *Engine) history(ctx context.Context, s *session, petID string) []Outbound {
	list, err := e.pets.ListByOwner(ctx, s.userID)
	if err != nil {
		return e.storeFail(s, err)
	}
	if len(list) == 0 {
		return e.say(s, "No pets yet.", Button{Label: "Add a pet", Payload: "add_pet"})
	}

	var pet pets.Pet
	switch {
	case petID != "":
		p, err := e.pets.Get(ctx, s.userID, petID)
		if err != nil {
			if apperr.IsStore(err) {
				return e.storeFail(s, err)
			}
			return e.say(s, "I couldn't find that pet.")
		}
		pet = p
	case len(list) == 1:
		pet = list[0]
	default:
		buttons := make([]Button, 0, len(list))
		for _, p := range list {
			buttons = append(buttons, Button{Label: p.Name, Payload: "history_for:" + p.ID})
		}
		return e.say(s, "Whose history?", buttons...)
	}

	events, err := e.health.ListByPet(ctx, s.userID, pet.ID)
	if err != nil {
		if apperr.IsStore(err) {
			return e.storeFail(s, err)
		}
		return e.say(s, "I couldn't find that pet.")
	}
	if len(events) == 0 {
		return e.say(s, fmt.Sprintf("%s has no records yet. Send me a note or add an event!", pet.Name))
	}

	// Most recent first, capped for chat readability. The PDF report
	// carries the full timeline.
	const maxShown = 10
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Latest records for %s:\n\n", pet.Name)
	shown := 0
	for i := len(events) - 1; i >= 0 && shown < maxShown; i-- {
		ev := events[i]
		fmt.Fprintf(&b, "— %s · %s\n  %s\n", ev.OccurredOn.Format(dateLayout), ev.Kind, ev.Detail)
		if ev.NextDue != nil {
			fmt.Fprintf(&b, "  next due %s\n", ev.NextDue.Format(dateLayout))
		}
		shown++
	}
	return e.say(s, b.String())
}

const dateLayout = "2006-01-02"

const msgHelp = "I keep your pet's health history. You can:\n" +
	"— add a pet or a health event with the buttons\n" +
	"— just send me a note and I'll file it\n" +
	"— ask for the history or a PDF report for the vet"

func mainButtons() []Button {
	return []Button{
		{Label: "🐾 Add pet", Payload: "add_pet"},
		{Label: "➕ Add event", Payload: "add_event"},
		{Label: "📋 History", Payload: "history"},
		{Label: "📄 PDF report", Payload: "report"},
		{Label: "My pets", Payload: "pets"},
	}
}
