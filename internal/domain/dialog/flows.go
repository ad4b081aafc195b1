package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

// --- add-pet flow ---

func (e *Engine) handlePetName(s *session, payload string, isCmd bool) []Outbound {
	if isCmd {
		return e.say(s, "I'm waiting for the pet's name. Type it, or /cancel.")
	}
	name := strings.TrimSpace(payload)
	if name == "" {
		return e.say(s, "The name can't be empty. What's your pet's name?")
	}
	if len([]rune(name)) > 64 {
		return e.say(s, "That name is a bit long. Something under 64 characters, please?")
	}

	s.pet.Name = name
	s.state = StateAwaitingPetSpecies
	return e.say(s,
		fmt.Sprintf("%s — great name! Is it a cat or a dog?", name),
		speciesButtons()...,
	)
}

func (e *Engine) handlePetSpecies(s *session, cmd, arg, payload string, isCmd bool) []Outbound {
	answer := payload
	if isCmd {
		if cmd != "species" {
			return e.say(s, "Pick a species, or /cancel.", speciesButtons()...)
		}
		answer = arg
	}

	sp, ok := pets.ParseSpecies(answer)
	if !ok {
		return e.say(s, "I only know cats, dogs and \"other\". Which is it?", speciesButtons()...)
	}

	s.pet.Species = sp
	s.state = StateAwaitingPetBirthdate
	return e.say(s,
		fmt.Sprintf("When was %s born? Reply with a date like %s, or skip.", s.pet.Name, dateLayout),
		skipButton(),
	)
}

func (e *Engine) handlePetBirthdate(ctx context.Context, s *session, cmd, payload string, isCmd bool) []Outbound {
	if (isCmd && cmd == "skip") || strings.EqualFold(strings.TrimSpace(payload), "skip") {
		return e.commitPet(ctx, s)
	}
	if isCmd {
		return e.say(s, "Reply with the birth date ("+dateLayout+"), skip, or /cancel.", skipButton())
	}

	d, err := parseDate(payload)
	if err != nil {
		return e.say(s, "That doesn't look like a date. Use "+dateLayout+", or skip.", skipButton())
	}
	if d.After(health.DateOf(e.now())) {
		return e.say(s, "A birth date in the future? Try again, or skip.", skipButton())
	}

	s.pet.BirthDate = &d
	return e.commitPet(ctx, s)
}

// commitPet writes the accumulated draft in a single store call. On a
// store failure the draft and state survive for a retry.
func (e *Engine) commitPet(ctx context.Context, s *session) []Outbound {
	p, err := e.pets.Create(ctx, s.userID, pets.CreateInput{
		Name:      s.pet.Name,
		Species:   s.pet.Species,
		BirthDate: s.pet.BirthDate,
	})
	if err != nil {
		if apperr.IsStore(err) {
			return e.storeFail(s, err)
		}
		e.logger.Warn("pet draft rejected", "user_id", s.userID, "error", err)
		return e.say(s, "Hmm, that didn't work: "+userMessage(err)+"\nLet's finish the birth date step.", skipButton())
	}

	e.reset(s)
	return e.say(s,
		fmt.Sprintf("🎉 %s added!\n\nSend me notes any time, or use the buttons.", p.Name),
		mainButtons()...,
	)
}

// --- add-event flow ---

func (e *Engine) startEventFlow(ctx context.Context, s *session, petID string) []Outbound {
	if petID == "" {
		list, err := e.pets.ListByOwner(ctx, s.userID)
		if err != nil {
			return e.storeFail(s, err)
		}
		switch len(list) {
		case 0:
			return e.say(s, "Add a pet first!", Button{Label: "Add a pet", Payload: "add_pet"})
		case 1:
			return e.beginEvent(s, list[0])
		default:
			buttons := make([]Button, 0, len(list))
			for _, p := range list {
				buttons = append(buttons, Button{Label: p.Name, Payload: "add_event_for:" + p.ID})
			}
			return e.say(s, "Which pet is this about?", buttons...)
		}
	}

	p, err := e.pets.Get(ctx, s.userID, petID)
	if err != nil {
		if apperr.IsStore(err) {
			return e.storeFail(s, err)
		}
		return e.say(s, "I couldn't find that pet.")
	}
	return e.beginEvent(s, p)
}

func (e *Engine) beginEvent(s *session, p pets.Pet) []Outbound {
	s.event = &eventDraft{PetID: p.ID, PetName: p.Name}
	s.state = StateAwaitingEventKind
	return e.say(s, fmt.Sprintf("What happened with %s?", p.Name), kindButtons()...)
}

func (e *Engine) handleEventKind(s *session, cmd, arg, payload string, isCmd bool) []Outbound {
	answer := payload
	if isCmd {
		if cmd != "kind" {
			return e.say(s, "Pick an event kind, or /cancel.", kindButtons()...)
		}
		answer = arg
	}

	k, ok := health.ParseKind(answer)
	if !ok {
		return e.say(s, "I didn't get that. Pick one of the kinds below.", kindButtons()...)
	}

	s.event.Kind = k
	s.state = StateAwaitingEventDate
	return e.say(s,
		"When did it happen? Reply with "+dateLayout+".",
		Button{Label: "Today", Payload: "today"},
	)
}

func (e *Engine) handleEventDate(s *session, cmd, payload string, isCmd bool) []Outbound {
	var d time.Time
	switch {
	case isCmd && cmd == "today":
		d = health.DateOf(e.now())
	case isCmd:
		return e.say(s, "Reply with the date ("+dateLayout+"), or /cancel.", Button{Label: "Today", Payload: "today"})
	default:
		parsed, err := parseDate(payload)
		if err != nil {
			return e.say(s, "That doesn't look like a date. Use "+dateLayout+".", Button{Label: "Today", Payload: "today"})
		}
		if parsed.After(health.DateOf(e.now())) {
			return e.say(s, "That date is in the future. When did it actually happen?", Button{Label: "Today", Payload: "today"})
		}
		d = parsed
	}

	s.event.OccurredOn = d
	s.state = StateAwaitingEventDetail
	return e.say(s, "Describe it: the vaccine or medicine, the weight, what the vet said…")
}

func (e *Engine) handleEventDetail(ctx context.Context, s *session, payload string, isCmd bool) []Outbound {
	if isCmd {
		return e.say(s, "I'm waiting for a short description. Type it, or /cancel.")
	}
	detail := strings.TrimSpace(payload)
	if detail == "" {
		return e.say(s, "The description can't be empty. What happened?")
	}

	s.event.Detail = detail
	if s.event.Kind.HasDueCycle() {
		s.state = StateAwaitingEventNextDue
		return e.say(s,
			"When is the next one due? Reply with "+dateLayout+", or skip.",
			skipButton(),
		)
	}
	return e.commitEvent(ctx, s)
}

func (e *Engine) handleEventNextDue(ctx context.Context, s *session, cmd, payload string, isCmd bool) []Outbound {
	if (isCmd && cmd == "skip") || strings.EqualFold(strings.TrimSpace(payload), "skip") {
		return e.commitEvent(ctx, s)
	}
	if isCmd {
		return e.say(s, "Reply with the next due date ("+dateLayout+"), skip, or /cancel.", skipButton())
	}

	d, err := parseDate(payload)
	if err != nil {
		return e.say(s, "That doesn't look like a date. Use "+dateLayout+", or skip.", skipButton())
	}
	if !d.After(s.event.OccurredOn) {
		return e.say(s, "The next due date has to be after "+s.event.OccurredOn.Format(dateLayout)+". Try again, or skip.", skipButton())
	}

	s.event.NextDue = &d
	return e.commitEvent(ctx, s)
}

func (e *Engine) commitEvent(ctx context.Context, s *session) []Outbound {
	ev, err := e.health.Create(ctx, s.userID, s.event.PetID, health.CreateInput{
		Kind:       s.event.Kind,
		OccurredOn: s.event.OccurredOn,
		Detail:     s.event.Detail,
		NextDue:    s.event.NextDue,
	})
	if err != nil {
		if apperr.IsStore(err) {
			return e.storeFail(s, err)
		}
		e.logger.Warn("event draft rejected", "user_id", s.userID, "error", err)
		return e.say(s, "Hmm, that didn't work: "+userMessage(err)+"\nAnswer the last question again, or /cancel.")
	}

	name := s.event.PetName
	e.reset(s)

	text := fmt.Sprintf("✅ Saved: %s for %s on %s.", ev.Kind, name, ev.OccurredOn.Format(dateLayout))
	if ev.NextDue != nil {
		text += fmt.Sprintf("\n🔔 I'll remind you around %s.", ev.NextDue.Format(dateLayout))
	}
	return e.say(s, text)
}

// --- shared helpers ---

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return health.DateOf(t), nil
}

// userMessage extracts the human-readable part of a validation error.
func userMessage(err error) string {
	msg := err.Error()
	// goerr chains join with ": "; the leading segment is ours.
	if i := strings.Index(msg, ":"); i > 0 {
		msg = msg[:i]
	}
	return msg
}

func speciesButtons() []Button {
	return []Button{
		{Label: "🐱 Cat", Payload: "species:cat"},
		{Label: "🐶 Dog", Payload: "species:dog"},
		{Label: "🐹 Other", Payload: "species:other"},
	}
}

func kindButtons() []Button {
	labels := map[health.Kind]string{
		health.KindVaccination: "💉 Vaccination",
		health.KindMedication:  "💊 Medication",
		health.KindWeight:      "⚖️ Weight",
		health.KindVetVisit:    "🏥 Vet visit",
		health.KindNote:        "📝 Note",
	}
	buttons := make([]Button, 0, len(labels))
	for _, k := range health.Kinds() {
		buttons = append(buttons, Button{Label: labels[k], Payload: "kind:" + string(k)})
	}
	return buttons
}

func skipButton() Button {
	return Button{Label: "Skip", Payload: "skip"}
}
