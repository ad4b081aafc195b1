package dialog

import (
	"context"
	"strings"

	"pet-health-bot/internal/domain/apperr"
)

func (e *Engine) startReportFlow(ctx context.Context, s *session, petID string) []Outbound {
	if petID != "" {
		return e.sendReport(ctx, s, petID)
	}

	list, err := e.pets.ListByOwner(ctx, s.userID)
	if err != nil {
		return e.storeFail(s, err)
	}
	switch len(list) {
	case 0:
		return e.say(s, "Add a pet first!", Button{Label: "Add a pet", Payload: "add_pet"})
	case 1:
		return e.sendReport(ctx, s, list[0].ID)
	default:
		s.state = StateAwaitingReportSelect
		buttons := make([]Button, 0, len(list))
		for _, p := range list {
			buttons = append(buttons, Button{Label: p.Name, Payload: "pet:" + p.ID})
		}
		return e.say(s, "Whose report should I prepare?", buttons...)
	}
}

// handleReportSelection accepts either a pet button or a typed pet name.
func (e *Engine) handleReportSelection(ctx context.Context, s *session, cmd, arg, payload string, isCmd bool) []Outbound {
	if isCmd {
		if cmd != "pet" {
			return e.say(s, "Pick a pet for the report, or /cancel.")
		}
		return e.sendReport(ctx, s, arg)
	}

	list, err := e.pets.ListByOwner(ctx, s.userID)
	if err != nil {
		return e.storeFail(s, err)
	}
	name := strings.TrimSpace(payload)
	for _, p := range list {
		if strings.EqualFold(p.Name, name) {
			return e.sendReport(ctx, s, p.ID)
		}
	}
	return e.say(s, "I don't have a pet by that name. Pick one of the buttons, or /cancel.")
}

func (e *Engine) sendReport(ctx context.Context, s *session, petID string) []Outbound {
	if e.reports == nil {
		e.reset(s)
		return e.say(s, "Reports aren't available right now.")
	}

	filename, data, err := e.reports.Generate(ctx, s.userID, petID)
	switch {
	case err == nil:
	case apperr.IsStore(err):
		// Keep the selection state so the user can just try again.
		return e.storeFail(s, err)
	case apperr.IsNotFound(err):
		e.reset(s)
		return e.say(s, "I couldn't find that pet.")
	default:
		e.logger.Error("report generation failed", "user_id", s.userID, "pet_id", petID, "error", err)
		e.reset(s)
		return e.say(s, "I couldn't put the report together. Please try again later.")
	}

	e.reset(s)
	return []Outbound{{
		UserID: s.userID,
		Text:   "📄 Here's the health history — ready for the vet.",
		Attachment: &Attachment{
			Filename: filename,
			Bytes:    data,
			MIMEType: "application/pdf",
		},
	}}
}
