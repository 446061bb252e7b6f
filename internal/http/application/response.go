package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

type applicationResponse struct {
	ID               uuid.UUID            `json:"id"`
	URN              string               `json:"urn"`
	ScholarshipID    uuid.UUID            `json:"scholarship_id"`
	ScholarshipTitle string               `json:"scholarship_title"`
	StudentID        uuid.UUID            `json:"student_id"`
	Amount           int64                `json:"amount"`
	AmountDisplay    string               `json:"amount_display"`
	Status           application.Status   `json:"status"`
	Form             application.Form     `json:"form"`
	Documents        map[string]string    `json:"documents"`
	ReviewerRemarks  *string              `json:"reviewer_remarks"`
	FinanceRemarks   *string              `json:"finance_remarks"`
	PaymentReference string               `json:"payment_reference,omitempty"`
	AppliedDate      time.Time            `json:"applied_date"`
	LastUpdated      time.Time            `json:"last_updated"`
	Actions          []application.Action `json:"available_actions"`
}

type transitionResponse struct {
	ID        uuid.UUID          `json:"id"`
	From      application.Status `json:"from_status"`
	To        application.Status `json:"to_status"`
	Action    application.Action `json:"action"`
	ActorRole application.Role   `json:"actor_role"`
	ActorID   *uuid.UUID         `json:"actor_id,omitempty"`
	Remarks   *string            `json:"remarks,omitempty"`
	Amount    *int64             `json:"amount,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func toResponse(app *application.Application, role application.Role) applicationResponse {
	resp := applicationResponse{
		ID:               app.ID,
		URN:              app.URN,
		ScholarshipID:    app.ScholarshipID,
		ScholarshipTitle: app.ScholarshipTitle,
		StudentID:        app.StudentID,
		Amount:           app.Amount,
		AmountDisplay:    catalog.FormatAmount(app.Amount),
		Status:           app.Status,
		Form:             app.Form,
		Documents:        app.Documents,
		ReviewerRemarks:  app.ReviewerRemarks,
		FinanceRemarks:   app.FinanceRemarks,
		PaymentReference: app.PaymentReference,
		AppliedDate:      app.AppliedDate,
		LastUpdated:      app.LastUpdated,
		Actions:          application.ActionsFor(app.Status, role),
	}

	if resp.Documents == nil {
		resp.Documents = map[string]string{}
	}

	if resp.Actions == nil {
		resp.Actions = []application.Action{}
	}

	return resp
}

func toResponseList(apps []*application.Application, role application.Role) []applicationResponse {
	responses := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, toResponse(app, role))
	}

	return responses
}

func toTransitionResponseList(transitions []*application.Transition) []transitionResponse {
	responses := make([]transitionResponse, 0, len(transitions))
	for _, t := range transitions {
		responses = append(responses, transitionResponse{
			ID:        t.ID,
			From:      t.From,
			To:        t.To,
			Action:    t.Action,
			ActorRole: t.ActorRole,
			ActorID:   t.ActorID,
			Remarks:   t.Remarks,
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
		})
	}

	return responses
}
