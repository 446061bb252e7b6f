package application

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDisbursalRemarks is recorded when finance disburses without remarks.
const DefaultDisbursalRemarks = "Payment processed successfully."

type remarksOwner int

const (
	remarksNone remarksOwner = iota
	remarksReviewer
	remarksFinance
)

type edge struct {
	from            Status
	action          Action
	role            Role
	to              Status
	owner           remarksOwner
	remarksRequired bool
	amountRequired  bool
}

var edges = []edge{
	{from: StatusPendingSAG, action: ActionApprove, role: RoleReviewer, to: StatusApprovedBySAG, owner: remarksReviewer},
	{from: StatusPendingSAG, action: ActionReject, role: RoleReviewer, to: StatusRejectedBySAG, owner: remarksReviewer, remarksRequired: true},
	{from: StatusApprovedBySAG, action: ActionForward, role: RoleSystem, to: StatusPendingFinance},
	{from: StatusPendingFinance, action: ActionDisburse, role: RoleFinance, to: StatusPaid, owner: remarksFinance, amountRequired: true},
	{from: StatusPendingFinance, action: ActionReject, role: RoleFinance, to: StatusRejectedByFinance, owner: remarksFinance, remarksRequired: true},
}

// TransitionRequest describes an actor asking to move an application.
type TransitionRequest struct {
	Action    Action
	ActorRole Role
	ActorID   *uuid.UUID
	Remarks   string
	// Amount is only read by disburse.
	Amount *int64
	// ExpectedStatus, when set, makes the transition a compare-and-swap on the current status.
	ExpectedStatus *Status
}

// Outcome is the validated effect of a transition, ready to be applied.
type Outcome struct {
	From    Status
	To      Status
	Action  Action
	Remarks *string
	Amount  *int64
	owner   remarksOwner
}

// Evaluate checks req against the current state of app without mutating it.
//
// Checks run in a fixed order: terminal state, student actors, the edge for the
// current status, role, then payload.
func Evaluate(app *Application, req TransitionRequest) (*Outcome, error) {
	if app.Status.Terminal() {
		return nil, &InvalidTransitionError{From: app.Status, Action: req.Action, Reason: ReasonTerminal}
	}

	if !actsOnWorkflow(req.ActorRole) {
		return nil, &AuthorizationError{Role: req.ActorRole, Action: req.Action}
	}

	candidates := edgesFrom(app.Status, req.Action)
	if len(candidates) == 0 {
		return nil, &InvalidTransitionError{From: app.Status, Action: req.Action, Reason: ReasonNotAllowed}
	}

	e, ok := edgeForRole(candidates, req.ActorRole)
	if !ok {
		allowed := make([]Role, 0, len(candidates))
		for _, c := range candidates {
			allowed = append(allowed, c.role)
		}

		return nil, &AuthorizationError{Role: req.ActorRole, Action: req.Action, Allowed: allowed}
	}

	out := &Outcome{From: app.Status, To: e.to, Action: e.action, owner: e.owner}

	remarks := strings.TrimSpace(req.Remarks)
	if e.remarksRequired && remarks == "" {
		return nil, &ValidationError{Field: "remarks", Reason: "remarks are required to reject an application"}
	}

	switch e.owner {
	case remarksReviewer:
		if app.ReviewerRemarks != nil {
			return nil, &ValidationError{Field: "remarks", Reason: "reviewer remarks are already recorded"}
		}
	case remarksFinance:
		if app.FinanceRemarks != nil {
			return nil, &ValidationError{Field: "remarks", Reason: "finance remarks are already recorded"}
		}
	}

	if remarks != "" && e.owner != remarksNone {
		out.Remarks = &remarks
	}

	if e.amountRequired {
		if req.Amount == nil {
			return nil, &ValidationError{Field: "amount", Reason: "a disbursal amount is required"}
		}

		if *req.Amount <= 0 {
			return nil, &ValidationError{Field: "amount", Reason: "the disbursal amount must be greater than zero"}
		}

		out.Amount = new(*req.Amount)

		if out.Remarks == nil {
			out.Remarks = new(DefaultDisbursalRemarks)
		}
	}

	return out, nil
}

// Apply writes the outcome onto app.
func (o *Outcome) Apply(app *Application, at time.Time) {
	app.Status = o.To
	app.LastUpdated = at

	if o.Amount != nil {
		app.Amount = *o.Amount
	}

	if o.Remarks == nil {
		return
	}

	switch o.owner {
	case remarksReviewer:
		app.ReviewerRemarks = new(*o.Remarks)
	case remarksFinance:
		app.FinanceRemarks = new(*o.Remarks)
	}
}

// Next returns the statuses reachable from s in one step.
func Next(s Status) []Status {
	var next []Status

	for _, e := range edges {
		if e.from == s {
			next = append(next, e.to)
		}
	}

	return next
}

// ActionsFor lists the actions role can take on an application in status s.
func ActionsFor(s Status, role Role) []Action {
	var actions []Action

	for _, e := range edges {
		if e.from == s && e.role == role {
			actions = append(actions, e.action)
		}
	}

	return actions
}

func actsOnWorkflow(role Role) bool {
	for _, e := range edges {
		if e.role == role {
			return true
		}
	}

	return false
}

func edgesFrom(s Status, action Action) []edge {
	var out []edge

	for _, e := range edges {
		if e.from == s && e.action == action {
			out = append(out, e)
		}
	}

	return out
}

func edgeForRole(candidates []edge, role Role) (edge, bool) {
	for _, e := range candidates {
		if e.role == role {
			return e, true
		}
	}

	return edge{}, false
}
