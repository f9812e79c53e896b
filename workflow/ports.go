package workflow

import (
	"context"
	"net/url"

	"github.com/deathrjj/teedy-moderation-tui/models"
)

// Source is the remote side of the workflow.
type Source interface {
	Read(ctx context.Context, resource string) ([]models.Request, error)
	Mutate(ctx context.Context, resource, action string, payload url.Values) error
}

// OutcomeKind is how a confirmation dialog was closed.
type OutcomeKind int

const (
	Cancelled OutcomeKind = iota
	Confirmed
	ConfirmedWithInput
)

func (k OutcomeKind) String() string {
	switch k {
	case Confirmed:
		return "confirmed"
	case ConfirmedWithInput:
		return "confirmed-with-input"
	default:
		return "cancelled"
	}
}

// Outcome is what a dialog returns once it is closed.
type Outcome struct {
	Kind  OutcomeKind
	Input string
}

// Accepted reports whether the user pressed the primary button.
func (o Outcome) Accepted() bool {
	return o.Kind == Confirmed || o.Kind == ConfirmedWithInput
}

// ButtonRole tells the renderer how to present a button.
type ButtonRole int

const (
	RoleCancel ButtonRole = iota
	RolePrimary
	RoleDanger
)

// Button is one choice offered by a dialog.
type Button struct {
	Label string
	Role  ButtonRole
}

// InputSpec describes the single free-text field a dialog may carry.
type InputSpec struct {
	Key      string
	Label    string
	Required bool
	Masked   bool
}

// Check returns false when a required value is blank.
func (s *InputSpec) Check(value string) bool {
	if s == nil || !s.Required {
		return true
	}
	return hasText(value)
}

// DialogConfig is the renderer-independent description of a dialog.
type DialogConfig struct {
	Title   string
	Message string
	Buttons []Button
	Input   *InputSpec
	// InvalidMessage is shown by the renderer when Input fails Check.
	InvalidMessage string
}

// DialogHost renders dialogs. Confirm blocks until the dialog is closed or
// ctx is done.
type DialogHost interface {
	Confirm(ctx context.Context, cfg DialogConfig) (Outcome, error)
	Notify(ctx context.Context, title, message string)
}
