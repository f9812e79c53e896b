package workflow

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/deathrjj/teedy-moderation-tui/i18n"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ReasonKey is the payload key carrying the collected input.
const ReasonKey = "reason"

// Options tunes one invocation of a ConfirmedAction.
type Options struct {
	RequiresInput bool
}

type verbText struct {
	title   string
	message string
	danger  bool
}

var verbs = map[models.Verb]verbText{
	models.VerbApprove: {title: i18n.ApproveTitle, message: i18n.ApproveMessage},
	models.VerbReject:  {title: i18n.RejectTitle, message: i18n.RejectMessage, danger: true},
}

// ConfirmedAction asks for confirmation before mutating a request, then
// refreshes the list.
type ConfirmedAction struct {
	source   Source
	dialogs  DialogHost
	tr       *i18n.Translator
	resource func(id string) string
	refresh  func(ctx context.Context) error
	logger   logrus.FieldLogger
}

// NewConfirmedAction wires an action. resource maps a request ID to the
// resource passed to Source.Mutate and refresh is called after every
// successful mutation.
func NewConfirmedAction(source Source, dialogs DialogHost, tr *i18n.Translator, resource func(id string) string, refresh func(ctx context.Context) error) *ConfirmedAction {
	return &ConfirmedAction{
		source:   source,
		dialogs:  dialogs,
		tr:       tr,
		resource: resource,
		refresh:  refresh,
		logger:   discardLogger(),
	}
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// SetLogger sets where the action reports what it did.
func (a *ConfirmedAction) SetLogger(logger logrus.FieldLogger) *ConfirmedAction {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Dialog builds the confirmation dialog shown for item and verb.
func (a *ConfirmedAction) Dialog(item models.Request, verb models.Verb, opts Options) (DialogConfig, error) {
	text, ok := verbs[verb]
	if !ok {
		return DialogConfig{}, eris.Errorf("no dialog for verb %q", verb)
	}

	primary := Button{Label: a.tr.T(i18n.OK), Role: RolePrimary}
	if text.danger {
		primary.Role = RoleDanger
	}
	cfg := DialogConfig{
		Title:   a.tr.T(text.title),
		Message: a.tr.T(text.message, item.Username),
		Buttons: []Button{
			{Label: a.tr.T(i18n.Cancel), Role: RoleCancel},
			primary,
		},
	}
	if opts.RequiresInput {
		cfg.Input = &InputSpec{
			Key:      ReasonKey,
			Label:    a.tr.T(i18n.RejectionReason),
			Required: true,
		}
		cfg.InvalidMessage = a.tr.T(i18n.ReasonRequired)
	}
	return cfg, nil
}

// Invoke runs the confirm, mutate, refresh sequence for item. A cancelled
// dialog returns nil without touching the source. Errors are classified as
// ErrValidationFailed, ErrRemoteRejected or ErrRemoteUnreachable.
func (a *ConfirmedAction) Invoke(ctx context.Context, item models.Request, verb models.Verb, opts Options) error {
	cfg, err := a.Dialog(item, verb, opts)
	if err != nil {
		return err
	}

	outcome, err := a.dialogs.Confirm(ctx, cfg)
	if err != nil {
		return eris.Wrap(err, "confirm")
	}
	log := a.logger.WithFields(logrus.Fields{"verb": verb, "id": item.ID})
	if !outcome.Accepted() {
		log.Debug("cancelled")
		return nil
	}

	var payload url.Values
	if opts.RequiresInput {
		if !cfg.Input.Check(outcome.Input) {
			log.Warn("required input is empty")
			a.dialogs.Notify(ctx, a.tr.T(i18n.ActionFailed), cfg.InvalidMessage)
			return eris.Wrapf(ErrValidationFailed, "%s %s", verb, item.ID)
		}
		payload = url.Values{ReasonKey: {strings.TrimSpace(outcome.Input)}}
	}

	if err := a.source.Mutate(ctx, a.resource(item.ID), string(verb), payload); err != nil {
		classified := Classify(err)
		log.WithError(err).Error("mutation failed")
		a.dialogs.Notify(ctx, a.tr.T(i18n.ActionFailed), a.failureMessage(classified, item, verb))
		return classified
	}

	log.Info("mutation applied")
	if a.refresh == nil {
		return nil
	}
	return a.refresh(ctx)
}

func (a *ConfirmedAction) failureMessage(err error, item models.Request, verb models.Verb) string {
	if errors.Is(err, ErrRemoteRejected) {
		return a.tr.T(i18n.ActionRejected, string(verb), item.Username, rejectionDetail(err))
	}
	return a.tr.T(i18n.ActionOffline, string(verb), item.Username)
}
