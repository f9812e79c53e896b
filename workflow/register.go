package workflow

import (
	"context"
	"errors"

	"github.com/deathrjj/teedy-moderation-tui/i18n"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/rotisserie/eris"
)

// Registrar files registration requests.
type Registrar interface {
	CreateRegistration(ctx context.Context, reg models.Registration) error
}

// RegistrationFlow validates and submits a registration, then tells the user
// how it went.
type RegistrationFlow struct {
	registrar Registrar
	dialogs   DialogHost
	tr        *i18n.Translator
}

func NewRegistrationFlow(registrar Registrar, dialogs DialogHost, tr *i18n.Translator) *RegistrationFlow {
	return &RegistrationFlow{registrar: registrar, dialogs: dialogs, tr: tr}
}

// Submit sends reg. Invalid input is reported without contacting the server.
func (f *RegistrationFlow) Submit(ctx context.Context, reg models.Registration) error {
	if err := reg.Validate(); err != nil {
		var verr *models.ValidationError
		msg := err.Error()
		if errors.As(err, &verr) {
			msg = f.tr.T(i18n.RegisterInvalid, verr.Field, verr.Reason)
		}
		f.dialogs.Notify(ctx, f.tr.T(i18n.RegisterErrorTitle), msg)
		return eris.Wrap(errors.Join(ErrValidationFailed, err), "registration")
	}

	if err := f.registrar.CreateRegistration(ctx, reg); err != nil {
		classified := Classify(err)
		switch {
		case errors.Is(err, models.ErrUsernameTaken):
			f.dialogs.Notify(ctx, f.tr.T(i18n.RegisterErrorTitle), f.tr.T(i18n.RegisterUsernameExists))
		default:
			f.dialogs.Notify(ctx, f.tr.T(i18n.RegisterErrorTitle), f.tr.T(i18n.RegisterFailed, rejectionDetail(err)))
		}
		return classified
	}

	f.dialogs.Notify(ctx, f.tr.T(i18n.RegisterSuccessTitle), f.tr.T(i18n.RegisterSuccessMessage))
	return nil
}
