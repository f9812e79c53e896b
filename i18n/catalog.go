package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the locale every key is guaranteed to exist in.
const BaseLocale = "en-US"

// Message keys.
const (
	OK     = "ok"
	Cancel = "cancel"

	ApproveTitle    = "settings.registration.approve_confirm_title"
	ApproveMessage  = "settings.registration.approve_confirm_message"
	RejectTitle     = "settings.registration.reject_confirm_title"
	RejectMessage   = "settings.registration.reject_confirm_message"
	RejectionReason = "settings.registration.rejection_reason"
	ReasonRequired  = "settings.registration.reason_required"
	ActionFailed    = "settings.registration.action_failed"
	ActionRejected  = "settings.registration.action_rejected"
	ActionOffline   = "settings.registration.action_unreachable"
	ListTitle       = "settings.registration.title"
	ListEmpty       = "settings.registration.empty"
	ListLoading     = "settings.registration.loading"
	LoadFailed      = "settings.registration.load_failed"

	RegisterTitle          = "register.title"
	RegisterUsername       = "register.username"
	RegisterEmail          = "register.email"
	RegisterPassword       = "register.password"
	RegisterSubmit         = "register.submit"
	RegisterSuccessTitle   = "register.success_title"
	RegisterSuccessMessage = "register.success_message"
	RegisterErrorTitle     = "register.error_title"
	RegisterUsernameExists = "register.error_username_exists"
	RegisterInvalid        = "register.error_invalid"
	RegisterFailed         = "register.error_generic"
)

var catalogs = map[string]map[string]string{
	"en-US": {
		OK:     "OK",
		Cancel: "Cancel",

		ApproveTitle:    "Approve registration",
		ApproveMessage:  "Approve the registration request from %[1]s? A user account will be created.",
		RejectTitle:     "Reject registration",
		RejectMessage:   "Reject the registration request from %[1]s?",
		RejectionReason: "Rejection reason",
		ReasonRequired:  "A rejection reason is required.",
		ActionFailed:    "Error",
		ActionRejected:  "The server refused to %[1]s the request from %[2]s: %[3]s",
		ActionOffline:   "Could not reach the server to %[1]s the request from %[2]s. Please try again.",
		ListTitle:       "Registration requests",
		ListEmpty:       "No pending registration requests",
		ListLoading:     "Loading registration requests...",
		LoadFailed:      "Error loading registration requests: %[1]s",

		RegisterTitle:          "Register",
		RegisterUsername:       "Username",
		RegisterEmail:          "E-mail",
		RegisterPassword:       "Password",
		RegisterSubmit:         "Register",
		RegisterSuccessTitle:   "Registration requested",
		RegisterSuccessMessage: "Your registration request has been sent. An administrator will review it shortly.",
		RegisterErrorTitle:     "Registration failed",
		RegisterUsernameExists: "This username is already used.",
		RegisterInvalid:        "Invalid %[1]s: %[2]s",
		RegisterFailed:         "Your registration request could not be sent: %[1]s",
	},
	"fr-FR": {
		OK:     "OK",
		Cancel: "Annuler",

		ApproveTitle:    "Approuver l'inscription",
		ApproveMessage:  "Approuver la demande d'inscription de %[1]s ? Un compte utilisateur sera créé.",
		RejectTitle:     "Rejeter l'inscription",
		RejectMessage:   "Rejeter la demande d'inscription de %[1]s ?",
		RejectionReason: "Motif du rejet",
		ReasonRequired:  "Un motif de rejet est obligatoire.",
		ActionFailed:    "Erreur",
		ActionRejected:  "Le serveur a refusé de traiter (%[1]s) la demande de %[2]s : %[3]s",
		ActionOffline:   "Impossible de joindre le serveur pour traiter (%[1]s) la demande de %[2]s. Veuillez réessayer.",
		ListTitle:       "Demandes d'inscription",
		ListEmpty:       "Aucune demande d'inscription en attente",
		ListLoading:     "Chargement des demandes d'inscription...",
		LoadFailed:      "Erreur lors du chargement des demandes : %[1]s",

		RegisterTitle:          "Inscription",
		RegisterUsername:       "Nom d'utilisateur",
		RegisterEmail:          "E-mail",
		RegisterPassword:       "Mot de passe",
		RegisterSubmit:         "S'inscrire",
		RegisterSuccessTitle:   "Inscription demandée",
		RegisterSuccessMessage: "Votre demande d'inscription a été envoyée. Un administrateur va l'examiner.",
		RegisterErrorTitle:     "Échec de l'inscription",
		RegisterUsernameExists: "Ce nom d'utilisateur est déjà utilisé.",
		RegisterInvalid:        "%[1]s invalide : %[2]s",
		RegisterFailed:         "Votre demande d'inscription n'a pas pu être envoyée : %[1]s",
	},
}

var supported []language.Tag

func init() {
	locales := Locales()
	for _, locale := range locales {
		tag := language.MustParse(locale)
		supported = append(supported, tag)
		base, _ := tag.Base()
		baseTag := language.MustParse(base.String())
		for key, value := range catalogs[locale] {
			message.SetString(tag, key, value)
			message.SetString(baseTag, key, value)
		}
	}
}

// Locales returns the available locales, base locale first.
func Locales() []string {
	out := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		if locale != BaseLocale {
			out = append(out, locale)
		}
	}
	sort.Strings(out)
	return append([]string{BaseLocale}, out...)
}

// Translator renders catalog messages for one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the closest supported locale.
func New(locale string) *Translator {
	tag := language.MustParse(BaseLocale)
	if requested, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		matcher := language.NewMatcher(supported)
		_, idx, conf := matcher.Match(requested)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale returns the locale the translator settled on.
func (t *Translator) Locale() string {
	return t.tag.String()
}

// T renders the message for key with args. Unknown keys render as the key.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
