package ui

import (
	"context"
	"fmt"

	"github.com/deathrjj/teedy-moderation-tui/config"
	"github.com/deathrjj/teedy-moderation-tui/i18n"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/deathrjj/teedy-moderation-tui/teedy"
	"github.com/deathrjj/teedy-moderation-tui/workflow"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
)

// RegistrationUI lets a prospective user file a registration request
type RegistrationUI struct {
	App        *tview.Application
	Pages      *tview.Pages
	Dialogs    *DialogHost
	Config     config.Config
	Logger     logrus.FieldLogger
	Translator *i18n.Translator

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistrationUI creates a new registration UI instance
func NewRegistrationUI(app *tview.Application, cfg config.Config, logger logrus.FieldLogger) *RegistrationUI {
	ctx, cancel := context.WithCancel(context.Background())
	tr := i18n.New(cfg.Locale)
	pages := tview.NewPages()
	app.SetRoot(pages, true)
	return &RegistrationUI{
		App:        app,
		Pages:      pages,
		Dialogs:    NewDialogHost(app, pages, tr.T(i18n.OK)),
		Config:     cfg,
		Logger:     logger,
		Translator: tr,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Close cancels a submission still in flight.
func (ui *RegistrationUI) Close() {
	ui.cancel()
}

// Start shows the registration form, asking for the server URL first if
// it is not configured.
func (ui *RegistrationUI) Start() {
	if ui.Config.NeedsURL() {
		ui.promptForURL()
		return
	}

	client, err := teedy.NewClient(teedy.Options{
		BaseURL:   ui.Config.BaseURL,
		Dialect:   ui.Config.Dialect,
		Timeout:   ui.Config.Timeout,
		RateLimit: ui.Config.RateLimit,
		Logger:    ui.Logger,
	})
	if err != nil {
		ui.show(tview.NewModal().
			SetText(fmt.Sprintf("Error initializing Teedy client: %v", err)).
			AddButtons([]string{"Quit"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) { ui.App.Stop() }))
		return
	}
	ui.showForm(workflow.NewRegistrationFlow(client, ui.Dialogs, ui.Translator))
}

func (ui *RegistrationUI) show(p tview.Primitive) {
	ui.Pages.AddPage(mainPage, p, true, true)
	ui.Pages.SendToBack(mainPage)
	ui.App.SetFocus(p)
}

func (ui *RegistrationUI) promptForURL() {
	form := tview.NewForm()

	var serverURL string

	form.AddInputField("Teedy URL:", "", 50, nil, func(text string) {
		serverURL = text
	})
	form.AddButton("Continue", func() {
		if serverURL == "" {
			ui.show(CreateErrorModal("Teedy URL is required", func() { ui.show(form) }))
			return
		}
		ui.Config.BaseURL = serverURL
		ui.Start()
	})
	form.AddButton("Cancel", func() {
		ui.App.Stop()
	})

	form.SetBorder(true).SetTitle("Teedy URL").SetTitleAlign(tview.AlignCenter)
	ui.show(form)
}

func (ui *RegistrationUI) showForm(flow *workflow.RegistrationFlow) {
	tr := ui.Translator
	form := tview.NewForm()

	var reg models.Registration
	var submitting bool

	form.AddInputField(tr.T(i18n.RegisterUsername)+":", "", 50, nil, func(text string) {
		reg.Username = text
	})
	form.AddInputField(tr.T(i18n.RegisterEmail)+":", "", 50, nil, func(text string) {
		reg.Email = text
	})
	form.AddPasswordField(tr.T(i18n.RegisterPassword)+":", "", 50, '*', func(text string) {
		reg.Password = text
	})

	form.AddButton(tr.T(i18n.RegisterSubmit), func() {
		if submitting {
			return
		}
		submitting = true
		submitted := reg
		go func() {
			err := flow.Submit(ui.ctx, submitted)
			ui.App.QueueUpdateDraw(func() {
				submitting = false
				if err != nil {
					ui.Logger.WithError(err).Warn("registration failed")
					ui.App.SetFocus(form)
					return
				}
				ui.App.Stop()
			})
		}()
	})
	form.AddButton(tr.T(i18n.Cancel), func() {
		ui.App.Stop()
	})
	form.SetCancelFunc(func() {
		ui.App.Stop()
	})

	form.SetBorder(true).SetTitle(" " + tr.T(i18n.RegisterTitle) + " ").SetTitleAlign(tview.AlignCenter)
	ui.show(form)
}
