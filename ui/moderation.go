package ui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/deathrjj/teedy-moderation-tui/config"
	"github.com/deathrjj/teedy-moderation-tui/i18n"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/deathrjj/teedy-moderation-tui/teedy"
	"github.com/deathrjj/teedy-moderation-tui/workflow"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
)

const mainPage = "main"

// ModerationUI handles the registration request moderation flow
type ModerationUI struct {
	App        *tview.Application
	Pages      *tview.Pages
	Dialogs    *DialogHost
	Config     config.Config
	Logger     logrus.FieldLogger
	Translator *i18n.Translator

	Client *teedy.Client
	List   *workflow.ListController
	Action *workflow.ConfirmedAction

	AllRequests      []models.Request
	FilteredRequests []models.Request

	ctx    context.Context
	cancel context.CancelFunc
	acting atomic.Bool

	searchInput *tview.InputField
	requestList *tview.List
	bottomBar   *tview.TextView
	statusBar   *tview.TextView
}

// NewModerationUI creates a new moderation UI instance
func NewModerationUI(app *tview.Application, cfg config.Config, logger logrus.FieldLogger) *ModerationUI {
	ctx, cancel := context.WithCancel(context.Background())
	tr := i18n.New(cfg.Locale)
	pages := tview.NewPages()
	app.SetRoot(pages, true)
	return &ModerationUI{
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

// Close cancels everything still in flight.
func (ui *ModerationUI) Close() {
	ui.cancel()
}

func (ui *ModerationUI) setMain(p tview.Primitive) {
	ui.Pages.AddPage(mainPage, p, true, true)
	ui.Pages.SendToBack(mainPage)
	ui.App.SetFocus(p)
}

func (ui *ModerationUI) showLoading(text string) {
	ui.setMain(tview.NewTextView().
		SetText(text).
		SetTextAlign(tview.AlignCenter))
}

// Start checks the configuration and prompts for whatever is missing
func (ui *ModerationUI) Start() {
	ui.showLoading("Initializing...")

	if ui.Config.NeedsURL() {
		ui.PromptForURL()
		return
	}
	if ui.Config.AuthToken == "" && ui.Config.TokenFile != "" {
		ui.UnsealTokenFile(ui.Config.TokenFile)
		return
	}
	if ui.Config.NeedsToken() {
		ui.PromptForToken()
		return
	}
	ui.Connect()
}

// PromptForURL shows a form to enter the server URL
func (ui *ModerationUI) PromptForURL() {
	form := tview.NewForm()

	var serverURL string

	form.AddInputField("Teedy URL:", "", 50, nil, func(text string) {
		serverURL = text
	})

	form.AddButton("Continue", func() {
		if serverURL == "" {
			ui.showFormError("Teedy URL is required", form)
			return
		}
		ui.Config.BaseURL = serverURL
		ui.Start()
	})

	form.AddButton("Cancel", func() {
		ui.App.Stop()
	})

	form.SetBorder(true).SetTitle("Teedy URL").SetTitleAlign(tview.AlignCenter)
	ui.setMain(form)
}

// PromptForToken shows a form to enter the auth token
func (ui *ModerationUI) PromptForToken() {
	form := tview.NewForm()

	var token string

	form.AddPasswordField("Auth token:", "", 50, '*', func(text string) {
		token = text
	})

	form.AddButton("Continue", func() {
		if token == "" {
			ui.showFormError("Auth token is required", form)
			return
		}
		ui.Config.AuthToken = token
		ui.Connect()
	})

	form.AddButton("Cancel", func() {
		ui.App.Stop()
	})

	form.SetBorder(true).SetTitle("Teedy Auth Token").SetTitleAlign(tview.AlignCenter)
	ui.setMain(form)
}

func (ui *ModerationUI) showFormError(message string, form *tview.Form) {
	ui.setMain(CreateErrorModal(message, func() {
		ui.setMain(form)
	}))
}

func (ui *ModerationUI) fatal(message string) {
	ui.setMain(tview.NewModal().
		SetText(message).
		AddButtons([]string{"Quit"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) { ui.App.Stop() }))
}

// Connect creates the client and the workflow, builds the layout and loads
// the first snapshot.
func (ui *ModerationUI) Connect() {
	ui.showLoading(ui.Translator.T(i18n.ListLoading))

	client, err := teedy.NewClient(teedy.Options{
		BaseURL:     ui.Config.BaseURL,
		Token:       ui.Config.AuthToken,
		Dialect:     ui.Config.Dialect,
		Timeout:     ui.Config.Timeout,
		ReadRetries: ui.Config.ReadRetries,
		RateLimit:   ui.Config.RateLimit,
		Logger:      ui.Logger,
	})
	if err != nil {
		ui.fatal(fmt.Sprintf("Error initializing Teedy client: %v", err))
		return
	}
	ui.Client = client

	ui.List = workflow.NewListController(client, client.ListResource()).
		SetChangedFunc(func(requests []models.Request) {
			ui.App.QueueUpdateDraw(func() {
				ui.AllRequests = requests
				ui.applyFilter()
			})
		})
	ui.Action = workflow.NewConfirmedAction(client, ui.Dialogs, ui.Translator, client.ItemResource, ui.List.Load).
		SetLogger(ui.Logger)

	ui.buildLayout()
	ui.Reload()
}

func (ui *ModerationUI) buildLayout() {
	// Create request list.
	ui.requestList = tview.NewList().
		SetSelectedFocusOnly(true).
		SetHighlightFullLine(true)
	ui.requestList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5, tcell.KeyCtrlR:
			ui.Reload()
			return nil
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyPgUp, tcell.KeyPgDn, tcell.KeyHome, tcell.KeyEnd, tcell.KeyTab:
			return event
		case tcell.KeyRune:
			switch event.Rune() {
			case 'a':
				ui.invoke(models.VerbApprove, workflow.Options{})
			case 'r':
				ui.invoke(models.VerbReject, workflow.Options{RequiresInput: true})
			case 'c':
				ui.copyEmail()
			case 'q':
				ui.App.Stop()
			case '/':
				ui.App.SetFocus(ui.searchInput)
			default:
				ui.App.SetFocus(ui.searchInput)
				ui.searchInput.SetText(ui.searchInput.GetText() + string(event.Rune()))
			}
			ui.updateBottomBar()
			return nil
		}
		return event
	})

	// Create search input.
	ui.searchInput = tview.NewInputField().SetLabel("Search: ")
	ui.searchInput.SetChangedFunc(func(text string) {
		ui.applyFilter()
	})
	ui.searchInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyEnter:
			ui.App.SetFocus(ui.requestList)
			ui.updateBottomBar()
			return nil
		case tcell.KeyEscape:
			ui.searchInput.SetText("")
			ui.App.SetFocus(ui.requestList)
			ui.updateBottomBar()
			return nil
		}
		return event
	})
	SetupKeyboardNavigation(ui.App, ui.requestList, ui.searchInput)

	requestsPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.searchInput, 1, 0, false).
		AddItem(ui.requestList, 0, 1, true)
	requestsPanel.SetBorder(true).SetTitle(" " + ui.Translator.T(i18n.ListTitle) + " ")

	ui.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	// Create Bottom bar.
	ui.bottomBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(requestsPanel, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false).
		AddItem(ui.bottomBar, 1, 0, false)

	ui.setMain(layout)
	ui.App.SetFocus(ui.requestList)
	ui.updateBottomBar()
}

// applyFilter re-renders the list from the snapshot and the search text.
func (ui *ModerationUI) applyFilter() {
	ui.FilteredRequests = FilterRequests(ui.AllRequests, ui.searchInput.GetText())
	UpdateRequestList(ui.requestList, ui.FilteredRequests, ui.Config.DemoMode)
	if len(ui.AllRequests) == 0 {
		ui.statusBar.SetText(ui.Translator.T(i18n.ListEmpty))
	} else {
		ui.statusBar.SetText(fmt.Sprintf("%d/%d", len(ui.FilteredRequests), len(ui.AllRequests)))
	}
	ui.updateBottomBar()
}

func (ui *ModerationUI) updateBottomBar() {
	loading := ui.List != nil && ui.List.Loading()
	ui.bottomBar.SetText(BottomBarText(ui.App.GetFocus() == ui.requestList, loading, len(ui.FilteredRequests)))
}

// Reload starts a load unless one is already in flight.
func (ui *ModerationUI) Reload() {
	if ui.List.Loading() {
		return
	}
	ui.statusBar.SetText(ui.Translator.T(i18n.ListLoading))
	go func() {
		err := ui.List.Load(ui.ctx)
		ui.App.QueueUpdateDraw(func() {
			if err != nil && !errors.Is(err, context.Canceled) {
				ui.Logger.WithError(err).Error("load failed")
				ui.statusBar.SetText("[red]" + tview.Escape(ui.Translator.T(i18n.LoadFailed, err.Error())))
			}
			ui.updateBottomBar()
		})
	}()
}

func (ui *ModerationUI) selected() (models.Request, bool) {
	index := ui.requestList.GetCurrentItem()
	if index < 0 || index >= len(ui.FilteredRequests) {
		return models.Request{}, false
	}
	return ui.FilteredRequests[index], true
}

// invoke runs a confirmed action on the highlighted request. Only one action
// runs at a time.
func (ui *ModerationUI) invoke(verb models.Verb, opts workflow.Options) {
	item, ok := ui.selected()
	if !ok || !ui.acting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer ui.acting.Store(false)
		if err := ui.Action.Invoke(ui.ctx, item, verb, opts); err != nil {
			ui.Logger.WithFields(logrus.Fields{"verb": verb, "id": item.ID}).WithError(err).Warn("action did not complete")
		}
	}()
}

func (ui *ModerationUI) copyEmail() {
	item, ok := ui.selected()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(item.Email); err != nil {
		ui.statusBar.SetText("[red]" + tview.Escape(err.Error()))
		return
	}
	ui.statusBar.SetText(fmt.Sprintf("Copied %s", tview.Escape(item.Email)))
}
