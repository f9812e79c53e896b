package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/deathrjj/teedy-moderation-tui/workflow"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// DialogHost renders workflow dialogs on top of a page stack. Confirm and
// Notify block, so they must not be called from the UI goroutine.
type DialogHost struct {
	App     *tview.Application
	Pages   *tview.Pages
	OKLabel string

	mu   sync.Mutex
	next int
}

// NewDialogHost creates a dialog host drawing into pages.
func NewDialogHost(app *tview.Application, pages *tview.Pages, okLabel string) *DialogHost {
	if okLabel == "" {
		okLabel = "OK"
	}
	return &DialogHost{App: app, Pages: pages, OKLabel: okLabel}
}

// Confirm shows cfg and waits for the user to close it.
func (h *DialogHost) Confirm(ctx context.Context, cfg workflow.DialogConfig) (workflow.Outcome, error) {
	result := make(chan workflow.Outcome, 1)
	name := h.pageName()
	h.App.QueueUpdateDraw(func() {
		h.show(name, cfg, func(o workflow.Outcome) {
			select {
			case result <- o:
			default:
			}
		})
	})

	select {
	case o := <-result:
		return o, nil
	case <-ctx.Done():
		h.App.QueueUpdateDraw(func() { h.dismiss(name) })
		return workflow.Outcome{Kind: workflow.Cancelled}, ctx.Err()
	}
}

// Notify shows an alert with a single OK button and waits until it is
// acknowledged.
func (h *DialogHost) Notify(ctx context.Context, title, message string) {
	_, _ = h.Confirm(ctx, workflow.DialogConfig{
		Title:   title,
		Message: message,
		Buttons: []workflow.Button{{Label: h.OKLabel, Role: workflow.RolePrimary}},
	})
}

func (h *DialogHost) pageName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	return fmt.Sprintf("dialog-%d", h.next)
}

func (h *DialogHost) show(name string, cfg workflow.DialogConfig, done func(workflow.Outcome)) {
	previous := h.App.GetFocus()
	closeWith := func(o workflow.Outcome) {
		h.dismiss(name)
		if previous != nil {
			h.App.SetFocus(previous)
		}
		done(o)
	}

	if cfg.Input == nil {
		modal := tview.NewModal().
			SetText(cfg.Message).
			AddButtons(ButtonLabels(cfg)).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				closeWith(ButtonOutcome(cfg, buttonIndex, ""))
			})
		modal.SetTitle(" " + cfg.Title + " ")
		if primary := primaryIndex(cfg); primary >= 0 {
			modal.SetFocus(primary)
		}
		h.Pages.AddPage(name, modal, true, true)
		h.App.SetFocus(modal)
		return
	}

	form := tview.NewForm()
	var value string
	if cfg.Message != "" {
		form.AddTextView("", cfg.Message, 0, 2, false, false)
	}
	if cfg.Input.Masked {
		form.AddPasswordField(cfg.Input.Label+":", "", 40, '*', func(text string) {
			value = text
		})
	} else {
		form.AddInputField(cfg.Input.Label+":", "", 40, nil, func(text string) {
			value = text
		})
	}
	for i, button := range cfg.Buttons {
		index := i
		form.AddButton(button.Label, func() {
			outcome := ButtonOutcome(cfg, index, value)
			if outcome.Accepted() && !cfg.Input.Check(value) {
				h.showInvalid(name, cfg.InvalidMessage, form)
				return
			}
			closeWith(outcome)
		})
		if button.Role == workflow.RoleDanger {
			form.GetButton(index).SetStyle(tcell.StyleDefault.Background(tcell.ColorDarkRed))
		}
	}
	form.SetCancelFunc(func() {
		closeWith(workflow.Outcome{Kind: workflow.Cancelled})
	})
	form.SetBorder(true).SetTitle(" " + cfg.Title + " ").SetTitleAlign(tview.AlignCenter)

	h.Pages.AddPage(name, centered(form, 60, 11), true, true)
	h.App.SetFocus(form)
}

// showInvalid stacks an error modal over an input dialog and returns focus to
// the form once acknowledged.
func (h *DialogHost) showInvalid(name, message string, form *tview.Form) {
	if message == "" {
		message = "A value is required."
	}
	invalidName := name + "-invalid"
	modal := CreateErrorModal(message, func() {
		h.Pages.RemovePage(invalidName)
		h.App.SetFocus(form)
	})
	h.Pages.AddPage(invalidName, modal, true, true)
	h.App.SetFocus(modal)
}

func (h *DialogHost) dismiss(name string) {
	h.Pages.RemovePage(name + "-invalid")
	h.Pages.RemovePage(name)
}

// ButtonLabels returns the labels of cfg's buttons in order.
func ButtonLabels(cfg workflow.DialogConfig) []string {
	labels := make([]string, 0, len(cfg.Buttons))
	for _, b := range cfg.Buttons {
		labels = append(labels, b.Label)
	}
	return labels
}

// ButtonOutcome maps a pressed button (or -1 for Escape) to an outcome.
func ButtonOutcome(cfg workflow.DialogConfig, index int, input string) workflow.Outcome {
	if index < 0 || index >= len(cfg.Buttons) || cfg.Buttons[index].Role == workflow.RoleCancel {
		return workflow.Outcome{Kind: workflow.Cancelled}
	}
	if cfg.Input != nil {
		return workflow.Outcome{Kind: workflow.ConfirmedWithInput, Input: input}
	}
	return workflow.Outcome{Kind: workflow.Confirmed}
}

func primaryIndex(cfg workflow.DialogConfig) int {
	for i, b := range cfg.Buttons {
		if b.Role != workflow.RoleCancel {
			return i
		}
	}
	return -1
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
