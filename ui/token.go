package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/deathrjj/teedy-moderation-tui/secrets"
	"github.com/deathrjj/teedy-moderation-tui/workflow"
	"github.com/rivo/tview"
)

var errPassphraseCancelled = errors.New("passphrase entry cancelled")

// PromptForClipboardToken asks whether the sealed token found in the
// clipboard should be used
func (ui *ModerationUI) PromptForClipboardToken(sealed string) {
	modal := tview.NewModal().
		SetText("Sealed auth token detected in clipboard. Would you like to decrypt it?").
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			if buttonLabel == "Yes" {
				ui.Unseal(sealed)
				return
			}
			ui.Start()
		})
	ui.setMain(modal)
}

// UnsealTokenFile reads a sealed token from path and decrypts it.
func (ui *ModerationUI) UnsealTokenFile(path string) {
	sealed, err := secrets.ReadSealedFile(path)
	if err != nil {
		ui.fatal(fmt.Sprintf("Error reading token: %v", err))
		return
	}
	ui.Unseal(sealed)
}

// Unseal decrypts a sealed token with the configured identity, asking for
// the identity path if none is configured.
func (ui *ModerationUI) Unseal(sealed string) {
	if ui.Config.IdentityPath == "" {
		ui.PromptForIdentityPath(sealed)
		return
	}

	ui.showLoading("Decrypting token...")
	identityPath := ui.Config.IdentityPath
	go func() {
		token, err := ui.open(sealed, identityPath)
		ui.App.QueueUpdateDraw(func() {
			if err != nil {
				ui.Logger.WithError(err).Error("unseal failed")
				ui.setMain(CreateErrorModal(fmt.Sprintf("Error decrypting: %v", err), func() {
					ui.Config.IdentityPath = ""
					ui.Unseal(sealed)
				}))
				return
			}
			ui.Config.AuthToken = token
			ui.Start()
		})
	}()
}

// open runs off the UI goroutine so the passphrase prompt can block.
func (ui *ModerationUI) open(sealed, identityPath string) (string, error) {
	ids, err := secrets.LoadIdentities(identityPath, ui.askPassphrase)
	if err != nil {
		return "", err
	}
	return secrets.Open(sealed, ids...)
}

func (ui *ModerationUI) askPassphrase() ([]byte, error) {
	outcome, err := ui.Dialogs.Confirm(ui.ctx, workflow.DialogConfig{
		Title: "SSH Key Passphrase",
		Buttons: []workflow.Button{
			{Label: "Cancel", Role: workflow.RoleCancel},
			{Label: "Decrypt", Role: workflow.RolePrimary},
		},
		Input:          &workflow.InputSpec{Key: "passphrase", Label: "Passphrase", Required: true, Masked: true},
		InvalidMessage: "Please enter the passphrase",
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Accepted() {
		return nil, errPassphraseCancelled
	}
	return []byte(outcome.Input), nil
}

// PromptForIdentityPath shows a form to enter TEEDY_IDENTITY_PATH
func (ui *ModerationUI) PromptForIdentityPath(sealed string) {
	form := tview.NewForm()

	var keyPath string

	form.AddInputField("Path to age or SSH private key:", "", 50, nil, func(text string) {
		keyPath = text
	})

	form.AddButton("Continue", func() {
		if keyPath == "" {
			ui.showFormError("Please enter a valid file path", form)
			return
		}

		// Check if file exists
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			ui.showFormError("File does not exist. Please enter a valid path.", form)
			return
		}

		ui.Config.IdentityPath = keyPath
		ui.Unseal(sealed)
	})

	form.AddButton("Cancel", func() {
		ui.Config.TokenFile = ""
		ui.PromptForToken()
	})

	form.SetBorder(true).SetTitle("Identity Path").SetTitleAlign(tview.AlignCenter)
	ui.setMain(form)
}
