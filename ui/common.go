package ui

import (
	"fmt"
	"strings"

	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const dateLayout = "2006-01-02 15:04"

// UpdateRequestList refreshes the list with the given requests.
// The email and creation date go on the secondary line.
func UpdateRequestList(list *tview.List, requests []models.Request, demoMode bool) {
	current := list.GetCurrentItem()
	list.Clear()

	for _, request := range requests {
		username := request.Username
		email := request.Email
		if demoMode {
			// In demo mode, censor all characters after the first two
			username = Censor(username)
			email = Censor(email)
		}

		secondary := email
		if request.CreateDate > 0 {
			secondary = fmt.Sprintf("%s  %s", email, request.Created().Format(dateLayout))
		}
		list.AddItem(fmt.Sprintf("[white]%s", tview.Escape(username)), secondary, 0, nil)
	}

	if current >= len(requests) {
		current = len(requests) - 1
	}
	if current >= 0 {
		list.SetCurrentItem(current)
	}
}

// Censor keeps the first two characters of s and masks the rest.
func Censor(s string) string {
	runes := []rune(s)
	if len(runes) <= 2 {
		return s
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-2)
}

// FilterRequests returns the requests whose username or email contains query.
func FilterRequests(requests []models.Request, query string) []models.Request {
	if query == "" {
		return requests
	}
	var filtered []models.Request
	for _, request := range requests {
		// Always search using original values, not censored ones
		if ContainsCaseInsensitive(request.Username, query) || ContainsCaseInsensitive(request.Email, query) {
			filtered = append(filtered, request)
		}
	}
	return filtered
}

// ContainsCaseInsensitive returns true if s contains substr (case-insensitive).
func ContainsCaseInsensitive(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// BottomBarText returns the key help for the current focus.
func BottomBarText(listFocused, loading bool, count int) string {
	if !listFocused {
		return "↑/↓: Back to Requests | Esc: Clear Search"
	}
	text := "↑/↓: Move Highlight | /: Search"
	if count > 0 {
		text += " | a: Approve | r: Reject | c: Copy E-mail"
	}
	if loading {
		text += " | Loading..."
	} else {
		text += " | F5: Reload"
	}
	return text + " | q: Quit"
}

// CreateErrorModal creates a modal to display error messages
func CreateErrorModal(message string, done func()) *tview.Modal {
	return tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			done()
		})
}

// SetupKeyboardNavigation sets up Tab to cycle focus between components
func SetupKeyboardNavigation(app *tview.Application, components ...tview.Primitive) {
	for i, component := range components {
		index := i // Capture loop variable
		next := func(event *tcell.EventKey) bool {
			if event.Key() != tcell.KeyTab {
				return false
			}
			app.SetFocus(components[(index+1)%len(components)])
			return true
		}

		switch c := component.(type) {
		case *tview.InputField:
			originalHandler := c.GetInputCapture()
			c.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
				if next(event) {
					return nil
				}
				if originalHandler != nil {
					return originalHandler(event)
				}
				return event
			})
		case *tview.List:
			originalHandler := c.GetInputCapture()
			c.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
				if next(event) {
					return nil
				}
				if originalHandler != nil {
					return originalHandler(event)
				}
				return event
			})
		}
	}
}
