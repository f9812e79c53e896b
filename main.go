package main

import (
	"fmt"
	"io"
	"os"

	"github.com/deathrjj/teedy-moderation-tui/config"
	"github.com/deathrjj/teedy-moderation-tui/secrets"
	"github.com/deathrjj/teedy-moderation-tui/ui"
	"github.com/rivo/tview"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const usage = `usage: teedy-moderation-tui [command]

commands:
  (none)               moderate pending registration requests
  register             submit a registration request
  seal <recipient>...  read an auth token on stdin and print it sealed for the recipients
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, eris.ToString(err, false))
		os.Exit(1)
	}
}

func run(args []string) error {
	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "seal":
		return seal(os.Stdin, os.Stdout, args[1:])
	case "", "register":
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return eris.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer, err := cfg.OpenLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	app := tview.NewApplication()

	if command == "register" {
		r := ui.NewRegistrationUI(app, cfg, logger)
		defer r.Close()
		r.Start()
		return runApp(app, logger)
	}

	m := ui.NewModerationUI(app, cfg, logger)
	defer m.Close()
	if sealed, ok := secrets.TokenFromClipboard(); ok && cfg.NeedsToken() && cfg.TokenFile == "" {
		m.PromptForClipboardToken(sealed)
	} else {
		m.Start()
	}
	return runApp(app, logger)
}

func runApp(app *tview.Application, logger logrus.FieldLogger) error {
	logger.Info("starting")
	if err := app.Run(); err != nil {
		return eris.Wrap(err, "running terminal UI")
	}
	logger.Info("stopped")
	return nil
}

// seal encrypts the token read from in for every recipient key.
func seal(in io.Reader, out io.Writer, recipients []string) error {
	if len(recipients) == 0 {
		return eris.New("seal needs at least one age or SSH public key")
	}
	token, err := io.ReadAll(in)
	if err != nil {
		return eris.Wrap(err, "reading token")
	}
	sealed, err := secrets.Seal(string(token), recipients)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, sealed)
	return err
}
