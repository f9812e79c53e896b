package workflow

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	ErrValidationFailed  = errors.New("required input is empty")
	ErrRemoteRejected    = errors.New("remote rejected the mutation")
	ErrRemoteUnreachable = errors.New("remote unreachable")
)

// statusError is implemented by source errors that carry a server answer.
type statusError interface {
	error
	HTTPStatus() int
}

// Classify maps a source error onto the workflow taxonomy. Errors carrying an
// HTTP status are rejections, anything else is treated as unreachable.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrRemoteRejected) || errors.Is(err, ErrRemoteUnreachable) {
		return err
	}
	var status statusError
	if errors.As(err, &status) {
		return eris.Wrap(errors.Join(ErrRemoteRejected, err), "classify")
	}
	return eris.Wrap(errors.Join(ErrRemoteUnreachable, err), "classify")
}

// rejectionDetail returns the most specific server message found in err.
func rejectionDetail(err error) string {
	var status statusError
	if errors.As(err, &status) {
		return status.Error()
	}
	return err.Error()
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
