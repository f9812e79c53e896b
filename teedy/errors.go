package teedy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Error types returned by the server in the "type" field.
const (
	TypeAlreadyExistingUsername = "AlreadyExistingUsername"
	TypeRequestNotFound         = "RequestNotFound"
	TypeValidationError         = "ValidationError"
	TypeForbiddenError          = "ForbiddenError"
)

var ErrUnreachable = errors.New("teedy server unreachable")

// RemoteError is a non-2xx answer from the server.
type RemoteError struct {
	StatusCode int
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *RemoteError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("teedy returned HTTP %d", e.StatusCode)
	}
	if e.Message == "" {
		return fmt.Sprintf("teedy returned HTTP %d: %s", e.StatusCode, e.Type)
	}
	return fmt.Sprintf("teedy returned HTTP %d: %s (%s)", e.StatusCode, e.Type, e.Message)
}

// HTTPStatus returns the status code the server answered with.
func (e *RemoteError) HTTPStatus() int {
	return e.StatusCode
}

// ErrorType returns the server error type, e.g. AlreadyExistingUsername.
func (e *RemoteError) ErrorType() string {
	return e.Type
}

// IsType reports whether err is a RemoteError of the given server type.
func IsType(err error, errType string) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Type == errType
}

func ensureSuccess(resp *http.Response, logger logrus.FieldLogger) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	remote := &RemoteError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	switch {
	case err != nil:
		logger.WithError(err).Debug("reading error body")
	case strings.HasPrefix(strings.TrimSpace(string(body)), "{"):
		if err := json.Unmarshal(body, remote); err != nil {
			logger.WithField("status", resp.StatusCode).WithError(err).Debug("malformed error body")
		}
	}
	if remote.Type == "" && resp.StatusCode == http.StatusForbidden {
		remote.Type = TypeForbiddenError
	}
	return remote
}
