package teedy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deathrjj/teedy-moderation-tui/config"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server, dialect config.Dialect) *Client {
	t.Helper()
	c, err := NewClient(Options{
		BaseURL:   srv.URL,
		Token:     "tok",
		Dialect:   dialect,
		RateLimit: 1000,
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresURL(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Empty(t, c.Token)
	_, err = NewClient(Options{Token: "tok"})
	assert.Error(t, err)
	_, err = NewClient(Options{BaseURL: "not a url", Token: "tok"})
	assert.Error(t, err)
}

func TestResources(t *testing.T) {
	user := &Client{Dialect: config.DialectUser}
	assert.Equal(t, "user/registration", user.ListResource())
	assert.Equal(t, "user/registration/abc-1", user.ItemResource("abc-1"))

	admin := &Client{Dialect: config.DialectAdmin}
	assert.Equal(t, "registration/list", admin.ListResource())
	assert.Equal(t, "registration/abc-1", admin.ItemResource("abc-1"))
}

func TestReadUserDialect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/user/registration", r.URL.Path)
		cookie, err := r.Cookie(AuthCookie)
		require.NoError(t, err)
		assert.Equal(t, "tok", cookie.Value)
		w.Header().Set("Content-Type", JsonContentType)
		_, _ = w.Write([]byte(`{"requests":[{"id":"1","username":"alice","email":"alice@example.com","create_date":1700000000000}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	requests, err := c.Read(context.Background(), c.ListResource())
	require.NoError(t, err)
	assert.Equal(t, []models.Request{{ID: "1", Username: "alice", Email: "alice@example.com", CreateDate: 1700000000000}}, requests)
}

func TestReadEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	requests, err := c.Read(context.Background(), c.ListResource())
	require.NoError(t, err)
	assert.NotNil(t, requests)
	assert.Empty(t, requests)
}

func TestReadForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	_, err := c.Read(context.Background(), c.ListResource())
	require.Error(t, err)
	assert.True(t, IsType(err, TypeForbiddenError))
}

func TestReadServerErrorIsRejectedWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"UnknownError","message":"Unknown server error"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	_, err := c.Read(context.Background(), c.ListResource())
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.HTTPStatus())
	assert.Equal(t, "UnknownError", remote.Type)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReadRetriesButMutateDoesNot(t *testing.T) {
	var gets, posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
		case http.MethodPost:
			posts.Add(1)
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(Options{
		BaseURL:     srv.URL,
		Token:       "tok",
		ReadRetries: 1,
		RateLimit:   1000,
	})
	require.NoError(t, err)
	c.retryClient.RetryWaitMin = time.Millisecond
	c.retryClient.RetryWaitMax = time.Millisecond

	_, readErr := c.Read(context.Background(), c.ListResource())
	mutateErr := c.Mutate(context.Background(), c.ItemResource("1"), "approve", nil)

	assert.Equal(t, int32(2), gets.Load())
	assert.Equal(t, int32(1), posts.Load())

	var remote *RemoteError
	require.ErrorAs(t, readErr, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	require.ErrorAs(t, mutateErr, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	assert.False(t, errors.Is(readErr, ErrUnreachable))
	assert.False(t, errors.Is(mutateErr, ErrUnreachable))
}

func TestMalformedErrorBodyIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":`))
	}))
	defer srv.Close()

	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c, err := NewClient(Options{BaseURL: srv.URL, Token: "tok", RateLimit: 1000, Logger: logger})
	require.NoError(t, err)

	_, err = c.Read(context.Background(), c.ListResource())
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadRequest, remote.StatusCode)
	assert.Empty(t, remote.Type)

	var messages []string
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "malformed error body")
	assert.Contains(t, messages, "request rejected")
}

func TestReadUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv, config.DialectUser)
	srv.Close()

	_, err := c.Read(context.Background(), c.ListResource())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestMutateUserDialect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/user/registration/2", r.URL.Path)
		assert.Equal(t, FormContentType, r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "reject", r.PostForm.Get("action"))
		assert.Equal(t, "spam", r.PostForm.Get("comment"))
		assert.Empty(t, r.PostForm.Get("reason"))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	err := c.Mutate(context.Background(), c.ItemResource("2"), "reject", url.Values{"reason": {"spam"}})
	assert.NoError(t, err)
}

func TestMutateAdminDialect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/registration/1/approve", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Empty(t, r.PostForm.Get("action"))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectAdmin)
	err := c.Mutate(context.Background(), c.ItemResource("1"), "approve", nil)
	assert.NoError(t, err)
}

func TestMutateRejectsBadInput(t *testing.T) {
	c := &Client{Dialect: config.DialectUser}
	assert.Error(t, c.Mutate(context.Background(), c.ItemResource("1"), "delete", nil))
	assert.Error(t, c.Mutate(context.Background(), "user/registration/a%20b", "approve", nil))
}

func TestMutateRequestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"RequestNotFound","message":"The request does not exist"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	err := c.Mutate(context.Background(), c.ItemResource("9"), "approve", nil)
	require.Error(t, err)
	assert.True(t, IsType(err, TypeRequestNotFound))
	assert.False(t, errors.Is(err, ErrUnreachable))
}

func TestCreateRegistration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/registration", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"AlreadyExistingUsername","message":"Login already used"}`))
			return
		}
		assert.Equal(t, "carol@example.com", r.PostForm.Get("email"))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	err := c.CreateRegistration(context.Background(), models.Registration{Username: "carol", Password: "password1", Email: "carol@example.com"})
	require.NoError(t, err)

	err = c.CreateRegistration(context.Background(), models.Registration{Username: "taken", Password: "password1", Email: "t@example.com"})
	require.Error(t, err)
	assert.True(t, IsType(err, TypeAlreadyExistingUsername))
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestCreateRegistrationAdminDialectUsesUserEndpoint(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectAdmin)
	err := c.CreateRegistration(context.Background(), models.Registration{Username: "carol", Password: "password1", Email: "carol@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/user/registration"}, paths)
}

func TestCreateRegistrationOtherRejectionIsNotUsernameTaken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"ValidationError","message":"email invalid"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, config.DialectUser)
	err := c.CreateRegistration(context.Background(), models.Registration{Username: "carol", Password: "password1", Email: "carol@example.com"})
	require.Error(t, err)
	assert.True(t, IsType(err, TypeValidationError))
	assert.False(t, errors.Is(err, models.ErrUsernameTaken))
}
