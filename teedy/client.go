package teedy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/deathrjj/teedy-moderation-tui/config"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	JsonContentType = "application/json"
	FormContentType = "application/x-www-form-urlencoded"
	AuthCookie      = "auth_token"
)

var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Options configures a Client.
type Options struct {
	BaseURL     string
	Token       string
	Dialect     config.Dialect
	Timeout     time.Duration
	ReadRetries int
	RateLimit   float64
	Logger      logrus.FieldLogger
}

// Client handles Teedy registration API interactions
type Client struct {
	BaseURL string
	Token   string
	Dialect config.Dialect

	client      *http.Client
	retryClient *retryablehttp.Client
	limiter     *rate.Limiter
	logger      logrus.FieldLogger
}

// NewClient creates a new Teedy API client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, eris.New("teedy URL not set")
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, eris.Wrapf(err, "invalid teedy URL %q", opts.BaseURL)
	}
	if opts.Dialect == "" {
		opts.Dialect = config.DialectUser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}

	httpClient := &http.Client{
		Transport: cleanhttp.DefaultPooledTransport(),
		Timeout:   opts.Timeout,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = opts.ReadRetries
	retryClient.Logger = leveledLogger{opts.Logger}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		Token:       opts.Token,
		Dialect:     opts.Dialect,
		client:      httpClient,
		retryClient: retryClient,
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:      opts.Logger,
	}, nil
}

// ListResource is the resource that lists pending registration requests.
func (c *Client) ListResource() string {
	if c.Dialect == config.DialectAdmin {
		return "registration/list"
	}
	return "user/registration"
}

// ItemResource is the resource addressing a single registration request.
func (c *Client) ItemResource(id string) string {
	if c.Dialect == config.DialectAdmin {
		return "registration/" + url.PathEscape(id)
	}
	return "user/registration/" + url.PathEscape(id)
}

// Read fetches the registration requests listed at resource.
func (c *Client) Read(ctx context.Context, resource string) ([]models.Request, error) {
	var list models.RequestList
	if err := c.send(ctx, http.MethodGet, resource, nil, true, &list); err != nil {
		return nil, err
	}
	if list.Requests == nil {
		list.Requests = []models.Request{}
	}
	c.logger.WithField("resource", resource).Debugf("read %d requests", len(list.Requests))
	return list.Requests, nil
}

// Mutate applies action to the request addressed by resource. The "reason"
// payload key is carried as "comment" by the user dialect.
func (c *Client) Mutate(ctx context.Context, resource, action string, payload url.Values) error {
	if !models.Verb(action).Valid() {
		return eris.Errorf("unknown action %q", action)
	}
	if err := checkItemResource(resource); err != nil {
		return err
	}

	values := make(url.Values)
	for key, vs := range payload {
		for _, v := range vs {
			values.Add(key, v)
		}
	}

	path := resource
	if c.Dialect == config.DialectAdmin {
		path = resource + "/" + action
	} else {
		values.Set("action", action)
		if reason, ok := values["reason"]; ok {
			values["comment"] = reason
			values.Del("reason")
		}
	}

	if err := c.send(ctx, http.MethodPost, path, values, false, nil); err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{"resource": resource, "action": action}).Info("mutation applied")
	return nil
}

// CreateRegistration files a new registration request. It does not need a
// token, and both dialects register through user/registration. A taken
// username is reported as models.ErrUsernameTaken.
func (c *Client) CreateRegistration(ctx context.Context, reg models.Registration) error {
	values := url.Values{
		"username": {reg.Username},
		"password": {reg.Password},
		"email":    {reg.Email},
	}
	if err := c.send(ctx, http.MethodPost, "user/registration", values, false, nil); err != nil {
		if IsType(err, TypeAlreadyExistingUsername) {
			return errors.Join(models.ErrUsernameTaken, err)
		}
		return err
	}
	c.logger.WithField("username", reg.Username).Info("registration filed")
	return nil
}

func (c *Client) send(ctx context.Context, method, resource string, values url.Values, retryable bool, response any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(errors.Join(ErrUnreachable, err), "rate limiter")
	}

	requestURL := c.BaseURL + "/api/" + strings.TrimLeft(resource, "/")
	var body io.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return eris.Wrapf(err, "build %s %s", method, resource)
	}
	req.Header.Add("Accept", JsonContentType)
	if values != nil {
		req.Header.Add("Content-Type", FormContentType)
	}
	if c.Token != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: c.Token})
	}

	httpClient := c.client
	if retryable {
		httpClient = c.retryClient.StandardClient()
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"method": method, "resource": resource}).WithError(err).Warn("request failed")
		return eris.Wrapf(errors.Join(ErrUnreachable, err), "%s %s", method, resource)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing teedy response body")
		}
	}(resp.Body)

	if err := ensureSuccess(resp, c.logger); err != nil {
		c.logger.WithFields(logrus.Fields{"method": method, "resource": resource}).WithError(err).Warn("request rejected")
		return eris.Wrapf(err, "%s %s", method, resource)
	}

	if response != nil {
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			return eris.Wrapf(err, "decode %s response", resource)
		}
	}
	return nil
}

func checkItemResource(resource string) error {
	idx := strings.LastIndex(resource, "/")
	id, err := url.PathUnescape(resource[idx+1:])
	if err != nil || !requestIDPattern.MatchString(id) {
		return eris.Errorf("invalid request resource %q", resource)
	}
	return nil
}
