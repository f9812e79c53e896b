package workflow

import (
	"context"
	"net/url"
	"sync"

	"github.com/deathrjj/teedy-moderation-tui/models"
)

type mutation struct {
	resource string
	action   string
	payload  url.Values
}

type fakeSource struct {
	mu        sync.Mutex
	reads     int
	read      func(ctx context.Context, call int) ([]models.Request, error)
	mutations []mutation
	mutateErr error
}

func (f *fakeSource) Read(ctx context.Context, resource string) ([]models.Request, error) {
	f.mu.Lock()
	f.reads++
	call := f.reads
	read := f.read
	f.mu.Unlock()
	return read(ctx, call)
}

func (f *fakeSource) Mutate(ctx context.Context, resource, action string, payload url.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, mutation{resource: resource, action: action, payload: payload})
	return f.mutateErr
}

type notification struct {
	title   string
	message string
}

type fakeDialogs struct {
	outcome Outcome
	err     error
	shown   []DialogConfig
	notes   []notification
}

func (f *fakeDialogs) Confirm(ctx context.Context, cfg DialogConfig) (Outcome, error) {
	f.shown = append(f.shown, cfg)
	return f.outcome, f.err
}

func (f *fakeDialogs) Notify(ctx context.Context, title, message string) {
	f.notes = append(f.notes, notification{title: title, message: message})
}

type statusErr struct {
	status int
	typ    string
}

func (e *statusErr) Error() string     { return e.typ }
func (e *statusErr) HTTPStatus() int   { return e.status }
func (e *statusErr) ErrorType() string { return e.typ }
