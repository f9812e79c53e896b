package workflow

import (
	"context"
	"sync"

	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/rotisserie/eris"
)

// ListController holds the latest snapshot of a remote request list.
//
// Loads supersede each other: starting a load cancels the one in flight and
// only the response of the most recent load may replace the snapshot.
// Snapshots reach the changed hook one at a time and in commit order, and the
// last one delivered is always the current snapshot.
type ListController struct {
	source   Source
	resource string

	mu         sync.Mutex
	snapshot   []models.Request
	seq        uint64
	cancel     context.CancelFunc
	inFlight   int
	changed    func([]models.Request)
	pending    bool
	delivering bool
}

// NewListController creates a controller reading resource from source.
func NewListController(source Source, resource string) *ListController {
	return &ListController{
		source:   source,
		resource: resource,
	}
}

// SetChangedFunc sets the hook called with a copy of the snapshot after it
// changes. It runs on a goroutine that called Load; snapshots committed while
// the hook is running are coalesced into one more call with the newest.
func (l *ListController) SetChangedFunc(fn func([]models.Request)) *ListController {
	l.mu.Lock()
	l.changed = fn
	l.mu.Unlock()
	return l
}

// Snapshot returns a copy of the current snapshot.
func (l *ListController) Snapshot() []models.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyRequests(l.snapshot)
}

// Loading reports whether a load is in flight.
func (l *ListController) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight > 0
}

// Load fetches the list and replaces the snapshot with it. On failure the
// previous snapshot is kept. A load superseded by a newer one returns
// context.Canceled and leaves the snapshot alone.
func (l *ListController) Load(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	l.cancel = cancel
	l.inFlight++
	l.mu.Unlock()

	requests, err := l.source.Read(ctx, l.resource)

	l.mu.Lock()
	l.inFlight--
	if seq != l.seq {
		l.mu.Unlock()
		return eris.Wrap(context.Canceled, "load superseded")
	}
	l.cancel = nil
	if err != nil {
		l.mu.Unlock()
		return eris.Wrapf(err, "load %s", l.resource)
	}
	l.snapshot = copyRequests(requests)
	l.pending = true
	if l.delivering {
		l.mu.Unlock()
		return nil
	}
	l.delivering = true
	l.mu.Unlock()

	l.deliver()
	return nil
}

// deliver hands the current snapshot to the hook until no newer one is
// pending. Only one goroutine delivers at a time.
func (l *ListController) deliver() {
	for {
		l.mu.Lock()
		if !l.pending || l.changed == nil {
			l.pending = false
			l.delivering = false
			l.mu.Unlock()
			return
		}
		l.pending = false
		changed := l.changed
		out := copyRequests(l.snapshot)
		l.mu.Unlock()

		changed(out)
	}
}

func copyRequests(in []models.Request) []models.Request {
	if in == nil {
		return nil
	}
	out := make([]models.Request, len(in))
	copy(out, in)
	return out
}
