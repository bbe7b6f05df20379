package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"github.com/spektr-org/orderlens/report"
	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// SESSION — Interactive filter state over one Record Store
// ============================================================================
// A session keeps the last valid filter and recomputes the dashboard on every
// interaction. Requests are latest-wins: starting a new one cancels the one
// in flight, and a result that lands after a newer request started is
// dropped with ErrSuperseded. Nothing is queued.
// ============================================================================

var log = logging.MustGetLogger("session")

// ErrSuperseded is returned by a request overtaken by a newer one.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Request is one user interaction. Zero dates are open bounds.
type Request struct {
	Start      time.Time
	End        time.Time
	Categories []string
}

type runFunc func(ctx context.Context, st *store.Store, f report.Filter, opts ...report.Option) (*report.Dashboard, error)

// Session holds the filter state of one user.
type Session struct {
	id    string
	store *store.Store
	opts  []report.Option
	run   runFunc

	mu      sync.Mutex
	filter  report.Filter // filter of the last dashboard built
	pending report.Filter // filter of the newest request, the base for the next one
	gen     uint64
	cancel context.CancelFunc
	last   *report.Dashboard
}

// New opens a session whose initial filter spans the whole store.
func New(st *store.Store, opts ...report.Option) *Session {
	s := &Session{
		id:    uuid.NewString(),
		store: st,
		opts:  opts,
		run:   report.Run,
	}
	s.filter = s.defaultFilter()
	s.pending = s.filter
	log.Infof("session %s opened over %d records", s.id, st.Len())
	return s
}

func (s *Session) defaultFilter() report.Filter {
	first, last, ok := s.store.Bounds()
	if !ok {
		return report.NewFilter(time.Time{}, time.Time{})
	}
	return report.NewFilter(first, last)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Filter returns the filter of the last dashboard built. A request that
// fails or is superseded never changes it.
func (s *Session) Filter() report.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Last returns the most recent dashboard, or nil before the first refresh.
func (s *Session) Last() *report.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Categories lists the category labels available for selection.
func (s *Session) Categories() []string { return s.store.Categories() }

// Bounds returns the first and last purchase day in the store.
func (s *Session) Bounds() (first, last time.Time, ok bool) { return s.store.Bounds() }

// Apply validates req and recomputes the dashboard. An inverted range is
// rejected with a warning on the dashboard: the previous range stays in
// effect while the requested categories still apply.
func (s *Session) Apply(ctx context.Context, req Request) (*report.Dashboard, error) {
	return s.submit(ctx, func(current report.Filter) (report.Filter, string) {
		next := report.NewFilter(req.Start, req.End, req.Categories...)
		if err := next.Validate(); err != nil {
			log.Warningf("session %s: %v, keeping %s", s.id, err, current.Period())
			return current.WithCategories(req.Categories...), err.Error() + "; date filter not applied"
		}
		return next, ""
	})
}

// SetRange changes only the date range.
func (s *Session) SetRange(ctx context.Context, start, end time.Time) (*report.Dashboard, error) {
	return s.submit(ctx, func(current report.Filter) (report.Filter, string) {
		next := current.WithRange(start, end)
		if err := next.Validate(); err != nil {
			log.Warningf("session %s: %v, keeping %s", s.id, err, current.Period())
			return current, err.Error() + "; date filter not applied"
		}
		return next, ""
	})
}

// SetCategories changes only the category selection.
func (s *Session) SetCategories(ctx context.Context, categories ...string) (*report.Dashboard, error) {
	return s.submit(ctx, func(current report.Filter) (report.Filter, string) {
		return current.WithCategories(categories...), ""
	})
}

// Reset restores the full date range and clears the category selection.
func (s *Session) Reset(ctx context.Context) (*report.Dashboard, error) {
	return s.submit(ctx, func(report.Filter) (report.Filter, string) {
		return s.defaultFilter(), ""
	})
}

// Refresh recomputes the dashboard with the current filter.
func (s *Session) Refresh(ctx context.Context) (*report.Dashboard, error) {
	return s.submit(ctx, func(current report.Filter) (report.Filter, string) {
		return current, ""
	})
}

// submit derives the next filter from the newest request, cancels any
// request in flight and runs the pipeline. The filter is committed together
// with the dashboard.
func (s *Session) submit(ctx context.Context, next func(report.Filter) (report.Filter, string)) (*report.Dashboard, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	f, warning := next(s.pending)
	s.pending = f
	s.mu.Unlock()

	d, err := s.run(runCtx, s.store, f, s.opts...)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		log.Debugf("session %s: request %d superseded by %d", s.id, gen, s.gen)
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		s.pending = s.filter
		return nil, err
	}
	if warning != "" {
		d.Warnings = append([]string{warning}, d.Warnings...)
	}
	s.filter = f
	s.last = d
	return d, nil
}
