// Package historyservice implements the single-threaded History owner
// described in spec.md §4.6/§5: one goroutine processes Push/GetGen/GetDiff
// requests off a single channel in arrival order, answering blocking
// queries via a nested wait loop that accepts only further Push messages.
// It is the Go realization of universe_history.rs's UniverseHistory::detach,
// with the transport (§6) expressed as plain Go channels instead of an
// external mailbox.
package historyservice

import (
	"errors"
	"fmt"

	"automaton/diff"
	"automaton/grid"
	"automaton/history"
)

// ErrProtocolViolation is fatal to the service: a non-Push request arrived
// while a blocking query's nested wait was in progress.
var ErrProtocolViolation = errors.New("historyservice: non-push request during blocking wait")

// kind tags which of the three request shapes a Request carries.
type kind int

const (
	kindPush kind = iota
	kindGetGen
	kindGetDiff
)

// Request is the single message shape accepted by the service's channel;
// exactly one of the three request shapes in spec.md §6 is populated per
// kind. Construct one with Push, NewGetGen, or NewGetDiff rather than
// building it directly.
type Request[S comparable] struct {
	kind kind

	pushGrid *grid.Grid[S]

	gen      int
	ref      int
	target   int
	blocking bool

	reply chan Response[S]
}

// Response carries the answer to a GetGen or GetDiff request.
type Response[S comparable] struct {
	// Gen is populated (with ok=true) in answer to a GetGen request.
	Gen   *grid.Grid[S]
	GenOK bool

	// Diff is populated (with ok=true) in answer to a GetDiff request.
	Diff   diff.Diff[S]
	DiffOK bool

	// Err is non-nil only for GetDiff's InvalidRange error (spec.md §7);
	// GetGen never errors.
	Err error
}

// Push is a fire-and-forget request: always applied synchronously, in
// arrival order, with no reply.
func Push[S comparable](g *grid.Grid[S]) Request[S] {
	return Request[S]{kind: kindPush, pushGrid: g}
}

// NewGetGen builds a request/response pair for generation gen. Send req on
// the service's channel, then receive exactly one Response from reply.
func NewGetGen[S comparable](gen int, blocking bool) (req Request[S], reply <-chan Response[S]) {
	ch := make(chan Response[S], 1)
	return Request[S]{kind: kindGetGen, gen: gen, blocking: blocking, reply: ch}, ch
}

// NewGetDiff builds a request/response pair for the diff spanning
// [refGen, targetGen).
func NewGetDiff[S comparable](refGen, targetGen int, blocking bool) (req Request[S], reply <-chan Response[S]) {
	ch := make(chan Response[S], 1)
	return Request[S]{kind: kindGetDiff, ref: refGen, target: targetGen, blocking: blocking, reply: ch}, ch
}

// Service owns a History outright; no reference to it escapes beyond the
// grid/diff value copies handed back in Responses.
type Service[S comparable] struct {
	requests chan Request[S]
	errs     chan error
}

// New returns a service with a channel of the given buffer size. A buffer
// of 0 is a valid, fully synchronous mailbox; a larger buffer lets a single
// fast producer get ahead of the service without blocking.
func New[S comparable](buffer int) *Service[S] {
	return &Service[S]{
		requests: make(chan Request[S], buffer),
		errs:     make(chan error, 1),
	}
}

// Requests returns the send side of the service's mailbox. Closing it (once
// all producers are done) is how a caller triggers the service's DeadChannel
// shutdown path; the service never closes it itself.
func (s *Service[S]) Requests() chan<- Request[S] {
	return s.requests
}

// Errs reports the fatal error that ended the service's Run loop, if any.
// It is closed when Run returns, so a single receive after Run exits always
// yields either the error or the zero value.
func (s *Service[S]) Errs() <-chan error {
	return s.errs
}

// Run drives the service's main loop until the request channel is closed
// (clean shutdown) or a ProtocolViolation is observed (fatal shutdown). It
// should be called from its own goroutine; Run owns initial/fCheck's
// resulting History exclusively for its lifetime.
func (s *Service[S]) Run(initial *grid.Grid[S], fCheck int) {
	defer close(s.errs)
	h := history.New(initial, fCheck)

	for {
		req, ok := <-s.requests
		if !ok {
			return // DeadChannel: all senders released the channel.
		}
		if err := s.dispatch(h, req); err != nil {
			s.errs <- err
			return
		}
	}
}

func (s *Service[S]) dispatch(h *history.History[S], req Request[S]) error {
	switch req.kind {
	case kindPush:
		// A corrupted push (dimension mismatch) is a caller bug; the
		// service has no one to surface it to since Push has no reply, so
		// it is dropped rather than silently desynchronizing the log.
		_ = h.Push(req.pushGrid)
		return nil

	case kindGetGen:
		if g, ok := h.GetGen(req.gen); ok {
			req.reply <- Response[S]{Gen: g, GenOK: true}
			return nil
		}
		if !req.blocking {
			req.reply <- Response[S]{GenOK: false}
			return nil
		}
		return s.waitForGen(h, req)

	case kindGetDiff:
		d, ok, err := h.GetDiff(req.ref, req.target)
		if err != nil {
			req.reply <- Response[S]{Err: err}
			return nil
		}
		if ok {
			req.reply <- Response[S]{Diff: d, DiffOK: true}
			return nil
		}
		if !req.blocking {
			req.reply <- Response[S]{DiffOK: false}
			return nil
		}
		return s.waitForDiff(h, req)

	default:
		return fmt.Errorf("historyservice: unknown request kind %d", req.kind)
	}
}

// waitForGen implements the nested blocking wait of spec.md §4.6: receive
// only Push messages, applying each and re-checking satisfiability, until
// gen is available or the channel dies. Any other request kind arriving
// here is a protocol violation.
func (s *Service[S]) waitForGen(h *history.History[S], req Request[S]) error {
	for {
		next, ok := <-s.requests
		if !ok {
			// DeadChannel: drop the pending response by closing its reply
			// channel, and terminate cleanly.
			close(req.reply)
			return nil
		}
		if next.kind != kindPush {
			return fmt.Errorf("%w: got kind %d while awaiting GetGen(%d)", ErrProtocolViolation, next.kind, req.gen)
		}
		_ = h.Push(next.pushGrid)
		if g, ok := h.GetGen(req.gen); ok {
			req.reply <- Response[S]{Gen: g, GenOK: true}
			return nil
		}
	}
}

// waitForDiff is waitForGen's analogue for a blocking GetDiff.
func (s *Service[S]) waitForDiff(h *history.History[S], req Request[S]) error {
	for {
		next, ok := <-s.requests
		if !ok {
			close(req.reply)
			return nil
		}
		if next.kind != kindPush {
			return fmt.Errorf("%w: got kind %d while awaiting GetDiff(%d,%d)", ErrProtocolViolation, next.kind, req.ref, req.target)
		}
		_ = h.Push(next.pushGrid)
		if d, ok, err := h.GetDiff(req.ref, req.target); err == nil && ok {
			req.reply <- Response[S]{Diff: d, DiffOK: true}
			return nil
		}
	}
}

// Client is a small convenience wrapper around a Service's request channel
// for callers that want plain method calls instead of building Requests by
// hand.
type Client[S comparable] struct {
	requests chan<- Request[S]
}

// NewClient wraps the send side of a running Service.
func NewClient[S comparable](requests chan<- Request[S]) *Client[S] {
	return &Client[S]{requests: requests}
}

// PushGen sends a fire-and-forget Push.
func (c *Client[S]) PushGen(g *grid.Grid[S]) {
	c.requests <- Push(g)
}

// GetGen sends a GetGen request and waits for its response.
func (c *Client[S]) GetGen(gen int, blocking bool) (*grid.Grid[S], bool) {
	req, reply := NewGetGen[S](gen, blocking)
	c.requests <- req
	resp, ok := <-reply
	if !ok {
		return nil, false
	}
	return resp.Gen, resp.GenOK
}

// GetDiff sends a GetDiff request and waits for its response.
func (c *Client[S]) GetDiff(refGen, targetGen int, blocking bool) (diff.Diff[S], bool, error) {
	req, reply := NewGetDiff[S](refGen, targetGen, blocking)
	c.requests <- req
	resp, ok := <-reply
	if !ok {
		return diff.Diff[S]{}, false, nil
	}
	return resp.Diff, resp.DiffOK, resp.Err
}
