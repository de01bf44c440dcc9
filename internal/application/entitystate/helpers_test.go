package entitystate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// widget is a minimal entity with a nested slice to exercise deep copies.
type widget struct {
	ID   string
	Name string
	Tags []string
}

func (w widget) EntityID() string { return w.ID }

func (w widget) Clone() widget {
	c := w
	if w.Tags != nil {
		c.Tags = append([]string(nil), w.Tags...)
	}
	return c
}

type widgetInput struct {
	Name string
	Tags []string
}

type widgetKey int

const (
	keySearch widgetKey = iota
	keyTag
)

var errTooShort = errors.New("too short")

// widgetValidator enforces a 3-character minimum name.
type widgetValidator struct {
	nextID int
	fixID  string
}

func (v *widgetValidator) Create(in widgetInput) (widget, error) {
	if len(in.Name) < 3 {
		return widget{}, errTooShort
	}
	if v.fixID != "" {
		return widget{ID: v.fixID, Name: in.Name, Tags: in.Tags}, nil
	}
	v.nextID++
	return widget{ID: fmt.Sprintf("w%d", v.nextID), Name: in.Name, Tags: in.Tags}, nil
}

func (v *widgetValidator) Update(cur widget, in widgetInput) (widget, error) {
	if len(in.Name) < 3 {
		return widget{}, errTooShort
	}
	cur.Name = in.Name
	cur.Tags = in.Tags
	return cur, nil
}

// fakePort records calls and can fail or hold individual calls.
type fakePort struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]error
	holds   []chan error
	started chan string
	items   []widget

	// canonical transforms entities on add/update to mimic server-side fields.
	canonical func(widget) widget
}

func newFakePort(items ...widget) *fakePort {
	return &fakePort{
		calls:   make(map[string]int),
		fail:    make(map[string]error),
		started: make(chan string, 16),
		items:   items,
	}
}

// hold makes the next port call block until an error (or nil) is sent on the returned channel.
func (p *fakePort) hold() chan error {
	ch := make(chan error)
	p.mu.Lock()
	p.holds = append(p.holds, ch)
	p.mu.Unlock()
	return ch
}

func (p *fakePort) count(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *fakePort) enter(op string) error {
	p.mu.Lock()
	p.calls[op]++
	err := p.fail[op]
	var ch chan error
	if len(p.holds) > 0 {
		ch = p.holds[0]
		p.holds = p.holds[1:]
	}
	p.mu.Unlock()

	select {
	case p.started <- op:
	default:
	}
	if ch != nil {
		return <-ch
	}
	return err
}

func (p *fakePort) GetAll(_ context.Context) ([]widget, error) {
	if err := p.enter("get_all"); err != nil {
		return nil, err
	}
	return cloneAll(p.items), nil
}

func (p *fakePort) Add(_ context.Context, w widget) (widget, error) {
	if err := p.enter("add"); err != nil {
		return widget{}, err
	}
	if p.canonical != nil {
		return p.canonical(w), nil
	}
	return w, nil
}

func (p *fakePort) Update(_ context.Context, w widget) (widget, error) {
	if err := p.enter("update"); err != nil {
		return widget{}, err
	}
	if p.canonical != nil {
		return p.canonical(w), nil
	}
	return w, nil
}

func (p *fakePort) Delete(_ context.Context, id string) error {
	return p.enter("delete")
}

// recorderSpy captures RecordPortCall invocations.
type recorderSpy struct {
	mu   sync.Mutex
	ops  []string
	errs int
}

func (r *recorderSpy) RecordPortCall(store, op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, store+"."+op)
	if err != nil {
		r.errs++
	}
}

func newWidgetStore(port *fakePort, opts Options, seed ...widget) *Store[widgetKey, widget, widgetInput] {
	return New[widgetKey]("widgets", Deps[widget, widgetInput]{
		Validator: &widgetValidator{},
		Port:      port,
		Seed:      seed,
	}, opts)
}

func names(ws []widget) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Name)
	}
	return out
}
