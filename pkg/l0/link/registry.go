package link

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	fx "github.com/robotalks/iolink/pkg/framework"
	"github.com/robotalks/iolink/pkg/l0/transport"
)

// Registry keeps one Link per transport name.
type Registry struct {
	// Registerer, if set, registers Metrics for each Link created.
	Registerer prometheus.Registerer

	opener transport.Opener
	opts   []Option

	links map[string]*Link
	// metrics outlive Close, a collector registers only once per name.
	metrics map[string]*Metrics
	lock    sync.Mutex
}

// NewRegistry creates a Registry opening transports with opener.
// opts apply to every Link created.
func NewRegistry(opener transport.Opener, opts ...Option) *Registry {
	return &Registry{
		opener:  opener,
		opts:    opts,
		links:   make(map[string]*Link),
		metrics: make(map[string]*Metrics),
	}
}

// Get returns the Link for name, creating it on first use.
func (r *Registry) Get(name string, opts ...Option) (*Link, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if l := r.links[name]; l != nil {
		return l, nil
	}
	t, err := r.opener(name)
	if err != nil {
		return nil, err
	}
	l, err := New(t, append(append([]Option(nil), r.opts...), opts...)...)
	if err != nil {
		return nil, err
	}
	if r.Registerer != nil {
		m := r.metrics[name]
		if m == nil {
			m = NewMetrics(r.Registerer, name)
			r.metrics[name] = m
		}
		WithMetrics(m)(l)
		l.metrics.setConnected(false)
	}
	r.links[name] = l
	return l, nil
}

// Links returns all Links sorted by name.
func (r *Registry) Links() []*Link {
	r.lock.Lock()
	links := make([]*Link, 0, len(r.links))
	for _, l := range r.links {
		links = append(links, l)
	}
	r.lock.Unlock()
	sort.Slice(links, func(i, j int) bool { return links[i].Name() < links[j].Name() })
	return links
}

// Close closes all Links and forgets them. A later Get opens a new Link
// reporting to the same metrics.
func (r *Registry) Close() error {
	r.lock.Lock()
	links := r.links
	r.links = make(map[string]*Link)
	r.lock.Unlock()
	var errs fx.AggregatedError
	for _, l := range links {
		errs.Add(l.Close())
	}
	return errs.Aggregate()
}

// Control implements framework.Controller by ticking all Links.
func (r *Registry) Control(cc fx.ControlContext) error {
	for _, l := range r.Links() {
		if err := l.Control(cc); err != nil {
			return err
		}
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (r *Registry) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIO, r)
}
