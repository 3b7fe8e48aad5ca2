package link

import (
	"container/list"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/iolink/pkg/l0/wire"
)

// Report is a pin report accepted by the accounting.
type Report struct {
	Pin   int
	State wire.State
	// Value is the net value, high count minus low count.
	Value int64
	// Count is the counter of State after this report.
	Count uint64
}

// ConnectionHandler is called when the connection state changes.
type ConnectionHandler func(connected bool) error

// ReportHandler is called for each accepted report.
type ReportHandler func(Report) error

// Subscription is a registered handler.
type Subscription struct {
	d   *dispatcher
	lst *list.List
	elm *list.Element
}

// Close unsubscribes the handler. It's safe to call multiple times.
func (s *Subscription) Close() error {
	s.d.lock.Lock()
	s.lst.Remove(s.elm)
	s.d.lock.Unlock()
	return nil
}

// dispatcher delivers events in registration order. A failing handler
// doesn't stop delivery to the others.
type dispatcher struct {
	lock    sync.RWMutex
	conn    list.List
	data    list.List
	pins    [wire.NumPins]list.List
	metrics *Metrics
}

func (d *dispatcher) subscribe(lst *list.List, h interface{}) *Subscription {
	d.lock.Lock()
	defer d.lock.Unlock()
	return &Subscription{d: d, lst: lst, elm: lst.PushBack(h)}
}

func (d *dispatcher) snapshot(lst *list.List) []interface{} {
	d.lock.RLock()
	defer d.lock.RUnlock()
	handlers := make([]interface{}, 0, lst.Len())
	for elm := lst.Front(); elm != nil; elm = elm.Next() {
		handlers = append(handlers, elm.Value)
	}
	return handlers
}

func (d *dispatcher) connectionChanged(connected bool) {
	for _, h := range d.snapshot(&d.conn) {
		fn := h.(ConnectionHandler)
		d.call("connection", func() error { return fn(connected) })
	}
}

func (d *dispatcher) report(r Report) {
	for _, h := range d.snapshot(&d.data) {
		fn := h.(ReportHandler)
		d.call("data", func() error { return fn(r) })
	}
	for _, h := range d.snapshot(&d.pins[r.Pin]) {
		fn := h.(ReportHandler)
		d.call("pin", func() error { return fn(r) })
	}
}

func (d *dispatcher) call(event string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("%s handler panic: %v", event, r)
			d.metrics.subscriberFailed(event)
		}
	}()
	if err := fn(); err != nil {
		glog.Errorf("%s handler error: %v", event, err)
		d.metrics.subscriberFailed(event)
	}
}
