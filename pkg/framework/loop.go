package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the loop period when Interval is not set.
const DefaultInterval = 10 * time.Millisecond

// Loop invokes controllers periodically, in priority order, from a single
// goroutine. Iterations never overlap.
type Loop struct {
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runners     []Runnable
	lock        sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	priorityLevel int
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// WithInterval sets the period.
func (l *Loop) WithInterval(interval time.Duration) *Loop {
	l.Interval = interval
	return l
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.lock.Lock()
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	l.lock.Unlock()
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.AddRunnable(runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions started along with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.lock.Lock()
	l.runners = append(l.runners, runnables...)
	l.lock.Unlock()
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	l.lock.Lock()
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	runners := l.runners
	l.lock.Unlock()

	runner := NewRunnerWith(ctx)
	runner.Go(runners...)

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case now := <-ticker.C:
			l.RunIteration(ctx, now)
		case <-l.wakeUpCh:
			l.RunIteration(ctx, time.Now())
		}
	}
}

// RunIteration runs all controllers once.
func (l *Loop) RunIteration(ctx context.Context, now time.Time) {
	iter := &loopIteration{Loop: l, ctx: ctx, time: now}
	for i := 0; i < PriorityLevels; i++ {
		l.lock.Lock()
		ctls := l.controllers[i]
		l.lock.Unlock()
		iter.priorityLevel = i
		for _, ctl := range ctls {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	l.lock.Lock()
	ch := l.wakeUpCh
	l.lock.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}
