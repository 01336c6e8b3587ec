package quiz

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies what changed in a quiz.
type EventType string

// Controller event types.
const (
	EventStarted   EventType = "started"
	EventTick      EventType = "tick"
	EventAnswered  EventType = "answered"
	EventExpired   EventType = "expired"
	EventCompleted EventType = "completed"
	EventReset     EventType = "reset"
)

// Event is published to subscribers after every state change.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Outcome  *Outcome
	Expiry   *Expiry
	Outcomes []Outcome // completed only: the review of the run that just ended
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	TickInterval time.Duration // default 100ms
	Logger       zerolog.Logger
}

const (
	defaultTickInterval = 100 * time.Millisecond
	subscriberBuffer    = 16
)

type command struct {
	apply func(m *Machine) []Event
	reply chan Snapshot
}

// Controller serializes every mutation of a Machine onto the goroutine running Run.
// User commands, timer ticks and expiries all pass through the same loop, so a
// click and an expiry racing for one question resolve to whichever is handled first.
type Controller struct {
	machine      *Machine
	tickInterval time.Duration
	logger       zerolog.Logger

	commands chan command
	expiries chan Expiry
	done     chan struct{}

	// loop-owned
	lastSecond int

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewController wraps m. The machine must not be used directly afterwards.
func NewController(m *Machine, opts ControllerOptions) *Controller {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &Controller{
		machine:      m,
		tickInterval: interval,
		logger:       opts.Logger.With().Str("component", "quiz_controller").Logger(),
		commands:     make(chan command),
		expiries:     make(chan Expiry, 1),
		done:         make(chan struct{}),
		lastSecond:   -1,
		subscribers:  make(map[chan Event]struct{}),
	}
}

// Run owns the machine until ctx is cancelled. On exit the timer is stopped,
// subscriber channels are closed and pending commands fail with ErrStopped.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-c.commands:
			// Events go out before the reply so a caller that returns from a
			// command can already drain what it caused.
			c.publish(cmd.apply(c.machine))
			cmd.reply <- c.machine.Snapshot()
		case exp := <-c.expiries:
			c.publish(c.expire(c.machine, exp.Epoch))
		case <-ticker.C:
			c.tick()
		}
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Start begins, or after completion restarts, the quiz.
func (c *Controller) Start(ctx context.Context) (Snapshot, error) {
	return c.do(ctx, func(m *Machine) []Event {
		if !m.Start() {
			return nil
		}
		c.lastSecond = -1
		return []Event{{Type: EventStarted, Snapshot: m.Snapshot()}}
	})
}

// SubmitAnswer answers the active question.
func (c *Controller) SubmitAnswer(ctx context.Context, selected int) (Snapshot, error) {
	return c.do(ctx, func(m *Machine) []Event {
		outcome, ok := m.SubmitAnswer(selected)
		if !ok {
			return nil
		}
		return c.answered(m, outcome)
	})
}

// Answer answers question questionIndex. Answers for any other question than the
// active one are ignored, so a late click never lands on the next question.
func (c *Controller) Answer(ctx context.Context, questionIndex, selected int) (Snapshot, error) {
	return c.do(ctx, func(m *Machine) []Event {
		outcome, ok := m.Answer(questionIndex, selected)
		if !ok {
			return nil
		}
		return c.answered(m, outcome)
	})
}

// Expire forces a timeout for the timer run identified by epoch.
func (c *Controller) Expire(ctx context.Context, epoch uint64) (Snapshot, error) {
	return c.do(ctx, func(m *Machine) []Event {
		return c.expire(m, epoch)
	})
}

// Reset returns the quiz to its initial values.
func (c *Controller) Reset(ctx context.Context) (Snapshot, error) {
	return c.do(ctx, func(m *Machine) []Event {
		m.Reset()
		c.lastSecond = -1
		return []Event{{Type: EventReset, Snapshot: m.Snapshot()}}
	})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	return c.do(ctx, func(*Machine) []Event { return nil })
}

// Subscribe returns a channel of events and a cancel func. A subscriber that falls
// behind loses its oldest pending event rather than blocking the loop. The channel
// is closed on cancel or when the controller stops.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) do(ctx context.Context, apply func(m *Machine) []Event) (Snapshot, error) {
	cmd := command{apply: apply, reply: make(chan Snapshot, 1)}
	select {
	case c.commands <- cmd:
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-cmd.reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (c *Controller) answered(m *Machine, outcome Outcome) []Event {
	c.lastSecond = -1
	snap := m.Snapshot()
	events := []Event{{Type: EventAnswered, Snapshot: snap, Outcome: &outcome}}
	return appendCompleted(m, snap, events)
}

func (c *Controller) expire(m *Machine, epoch uint64) []Event {
	outcome, ok := m.Expire(epoch)
	if !ok {
		return nil
	}
	c.lastSecond = -1
	snap := m.Snapshot()
	events := []Event{{
		Type:     EventExpired,
		Snapshot: snap,
		Outcome:  &outcome,
		Expiry:   &Expiry{QuestionIndex: outcome.QuestionIndex, Epoch: epoch},
	}}
	return appendCompleted(m, snap, events)
}

// appendCompleted adds the completion event, capturing the outcomes inside the
// loop so a restart queued right behind the last answer cannot clear them first.
func appendCompleted(m *Machine, snap Snapshot, events []Event) []Event {
	if snap.Phase != PhaseCompleted {
		return events
	}
	return append(events, Event{Type: EventCompleted, Snapshot: snap, Outcomes: m.Outcomes()})
}

func (c *Controller) tick() {
	exp, expired := c.machine.Tick()
	if expired {
		select {
		case c.expiries <- exp:
		default:
			c.logger.Warn().Uint64("epoch", exp.Epoch).Msg("expiry queue full")
		}
		return
	}
	if c.machine.Phase() != PhaseAwaitingAnswer {
		return
	}

	snap := c.machine.Snapshot()
	second := int(math.Ceil(snap.State.TimeRemaining))
	if second == c.lastSecond {
		return
	}
	c.lastSecond = second
	c.publish([]Event{{Type: EventTick, Snapshot: snap}})
}

func (c *Controller) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range events {
		for ch := range c.subscribers {
			select {
			case ch <- ev:
			default:
				select {
				case <-ch:
				default:
				}
				ch <- ev
			}
		}
	}
}

func (c *Controller) shutdown() {
	c.machine.Stop()
	close(c.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}
