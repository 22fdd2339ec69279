package dose

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/keypad"
)

// InputEvent describes what one input tick did.
type InputEvent struct {
	Reset bool
	Key   keypad.Key // Key reported by the keypad this tick, if any
	Err   error      // Why Key did not change the target
}

// Input is the input loop: reset button and target entry.
type Input struct {
	period    time.Duration
	session   *Session
	button    Button
	keys      Keypad
	buzzer    Buzzer
	edge      bool
	lastPress bool
}

// NewInput creates an input loop. Reset is level-triggered unless
// cfg.Input.ResetEdge is set.
func NewInput(cfg *config.Config, session *Session, button Button, keys Keypad, buzzer Buzzer) *Input {
	return &Input{
		period:  cfg.Input.Period,
		session: session,
		button:  button,
		keys:    keys,
		buzzer:  buzzer,
		edge:    cfg.Input.ResetEdge,
	}
}

// Tick polls the button and keypad once.
func (in *Input) Tick(now time.Time) InputEvent {
	var ev InputEvent

	pressed := in.button != nil && in.button.Get()
	ev.Reset = pressed && (!in.edge || !in.lastPress)
	in.lastPress = pressed

	if in.keys != nil {
		ev.Key = in.keys.PollEdge()
	}

	ss := in.session
	ss.mu.Lock()
	if ev.Reset {
		ss.reset(now)
		in.silence()
	}
	if ev.Key != keypad.None {
		ev.Err = ss.enterDigit(ev.Key)
		if ev.Err == nil {
			ss.alarm = false
			in.silence()
		}
	}
	ss.mu.Unlock()

	if errors.Is(ev.Err, ErrBufferFull) {
		log.Printf("Target digit %s ignored: %v", ev.Key, ev.Err)
	}

	return ev
}

func (in *Input) silence() {
	if in.buzzer == nil {
		return
	}
	if err := in.buzzer.Buzz(false); err != nil {
		log.Printf("Failed to silence buzzer: %v", err)
	}
}

// Run ticks immediately and then once per period until ctx is cancelled.
func (in *Input) Run(ctx context.Context, clock func() time.Time) error {
	return runPeriodic(ctx, in.period, clock, func(now time.Time) { in.Tick(now) })
}
