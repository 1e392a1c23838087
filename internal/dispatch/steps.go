package dispatch

import (
	"sync"

	"github.com/rs/zerolog"
)

// Step names one completed transition of the composite send flow.
type Step string

const (
	StepDeposited    Step = "deposited"
	StepFeeCollected Step = "fee_collected"
	StepWithdrawn    Step = "withdrawn"
)

// stepLedger records completed composite-flow transitions in order. Each
// completion is logged immediately so the trail survives a later failure and
// a caller can resume from the last completed step.
type stepLedger struct {
	mu    sync.Mutex
	log   zerolog.Logger
	steps []Step
}

func newStepLedger(log zerolog.Logger) *stepLedger {
	return &stepLedger{log: log}
}

// Complete marks a transition done.
func (l *stepLedger) Complete(step Step) {
	l.mu.Lock()
	l.steps = append(l.steps, step)
	l.mu.Unlock()
	l.log.Info().Str("step", string(step)).Msg("send step complete")
}

// Names returns the completed steps as strings for the result envelope.
func (l *stepLedger) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.steps))
	for i, s := range l.steps {
		out[i] = string(s)
	}
	return out
}
