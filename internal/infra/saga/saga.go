package saga

import (
	"fmt"

	"go.uber.org/zap"
)

// Step is one forward action with its compensating action. Compensate may
// be nil for steps with nothing to undo.
type Step struct {
	Name       string
	Run        func() error
	Compensate func() error
}

// Saga executes steps in order; when one fails, the compensations of every
// completed step run in reverse order. Compensation failures are logged
// and do not mask the original error.
type Saga struct {
	log   *zap.Logger
	steps []Step
}

func New(log *zap.Logger) *Saga {
	return &Saga{log: log}
}

func (s *Saga) AddStep(name string, run func() error, compensate func() error) {
	s.steps = append(s.steps, Step{Name: name, Run: run, Compensate: compensate})
}

func (s *Saga) Execute() error {
	for i, step := range s.steps {
		if err := step.Run(); err != nil {
			s.rollback(i)
			return fmt.Errorf("saga step %q: %w", step.Name, err)
		}
	}
	return nil
}

func (s *Saga) rollback(failedIdx int) {
	for i := failedIdx - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(); err != nil {
			s.log.Error("saga compensation failed",
				zap.String("step", step.Name),
				zap.Error(err))
		}
	}
}
