package brewday

import (
	"sync"
	"time"

	"brewdayService/internal/recipe"
)

// Step is one mash rest of a plan
type Step struct {
	Index       int           `json:"index"`
	Temperature float64       `json:"temperature"`
	Duration    time.Duration `json:"duration"`
}

// StepPlan walks through a recipe's mash rests in order
type StepPlan struct {
	mu sync.RWMutex

	steps   []Step
	current int
}

// NewStepPlan creates a plan positioned at the first rest of r
func NewStepPlan(r *recipe.Recipe) *StepPlan {
	steps := make([]Step, 0, len(r.MashSteps))
	for i := range r.MashSteps {
		seconds, _ := r.MashStepSeconds(i)
		steps = append(steps, Step{
			Index:       i,
			Temperature: r.MashSteps[i].Temperature,
			Duration:    time.Duration(seconds) * time.Second,
		})
	}
	return &StepPlan{steps: steps}
}

// Total returns the number of rests
func (p *StepPlan) Total() int {
	return len(p.steps)
}

// CurrentIndex returns the index of the current rest (0-based)
func (p *StepPlan) CurrentIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Current returns the current rest, false once the plan is past the end
func (p *StepPlan) Current() (Step, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.at(p.current)
}

// At returns rest i
func (p *StepPlan) At(i int) (Step, bool) {
	return p.at(i)
}

// Next advances to the following rest. It returns false, leaving the plan
// on the last rest, when there is none.
func (p *StepPlan) Next() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current+1 >= len(p.steps) {
		return false
	}
	p.current++
	return true
}

// SetCurrent moves to rest i, clamped to the plan
func (p *StepPlan) SetCurrent(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	if i < 0 {
		i = 0
	}
	p.current = i
}

// Reset moves back to the first rest
func (p *StepPlan) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = 0
}

// IsLast returns true on the final rest
func (p *StepPlan) IsLast() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current == len(p.steps)-1
}

// Remaining returns the combined length of the current and later rests
func (p *StepPlan) Remaining() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var total time.Duration
	for _, step := range p.steps[min(p.current, len(p.steps)):] {
		total += step.Duration
	}
	return total
}

// Steps returns a copy of every rest
func (p *StepPlan) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

func (p *StepPlan) at(i int) (Step, bool) {
	if i < 0 || i >= len(p.steps) {
		return Step{}, false
	}
	return p.steps[i], true
}
