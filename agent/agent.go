// Package agent implements the interaction loop that drives a World through
// a Model and an action Selector, episode after episode, batching finished
// episodes into training calls.
package agent

import (
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"rlharness/episode"
	"rlharness/model"
	"rlharness/selector"
	"rlharness/worldapi"
)

var (
	interrupted   int32
	installOnce   sync.Once
	interruptChan chan os.Signal
)

// InstallInterruptHandler wires SIGINT/SIGTERM to the process-wide interrupt
// flag that every Agent checks at step granularity. Safe to call more than
// once; only the first call installs the handler.
func InstallInterruptHandler() {
	installOnce.Do(func() {
		interruptChan = make(chan os.Signal, 1)
		signal.Notify(interruptChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-interruptChan
			atomic.StoreInt32(&interrupted, 1)
		}()
	})
}

// Interrupted reports whether a shutdown signal has been observed.
func Interrupted() bool {
	return atomic.LoadInt32(&interrupted) != 0
}

// ResetInterrupt clears the interrupt flag; used by tests that reuse the
// process-wide flag across cases.
func ResetInterrupt() {
	atomic.StoreInt32(&interrupted, 0)
}

// ProgressFunc is called after every completed episode, so a caller (the CLI
// frontend, a dashboard) can log progress or write plot data without the
// Agent depending on either concern.
type ProgressFunc func(episodeIndex int, ep *episode.Episode)

// Agent drives World through Model and Selector, accumulating episodes into
// batches and training Model once a batch fills.
type Agent struct {
	World    worldapi.World
	Model    model.Model
	Selector selector.Selector
	Encoder  episode.Encoder

	MaxSteps  int
	BatchSize int
	Progress  ProgressFunc

	Min, Max []float64

	batch []*episode.Episode
}

// New returns an Agent ready to run episodes.
func New(world worldapi.World, m model.Model, sel selector.Selector, encoder episode.Encoder, maxSteps, batchSize int) *Agent {
	return &Agent{
		World: world, Model: m, Selector: sel, Encoder: encoder,
		MaxSteps: maxSteps, BatchSize: batchSize,
	}
}

func (a *Agent) updateMinMax(state []float64) {
	if a.Min == nil {
		a.Min = append([]float64(nil), state...)
		a.Max = append([]float64(nil), state...)
		return
	}
	for i, v := range state {
		if v < a.Min[i] {
			a.Min[i] = v
		}
		if v > a.Max[i] {
			a.Max[i] = v
		}
	}
}

// RunEpisode plays one episode to termination or MaxSteps, whichever comes
// first. When startEpisode is non-nil, its recorded (action, state, reward)
// sequence is replayed via StepSupervised before the main loop begins —
// used by DynaModel/TEXPLOREModel to seed a rollout at the real agent's
// current position.
func (a *Agent) RunEpisode(startEpisode *episode.Episode) *episode.Episode {
	a.World.Reset()
	state := a.World.InitialState()

	valueSize := a.Selector.ValueSize(a.World.NumActions())
	ep := episode.New(valueSize, a.World.NumActions(), a.Encoder)
	ep.AddState(state)
	a.updateMinMax(state)

	a.Model.NextEpisode()
	ep.AddValues(a.Model.Values(ep))

	if startEpisode != nil {
		for t := 0; t < startEpisode.Length()-1; t++ {
			action := startEpisode.Action(t)
			reward := startEpisode.Reward(t)
			target := startEpisode.State(t + 1)

			a.World.StepSupervised(action, target, reward)

			ep.AddAction(action)
			ep.AddReward(reward)
			ep.AddState(target)
			a.updateMinMax(target)
			ep.AddValues(a.Model.Values(ep))
		}
	}

	finished := false
	t := 0
	for t < a.MaxSteps && !finished && !Interrupted() {
		probabilities := a.Selector.Probabilities(ep)
		action := sampleAction(probabilities)

		var reward float64
		var nextState []float64
		finished, reward, nextState = a.World.Step(action)
		a.updateMinMax(nextState)

		ep.AddAction(action)
		ep.AddReward(reward)
		ep.AddState(nextState)
		ep.AddValues(a.Model.Values(ep))

		t++
	}

	// Back up terminal values one more time so the final state's value
	// tuple reflects the last transition's TD update.
	a.Selector.Probabilities(ep)

	ep.SetAborted(!finished)
	return ep
}

// Train runs numEpisodes, calling Progress after each and training Model
// once BatchSize episodes have accumulated; a model.Swappable Model then has
// its trained buffer published. Stops early on interrupt.
func (a *Agent) Train(numEpisodes int) {
	for i := 0; i < numEpisodes && !Interrupted(); i++ {
		ep := a.RunEpisode(nil)

		if a.Progress != nil {
			a.Progress(i, ep)
		}

		a.batch = append(a.batch, ep)
		if len(a.batch) >= a.BatchSize {
			a.Model.Learn(a.batch)
			if s, ok := a.Model.(model.Swappable); ok {
				s.SwapModels()
			}
			a.batch = nil
		}
	}
}

func sampleAction(probabilities []float64) int {
	draw := rand.Float64()
	cumulative := 0.0
	for i, p := range probabilities {
		cumulative += p
		if draw < cumulative {
			return i
		}
	}
	// Floating-point rounding can leave the cumulative sum just short of
	// draw; fall through to the last action rather than panic.
	return len(probabilities) - 1
}
