package modelbased

import (
	"sync"
	"sync/atomic"
	"time"

	"rlharness/agent"
	"rlharness/atomicfloat"
	"rlharness/episode"
	"rlharness/model"
	"rlharness/selector"
	"rlharness/worldapi"
)

// rolloutThrottle is the short sleep values() takes before answering, so the
// rollout learner always gets a chance to run between two predictions
// instead of being starved by a tight actor loop.
const rolloutThrottle = 200 * time.Microsecond

// TEXPLOREModel is DynaModel's concurrent sibling: the real-world actor, the
// world-model learner and the rollout learner run as three independent
// goroutines instead of one sequential call chain, coordinated by a
// world-model lock, a value-model lock and an episode queue.
//
// The queue's "condition variable" is a buffered doorbell channel rather
// than sync.Cond: the accumulated episode slice is guarded by queueMu, and a
// non-blocking send on queueSignal wakes the world-model learner exactly the
// way a cond variable's Signal would, without the awkwardness of pairing
// sync.Cond with a select-based cancellation path.
type TEXPLOREModel struct {
	modelWorld   *ModelWorld
	valueModel   model.Model
	rolloutAgent *agent.Agent

	worldModelMu sync.Mutex
	valueModelMu sync.Mutex

	queueMu     sync.Mutex
	queue       []*episode.Episode
	queueSignal chan struct{}

	baseEpisode atomic.Value // *episode.Episode
	retiring    []*episode.Episode

	rolloutCount *atomicfloat.AtomicFloat64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewTEXPLOREModel wires the three workers and starts the two background
// goroutines (world-model learner, rollout learner); the actor is driven by
// the caller's own Values calls, so it needs no goroutine of its own.
func NewTEXPLOREModel(realWorld worldapi.World, worldModel, valueModel model.Model, sel selector.Selector, rolloutLength int, encoder episode.Encoder) *TEXPLOREModel {
	mw := NewModelWorld(realWorld, worldModel)

	t := &TEXPLOREModel{
		modelWorld:   mw,
		valueModel:   valueModel,
		rolloutAgent: agent.New(mw, valueModel, sel, encoder, rolloutLength, 0),
		queueSignal:  make(chan struct{}, 1),
		rolloutCount: atomicfloat.NewAtomicFloat64(0),
		done:         make(chan struct{}),
	}

	t.wg.Add(2)
	go t.worldModelLoop()
	go t.rolloutLoop()

	return t
}

// Values answers from the value model under the value-model lock, then
// atomically publishes a clone of ep as the seed the rollout learner plants
// its next rollout from; the superseded seed (if any) is handed to the
// rollout learner to retire under the same lock, preserving happens-before
// with its reads.
func (t *TEXPLOREModel) Values(ep *episode.Episode) []float64 {
	time.Sleep(rolloutThrottle)

	t.valueModelMu.Lock()
	values := t.valueModel.Values(ep)
	t.valueModelMu.Unlock()

	old, _ := t.baseEpisode.Swap(ep.Clone()).(*episode.Episode)
	if old != nil {
		t.valueModelMu.Lock()
		t.retiring = append(t.retiring, old)
		t.valueModelMu.Unlock()
	}

	return values
}

// ValuesForPlotting tells both background workers to exit before answering,
// so dense grid sampling for diagnostics isn't slowed by lock contention
// with rollouts that serve no further purpose once plotting starts.
func (t *TEXPLOREModel) ValuesForPlotting(ep *episode.Episode) []float64 {
	t.signalDone()
	return t.Values(ep)
}

// Learn queues real episodes for the world-model learner and wakes it; it
// never blocks the caller on the learner's pace.
func (t *TEXPLOREModel) Learn(episodes []*episode.Episode) {
	t.queueMu.Lock()
	for _, e := range episodes {
		t.queue = append(t.queue, e.Clone())
	}
	t.queueMu.Unlock()

	select {
	case t.queueSignal <- struct{}{}:
	default:
	}
}

// RolloutsPerformed reports the number of rollout episodes the background
// rollout learner has completed so far, safe to call from any goroutine
// (the actor, a diagnostics handler, ...) without contending with the
// rollout loop's own locks.
func (t *TEXPLOREModel) RolloutsPerformed() float64 {
	return t.rolloutCount.AtomicRead()
}

// NextEpisode resets the value model's per-episode state.
func (t *TEXPLOREModel) NextEpisode() {
	t.valueModel.NextEpisode()
}

// SwapModels is a no-op: the background workers swap both models whenever
// their own training pass completes.
func (t *TEXPLOREModel) SwapModels() {}

// Close signals both workers to stop at their next iteration boundary and
// waits for them to exit.
func (t *TEXPLOREModel) Close() {
	t.signalDone()
	t.wg.Wait()
}

func (t *TEXPLOREModel) signalDone() {
	t.closeOnce.Do(func() { close(t.done) })
}

func (t *TEXPLOREModel) interrupted() bool {
	select {
	case <-t.done:
		return true
	default:
		return agent.Interrupted()
	}
}

// worldModelLoop waits for the actor to push real episodes, drains the
// queue, trains the world model unlocked (Learn writes into the model's own
// learn-buffer, never the published one), then swaps it in under the
// world-model lock.
func (t *TEXPLOREModel) worldModelLoop() {
	defer t.wg.Done()

	for {
		select {
		case <-t.done:
			return
		case <-t.queueSignal:
		}
		if t.interrupted() {
			return
		}

		t.queueMu.Lock()
		batch := t.queue
		t.queue = nil
		t.queueMu.Unlock()

		if len(batch) == 0 {
			continue
		}

		t.modelWorld.Learn(batch)

		t.worldModelMu.Lock()
		t.modelWorld.SwapModels()
		t.worldModelMu.Unlock()
	}
}

// rolloutLoop repeatedly runs one rollout episode against the ModelWorld,
// seeded at the latest position the actor published, training the value
// model from it; it then swaps the value model in and retires any seed
// episodes superseded since the last swap.
func (t *TEXPLOREModel) rolloutLoop() {
	defer t.wg.Done()

	for !t.interrupted() {
		seed, _ := t.baseEpisode.Load().(*episode.Episode)
		if seed == nil {
			// The actor hasn't answered a single Values call yet; nothing to
			// seed a rollout from.
			time.Sleep(rolloutThrottle)
			continue
		}

		t.worldModelMu.Lock()
		ep := t.rolloutAgent.RunEpisode(seed)
		t.valueModel.Learn([]*episode.Episode{ep})
		t.worldModelMu.Unlock()

		t.rolloutCount.AtomicIncr()

		t.valueModelMu.Lock()
		if s, ok := t.valueModel.(model.Swappable); ok {
			s.SwapModels()
		}
		t.retiring = nil
		t.valueModelMu.Unlock()
	}
}
