package model

import (
	"fmt"
	"strings"

	"rlharness/episode"
)

// Table is a dictionary model: it stores action values keyed by the exact
// state vector, ignoring any notion of time or neighboring states. Learn
// writes into a separate learning table so concurrent readers (a TEXPLORE
// actor goroutine predicting while a learner goroutine trains) never see a
// half-updated table; SwapModels publishes the learning table for reads.
type Table struct {
	table      map[string][]float64
	learnTable map[string][]float64
}

// NewTable returns an empty Table model.
func NewTable() *Table {
	return &Table{table: make(map[string][]float64)}
}

func stateKey(state []float64) string {
	var b strings.Builder
	for i, v := range state {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", v)
	}
	return b.String()
}

func (t *Table) Values(ep *episode.Episode) []float64 {
	state := ep.State(ep.Length() - 1)
	key := stateKey(state)

	if values, ok := t.table[key]; ok {
		return append([]float64(nil), values...)
	}
	return make([]float64, ep.ValueSize())
}

// Learn copies the published table into a fresh learning table, then for
// every transition in every episode either writes the values of a
// never-seen state wholesale, or updates just the action actually taken
// (other actions' stale predictions survive unaffected).
func (t *Table) Learn(episodes []*episode.Episode) {
	learnTable := make(map[string][]float64, len(t.table))
	for k, v := range t.table {
		learnTable[k] = append([]float64(nil), v...)
	}

	for _, ep := range episodes {
		for timestep := 0; timestep < ep.Length()-1; timestep++ {
			action := ep.Action(timestep)
			state := ep.State(timestep)
			values := ep.Values(timestep)
			key := stateKey(state)

			if existing, ok := learnTable[key]; ok {
				existing[action] = values[action]
			} else {
				learnTable[key] = append([]float64(nil), values...)
			}
		}
	}

	t.learnTable = learnTable
}

// SwapModels publishes the table built by the most recent Learn call.
func (t *Table) SwapModels() {
	if t.learnTable != nil {
		t.table = t.learnTable
		t.learnTable = nil
	}
}

func (t *Table) NextEpisode() {}
