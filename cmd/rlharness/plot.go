package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"rlharness/episode"
	"rlharness/model"
)

// plotResolution is the number of samples taken along each state dimension
// when writing a model's value surface, a compromise between plot fidelity
// and the cost of a model-table lookup (or network forward pass) per cell.
const plotResolution = 20

// writePlotFiles samples m's predicted value for action a over the grid of
// observed states (agent.Min/Max, from min/max state tracking during
// training) and writes it to model_<a>.dat: each line is "x [y] value",
// with blank lines separating y-rows. Two columns for a 1-D state (no y),
// three for 2-D.
func writePlotFiles(dir string, m model.Model, numActions int, min, max []float64, encoder episode.Encoder) error {
	for a := 0; a < numActions; a++ {
		path := filepath.Join(dir, fmt.Sprintf("model_%d.dat", a))
		if err := writePlotFile(path, m, a, numActions, min, max, encoder); err != nil {
			return err
		}
	}
	return nil
}

func writePlotFile(path string, m model.Model, action, numActions int, min, max []float64, encoder episode.Encoder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	switch len(min) {
	case 1:
		for i := 0; i <= plotResolution; i++ {
			x := sample1D(min[0], max[0], i)
			value := valueAt(m, []float64{x}, action, numActions, encoder)
			fmt.Fprintf(w, "%g %g\n", x, value)
		}
	case 2:
		for i := 0; i <= plotResolution; i++ {
			x := sample1D(min[0], max[0], i)
			for j := 0; j <= plotResolution; j++ {
				y := sample1D(min[1], max[1], j)
				value := valueAt(m, []float64{x, y}, action, numActions, encoder)
				fmt.Fprintf(w, "%g %g %g\n", x, y, value)
			}
			fmt.Fprintln(w)
		}
	default:
		// Higher-dimensional states have no 2-D plot file in the original
		// engine either; nothing to write.
	}

	return nil
}

func sample1D(min, max float64, i int) float64 {
	if plotResolution == 0 {
		return min
	}
	return min + (max-min)*float64(i)/float64(plotResolution)
}

// valueAt asks m for its prediction at a raw (unencoded) state, via a
// throwaway single-state episode: Model.Values only ever reads an episode's
// state column, never its value or action columns, so this is a faithful
// way to sample off the training path.
func valueAt(m model.Model, state []float64, action, numActions int, encoder episode.Encoder) float64 {
	ep := episode.New(numActions, numActions, encoder)
	ep.AddState(state)
	values := model.PlotValues(m, ep)
	if action < len(values) {
		return values[action]
	}
	return 0
}
