// Package worldimpl provides the concrete worlds the command-line frontend
// can select: a gridworld with an obstacle and a goal, its partially
// observable polar-coordinate variant, and a T-maze requiring short-term
// memory of an early hint.
package worldimpl

import "math/rand"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// GridWorld is a rectangular grid with one obstacle cell and one goal cell.
// Actions are Up=0, Right=1, Down=2, Left=3. A move into the goal ends the
// episode with reward 10; a move into a wall or the obstacle is rejected (the
// agent stays put) for reward -10; any other move costs -1.
type GridWorld struct {
	Width, Height int
	Obstacle      Point
	Goal          Point

	initial    Point
	current    Point
	stochastic bool
}

// NewGridWorld returns a GridWorld of the given dimensions. When stochastic
// is true, each Reset relocates the episode's start to a uniformly random
// cell instead of reusing initial.
func NewGridWorld(width, height int, initial, obstacle, goal Point, stochastic bool) *GridWorld {
	return &GridWorld{
		Width: width, Height: height,
		Obstacle: obstacle, Goal: goal,
		initial:    initial,
		stochastic: stochastic,
	}
}

func (g *GridWorld) NumActions() int { return 4 }

// SetStochastic toggles whether Reset randomizes each episode's start cell,
// for the CLI's randominitial token (spec §6).
func (g *GridWorld) SetStochastic(stochastic bool) { g.stochastic = stochastic }

// Reset picks the start cell for the upcoming episode (a fresh random cell
// when stochastic, otherwise the fixed initial) before InitialState is read,
// so the observation InitialState reports always matches the cell current
// (and therefore the first Step) is positioned at.
func (g *GridWorld) Reset() {
	if g.stochastic {
		g.initial = Point{X: rand.Intn(g.Width), Y: rand.Intn(g.Height)}
	}
	g.current = g.initial
}

func (g *GridWorld) InitialState() []float64 {
	return g.encodeState(g.initial)
}

func (g *GridWorld) Step(action int) (finished bool, reward float64, state []float64) {
	pos := g.current

	switch action {
	case 0: // Up
		pos.Y++
	case 1: // Right
		pos.X++
	case 2: // Down
		pos.Y--
	case 3: // Left
		pos.X--
	}

	switch {
	case pos == g.Goal:
		g.current = pos
		finished = true
		reward = 10.0
	case pos.X < 0 || pos.Y < 0 || pos.X >= g.Width || pos.Y >= g.Height || pos == g.Obstacle:
		finished = false
		reward = -10.0
	default:
		g.current = pos
		finished = false
		reward = -1.0
	}

	state = g.encodeState(g.current)
	return
}

func (g *GridWorld) StepSupervised(action int, targetState []float64, reward float64) {
	g.current = Point{X: int(targetState[0]), Y: int(targetState[1])}
}

func (g *GridWorld) encodeState(p Point) []float64 {
	return []float64{float64(p.X), float64(p.Y)}
}
