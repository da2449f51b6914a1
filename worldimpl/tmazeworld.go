package worldimpl

import "math/rand"

// TMazeWorld is a corridor of the given length leading to a T junction. A
// hint revealing which arm of the junction (Up or Down) pays off is visible
// only for the first infoTime steps of each episode; the agent must retain
// it until the junction, which tests short-term-memory-bearing devices and
// selectors. Actions are Up=0, Down=1, Left=2, Right=3.
type TMazeWorld struct {
	length   int
	infoTime int

	timesteps int
	pos       int
	target    int // 0 = Up, 1 = Down
}

// NewTMazeWorld returns a TMazeWorld with the given corridor length
// (junction included) and hint visibility window.
func NewTMazeWorld(length, infoTime int) *TMazeWorld {
	return &TMazeWorld{length: length, infoTime: infoTime}
}

func (t *TMazeWorld) NumActions() int { return 4 }

func (t *TMazeWorld) Reset() {
	t.timesteps = 0
	t.pos = 0
	t.target = rand.Intn(2)
}

func (t *TMazeWorld) InitialState() []float64 {
	return t.encodeState(0)
}

func (t *TMazeWorld) Step(action int) (finished bool, reward float64, state []float64) {
	posX := t.pos
	posY := 0

	t.timesteps++

	switch action {
	case 0: // Up
		posY++
	case 1: // Down
		posY--
	case 2: // Left
		posX--
	case 3: // Right
		posX++
	}

	switch {
	case posX == t.length-1 && posY == -1:
		if t.target == 1 {
			reward = 10.0
		} else {
			reward = 0.0
		}
		finished = true
		t.pos = posX
	case posX == t.length-1 && posY == 1:
		if t.target == 0 {
			reward = 10.0
		} else {
			reward = 0.0
		}
		finished = true
		t.pos = posX
	case posY == -1 || posY == 1 || posX < 0 || posX >= t.length:
		reward = -2.0
		finished = false
	default:
		reward = 0.0
		finished = false
		t.pos = posX
	}

	state = t.encodeState(t.pos)
	return
}

func (t *TMazeWorld) StepSupervised(action int, targetState []float64, reward float64) {
	t.pos = int(targetState[1])
}

func (t *TMazeWorld) encodeState(pos int) []float64 {
	hint := 0.0
	if t.timesteps <= t.infoTime {
		// target+1 matches the original encoding where 0 meant "no hint yet"
		// and the hint itself was 1-indexed (Up=1, Down=2).
		hint = float64(t.target + 1)
	}
	return []float64{hint, float64(pos)}
}
