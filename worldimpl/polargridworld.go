package worldimpl

// PolarGridWorld wraps a GridWorld but only lets the agent sense its own
// heading and the distance to the wall directly ahead, rather than its (x,y)
// coordinates — a partially observable variant used to test memory-bearing
// action selectors and devices. Actions are Forward=0, Backward=1,
// TurnLeft=2, TurnRight=3; heading is one of the base GridWorld's four
// directions (Up=0, Right=1, Down=2, Left=3).
type PolarGridWorld struct {
	*GridWorld
	direction int
}

// NewPolarGridWorld returns a PolarGridWorld over the given base grid,
// initially facing Right.
func NewPolarGridWorld(width, height int, initial, obstacle, goal Point, stochastic bool) *PolarGridWorld {
	return &PolarGridWorld{
		GridWorld: NewGridWorld(width, height, initial, obstacle, goal, stochastic),
		direction: 1, // Right
	}
}

func (p *PolarGridWorld) NumActions() int { return 4 }

func (p *PolarGridWorld) Reset() {
	p.GridWorld.Reset()
}

func (p *PolarGridWorld) InitialState() []float64 {
	return p.encodePolarState()
}

func (p *PolarGridWorld) Step(action int) (finished bool, reward float64, state []float64) {
	const turn = 100 // sentinel: action handled locally, not forwarded

	mapped := turn
	switch action {
	case 0: // Forward
		mapped = p.direction
	case 1: // Backward
		mapped = (p.direction + 2) % 4
	case 2: // TurnLeft
		p.direction = (p.direction + 3) % 4
		mapped = turn
	case 3: // TurnRight
		p.direction = (p.direction + 1) % 4
		mapped = turn
	}

	if mapped != turn {
		finished, reward, _ = p.GridWorld.Step(mapped)
	} else {
		finished = false
		reward = -1.0
	}

	state = p.encodePolarState()
	return
}

func (p *PolarGridWorld) StepSupervised(action int, targetState []float64, reward float64) {
	// PolarGridWorld's observation does not carry enough information to
	// reconstruct absolute position, so supervised replay is unsupported;
	// callers must use the base GridWorld for replay-driven training.
}

func (p *PolarGridWorld) encodePolarState() []float64 {
	var distance int
	switch p.direction {
	case 0: // Up (GridWorld moves Up by increasing Y)
		distance = p.Height - p.current.Y - 1
	case 1: // Right
		distance = p.Width - p.current.X - 1
	case 2: // Down
		distance = p.current.Y
	case 3: // Left
		distance = p.current.X
	}
	return []float64{float64(p.direction), float64(distance)}
}
