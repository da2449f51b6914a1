package worldapi

// Device is a component owned by a DeviceWorld that adds actions whose side
// effects only mutate the wrapper's own register, carrying information
// across time without touching the base world (spec §4.3 rationale: lets a
// memoryless model solve partially-observable problems by learning when to
// "set flags").
type Device interface {
	// NumActions is the number of extra actions this device adds.
	NumActions() int
	// Reset is called when the wrapped world resets.
	Reset(baseInitialState []float64)
	// Perform executes device action index (0-based, already offset by the
	// wrapper) against the last unprocessed base observation, and returns
	// the reward it produces.
	Perform(action int, lastState []float64) float64
	// Process appends this device's observations to the end of state.
	Process(state []float64) []float64
}

// DeviceWorld wraps a base World and extends its action set: actions below
// the base world's NumActions are forwarded, actions at or above it are
// handled by the device without advancing the base world.
type DeviceWorld struct {
	base        World
	device      Device
	firstAction int
	lastState   []float64 // unprocessed state cached for device actions
}

// NewDeviceWorld wraps world with device, extending the action set by
// device.NumActions().
func NewDeviceWorld(world World, device Device) *DeviceWorld {
	return &DeviceWorld{
		base:        world,
		device:      device,
		firstAction: world.NumActions(),
	}
}

func (w *DeviceWorld) NumActions() int {
	return w.firstAction + w.device.NumActions()
}

func (w *DeviceWorld) Reset() {
	w.base.Reset()
}

func (w *DeviceWorld) InitialState() []float64 {
	state := w.base.InitialState()
	w.lastState = append([]float64(nil), state...)
	w.device.Reset(w.lastState)
	return w.device.Process(append([]float64(nil), state...))
}

func (w *DeviceWorld) Step(action int) (finished bool, reward float64, state []float64) {
	if action < w.firstAction {
		finished, reward, state = w.base.Step(action)
		w.lastState = append([]float64(nil), state...)
	} else {
		reward = w.device.Perform(action-w.firstAction, w.lastState)
		state = append([]float64(nil), w.lastState...)
		finished = false
	}

	state = w.device.Process(state)
	return
}

func (w *DeviceWorld) StepSupervised(action int, targetState []float64, reward float64) {
	if action < w.firstAction {
		w.base.StepSupervised(action, targetState, reward)
		w.lastState = append([]float64(nil), targetState...)
	}
}

// Integrator is a device that holds a clamped counter in [min,max],
// initially 0. Action 0 adds 1, action 1 subtracts 1; the counter clamps at
// the bounds. A useful nudge costs reward -1, a nudge the bound prevented
// costs -2. Process appends the counter to the state.
type Integrator struct {
	Min, Max float64
	value    float64
}

// NewIntegrator returns an Integrator device clamped to [min, max].
func NewIntegrator(min, max float64) *Integrator {
	return &Integrator{Min: min, Max: max}
}

func (d *Integrator) NumActions() int { return 2 }

func (d *Integrator) Reset([]float64) { d.value = 0 }

func (d *Integrator) Perform(action int, _ []float64) float64 {
	old := d.value
	switch action {
	case 0:
		d.value = minFloat(d.Max, d.value+1.0)
	case 1:
		d.value = maxFloat(d.Min, d.value-1.0)
	}
	if old == d.value {
		return -2.0
	}
	return -1.0
}

func (d *Integrator) Process(state []float64) []float64 {
	return append(state, d.value)
}

// Freeze is a device that holds a frozen snapshot of the base state,
// initially the base's initial state. The freeze action copies the cached
// last (unprocessed) base observation into the snapshot, for reward -1.
// Process appends the snapshot to the current state.
type Freeze struct {
	frozen []float64
}

func NewFreeze() *Freeze {
	return &Freeze{}
}

func (d *Freeze) NumActions() int { return 1 }

func (d *Freeze) Reset(baseInitialState []float64) {
	d.frozen = append([]float64(nil), baseInitialState...)
}

func (d *Freeze) Perform(_ int, lastState []float64) float64 {
	d.frozen = append([]float64(nil), lastState...)
	return -1.0
}

func (d *Freeze) Process(state []float64) []float64 {
	return append(state, d.frozen...)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
