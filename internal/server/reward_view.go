package server

import (
	"fmt"
	"html/template"
	"sync"
)

// RewardSample is the domain datum this dashboard is built from: one
// completed episode's index and cumulative reward, as handed to
// agent.ProgressFunc.
type RewardSample struct {
	Episode    int
	Cumulative float64
}

// rewardCurveView renders RewardSample as a running SVG polyline: the only
// view this dashboard builds today, built against the local ViewComponent
// interface so a second view (a live value-surface heatmap, say) could be
// added without touching this one.
type rewardCurveView struct {
	mu      sync.Mutex
	points  []RewardSample
	maxKept int

	updates chan []EleUpdate
}

// newRewardCurveView starts the goroutine that turns incoming samples into
// rendered element updates; done lets the caller tear it down early.
func newRewardCurveView(done <-chan struct{}, samples <-chan RewardSample) *rewardCurveView {
	v := &rewardCurveView{
		maxKept: 500,
		updates: make(chan []EleUpdate),
	}

	go func() {
		defer close(v.updates)
		for {
			select {
			case <-done:
				return
			case s, ok := <-samples:
				if !ok {
					return
				}
				v.push(s)
				select {
				case v.updates <- v.render():
				case <-done:
					return
				}
			}
		}
	}()

	return v
}

func (v *rewardCurveView) push(s RewardSample) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.points = append(v.points, s)
	if len(v.points) > v.maxKept {
		v.points = v.points[len(v.points)-v.maxKept:]
	}
}

// render turns the current window of samples into two element updates: the
// polyline's "points" attribute and the latest-episode caption.
func (v *rewardCurveView) render() []EleUpdate {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.points) == 0 {
		return nil
	}

	minReward, maxReward := v.points[0].Cumulative, v.points[0].Cumulative
	for _, p := range v.points {
		if p.Cumulative < minReward {
			minReward = p.Cumulative
		}
		if p.Cumulative > maxReward {
			maxReward = p.Cumulative
		}
	}
	spread := maxReward - minReward
	if spread == 0 {
		spread = 1
	}

	var sb []byte
	n := len(v.points)
	for i, p := range v.points {
		x := float64(i) / float64(maxInt(n-1, 1)) * 600
		y := 200 - (p.Cumulative-minReward)/spread*200
		sb = append(sb, []byte(fmt.Sprintf("%.1f,%.1f ", x, y))...)
	}

	return []EleUpdate{
		{
			EleId: "reward-curve",
			Ops: []Op{
				{Key: "points", Value: string(sb)},
			},
		},
		{
			EleId: "reward-latest",
			Ops: []Op{
				{Key: "textContent", Value: fmt.Sprintf("episode %d: %.2f", v.points[n-1].Episode, v.points[n-1].Cumulative)},
			},
		},
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

const rewardCurveTemplate = `
{{define "reward-curve"}}
<div>
  <svg width="620" height="220" viewBox="0 0 620 220">
    <polyline id="reward-curve" points="" fill="none" stroke="steelblue" stroke-width="2"/>
  </svg>
  <div id="reward-latest">waiting for episodes...</div>
</div>
{{end}}
`

func (v *rewardCurveView) Parse(parent *template.Template) (string, error) {
	t, err := parent.Parse(rewardCurveTemplate)
	if err != nil {
		return "", err
	}
	_ = t
	return "reward-curve", nil
}

func (v *rewardCurveView) Updates() <-chan []EleUpdate {
	return v.updates
}
