package modelbased

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
	"rlharness/learning"
	"rlharness/model"
	"rlharness/selector"
	"rlharness/worldimpl"
)

// parityModel is a stub value model whose SwapModels increments a counter
// and whose Values reports the counter's parity, uniformly across every
// slot: a torn read would show up as a slice mixing 0s and 1s.
type parityModel struct {
	counter int
}

func (p *parityModel) Values(ep *episode.Episode) []float64 {
	v := float64(p.counter % 2)
	out := make([]float64, ep.ValueSize())
	for i := range out {
		out[i] = v
	}
	return out
}

func (p *parityModel) Learn(episodes []*episode.Episode) {}
func (p *parityModel) NextEpisode()                      {}
func (p *parityModel) SwapModels()                       { p.counter++ }

func TestTEXPLOREModelNeverTornRead(t *testing.T) {
	Convey("Given a TEXPLOREModel over a gridworld with a parity-counting stub value model", t, func() {
		grid := worldimpl.NewGridWorld(4, 4, worldimpl.Point{X: 0, Y: 0}, worldimpl.Point{X: 2, Y: 2}, worldimpl.Point{X: 3, Y: 3}, false)
		worldModel := model.NewTable()
		valueModel := &parityModel{}
		sel := selector.NewEGreedy(learning.NewQLearning(0.9, 0.0, 0.3), 0.2)

		tex := NewTEXPLOREModel(grid, worldModel, valueModel, sel, 5, nil)
		defer tex.Close()

		Convey("10000 concurrent predictions never see a torn parity read, and the counter advances", func() {
			ep := episode.New(grid.NumActions(), grid.NumActions(), nil)
			ep.AddState(grid.InitialState())
			ep.AddValues(make([]float64, grid.NumActions()))

			sawOne := false
			for i := 0; i < 10000; i++ {
				values := tex.Values(ep)

				allSame := true
				for _, v := range values {
					So(v == 0 || v == 1, ShouldBeTrue)
					if v != values[0] {
						allSame = false
					}
					if v == 1 {
						sawOne = true
					}
				}
				So(allSame, ShouldBeTrue)
			}

			So(sawOne, ShouldBeTrue)
		})
	})
}
