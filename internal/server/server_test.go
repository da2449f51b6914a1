package server

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"rlharness/episode"
)

func TestRewardCurveView(t *testing.T) {
	Convey("Given a reward curve view fed a few samples", t, func() {
		done := make(chan struct{})
		defer close(done)

		samples := make(chan RewardSample, 4)
		v := newRewardCurveView(done, samples)

		samples <- RewardSample{Episode: 0, Cumulative: -5}
		samples <- RewardSample{Episode: 1, Cumulative: 10}

		Convey("It emits an update per sample naming the reward curve element", func() {
			first := <-v.Updates()
			So(len(first), ShouldEqual, 2)
			So(first[0].EleId, ShouldEqual, "reward-curve")

			second := <-v.Updates()
			So(second[1].EleId, ShouldEqual, "reward-latest")
			So(second[1].Ops[0].Value, ShouldEqual, "episode 1: 10.00")
		})
	})
}

func TestServerProgressFunc(t *testing.T) {
	Convey("Given a Server built with a background context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		srv, err := New(ctx, "127.0.0.1:0", nil)
		So(err, ShouldBeNil)

		Convey("ProgressFunc publishes episodes without blocking the training loop", func() {
			progress := srv.ProgressFunc()

			ep := episode.New(1, 1, nil)
			ep.AddState([]float64{0})
			ep.AddValues([]float64{0})
			ep.AddAction(0)
			ep.AddReward(3.0)
			ep.AddState([]float64{1})
			ep.AddValues([]float64{0})

			done := make(chan struct{})
			go func() {
				progress(0, ep)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("ProgressFunc blocked")
			}
		})
	})
}
