// Command rlharness runs the agent loop against a world/model/learner/
// selector assembled from positional CLI tokens (spec §6), writing
// rewards.dat and per-action model_<action>.dat plot files, and optionally
// serving a live reward-curve dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"rlharness/agent"
	"rlharness/config"
	"rlharness/episode"
	"rlharness/internal/server"
)

var (
	configPath *string
	nworkers   *int
	host       *string
	port       *string
	outDir     *string
	dashboard  *bool
)

func init() {
	configPath = flag.String("config", "", "path to a YAML hyperparameter file (optional)")
	nworkers = flag.Int("nworkers", runtime.NumCPU(), "GOMAXPROCS hint for matrix-backed models")
	host = flag.String("host", "", "dashboard host")
	port = flag.String("port", "8080", "dashboard port")
	outDir = flag.String("out", ".", "directory to write rewards.dat and model_<action>.dat into")
	dashboard = flag.Bool("dashboard", false, "serve a live reward-curve dashboard while training")
}

func main() {
	flag.Parse()
	runtime.GOMAXPROCS(*nworkers)

	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(tokens []string) error {
	agent.InstallInterruptHandler()

	hp := config.DefaultHyperParameters()
	if *configPath != "" {
		cfg, err := config.FromYaml(*configPath)
		if err != nil {
			return fmt.Errorf("rlharness: %w", err)
		}
		hp.ApplyTrainingConfig(cfg)
	}

	pipeline := config.NewTokenPipeline()
	pipeline.Build.HP = hp
	if err := pipeline.Process(tokens); err != nil {
		return fmt.Errorf("rlharness: %w", err)
	}

	var encoder episode.Encoder
	world, valueModel, sel, err := pipeline.Build.Finish(encoder)
	if err != nil {
		return fmt.Errorf("rlharness: %w", err)
	}

	a := agent.New(world, valueModel, sel, encoder, pipeline.Build.HP.MaxSteps, pipeline.Build.HP.BatchSize)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("rlharness: %w", err)
	}

	rewardsFile, err := os.Create(filepath.Join(*outDir, "rewards.dat"))
	if err != nil {
		return fmt.Errorf("rlharness: %w", err)
	}
	defer rewardsFile.Close()

	var dash *server.Server
	if *dashboard {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dash, err = server.New(ctx, *host+":"+*port, nil)
		if err != nil {
			return fmt.Errorf("rlharness: %w", err)
		}
		go func() {
			if err := dash.Serve(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()
	}

	a.Progress = func(episodeIndex int, ep *episode.Episode) {
		fmt.Fprintf(rewardsFile, "%d\t%g\n", episodeIndex, ep.CumulativeReward())
		if dash != nil {
			dash.Publish(server.RewardSample{Episode: episodeIndex, Cumulative: ep.CumulativeReward()})
		}
	}

	a.Train(pipeline.Build.HP.NumEpisodes)

	if err := writePlotFiles(*outDir, valueModel, world.NumActions(), a.Min, a.Max, encoder); err != nil {
		return fmt.Errorf("rlharness: %w", err)
	}

	return nil
}
