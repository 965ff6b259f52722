// Command agentloopd runs the whole runtime: one control thread, one
// inference thread, and one training thread, wired around the bundled
// racetrack value-estimation demonstration in internal/sample.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentloop/agentloop/clock"
	"github.com/agentloop/agentloop/control"
	"github.com/agentloop/agentloop/data"
	"github.com/agentloop/agentloop/grid_world"
	"github.com/agentloop/agentloop/inference"
	"github.com/agentloop/agentloop/interaction"
	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/internal/config"
	"github.com/agentloop/agentloop/internal/sample"
	"github.com/agentloop/agentloop/persistence"
	"github.com/agentloop/agentloop/threadcontrol"
	"github.com/agentloop/agentloop/trainer"
	"github.com/agentloop/agentloop/training"
)

// tickInterval is the inference loop's target real-time cadence, in virtual
// seconds, independent of any one buffer's or config's timing knobs.
const tickInterval = 0.02

// statsWindowSize and statsLogEveryTicks size the inference thread's rolling
// tick-duration window and how often its mean/stdev is logged.
const (
	statsWindowSize    = 512
	statsLogEveryTicks = 1000
)

func main() {
	var configPath string
	var fullTrack bool

	root := &cobra.Command{
		Use:   "agentloopd",
		Short: "Runs the concurrent agent/environment training and inference runtime.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, fullTrack)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (built-in defaults if omitted)")
	root.Flags().BoolVar(&fullTrack, "full-track", false, "use the full racetrack layout instead of the debug track")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, fullTrack bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.FromYaml(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log := agentlog.New(os.Stderr)
	log.Info().Str("run_id", cfg.RunID).Log("agentloopd starting")

	clk := clock.New()

	store, err := persistence.NewStateStore(cfg.Persistence.StatesDir)
	if err != nil {
		return err
	}
	if err := store.Register("clock", clk); err != nil {
		return err
	}

	track := grid_world.DebugTrack
	if fullTrack {
		track = grid_world.FullTrack
	}

	buf, err := transitionsBuffer(cfg)
	if err != nil {
		return err
	}

	sys, err := sample.Build(clk, track, buf, cfg.Sample.Epsilon, cfg.Sample.Eta, cfg.Sample.Gamma, 1)
	if err != nil {
		return err
	}
	if err := store.Register("values", sample.NewModelPersistable(sys.Model)); err != nil {
		return err
	}
	if err := store.Register("interaction", sys.Loop); err != nil {
		return err
	}
	if du, ok := data.User[sample.Transition](sys.DataUsersDict, sample.DataUserName); ok {
		if err := store.Register("data_users/"+sample.DataUserName, du); err != nil {
			return err
		}
	}

	controlThread := control.New(clk, store, log, control.Options{
		SaveStateInterval:    cfg.ControlThread.SaveStateInterval(),
		MaxUptime:            cfg.ControlThread.MaxUptime(),
		PauseTimeout:         cfg.ControlThread.TimeoutForAllThreadsPause(),
		MaxPauseAttempts:     cfg.ControlThread.MaxAttemptsToPauseAllThreads,
		HTTPAddr:             cfg.HTTP.Addr(),
		CommandQueueCapacity: cfg.HTTP.CommandQueueSize,
	})
	readOnlyController := controlThread.Controller().ReadOnly()

	adjustor := interaction.NewSleepIntervalAdjustor(clk, tickInterval, 0)
	infThread, err := inference.New(readOnlyController, sys.Loop, log,
		inference.WithIntervalAdjustor(adjustor),
		inference.WithTickStatistics(clk, statsWindowSize, statsLogEveryTicks),
	)
	if err != nil {
		return err
	}

	trainersDict := trainer.NewTrainersDict()
	trainersDict.Add("alpha_mc", sys.Trainer)
	trainThread, err := training.New(readOnlyController, trainersDict, sys.DataUsersDict, log)
	if err != nil {
		return err
	}

	controlThread.AttachStatusesMonitor(threadcontrol.NewStatusesMonitor(map[threadcontrol.ThreadType]*threadcontrol.ReadOnlyStatus{
		threadcontrol.ThreadInference: infThread.Status().ReadOnly(),
		threadcontrol.ThreadTraining:  trainThread.Status().ReadOnly(),
	}))

	retention, err := persistence.NewRetentionKeeper(store, cfg.Persistence.MaxKeep)
	if err != nil {
		return err
	}
	retentionCtx, cancelRetention := context.WithCancel(context.Background())
	defer cancelRetention()
	go retention.Run(retentionCtx)

	errs := make(chan error, 3)
	go func() { errs <- infThread.Run() }()
	go func() { errs <- trainThread.Run() }()
	go func() { errs <- controlThread.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	received := 0
	select {
	case <-sigCh:
		log.Info().Log("received shutdown signal")
		controlThread.Shutdown()
	case err := <-errs:
		received++
		if err != nil {
			log.Err().Err(err).Log("a thread exited with an error")
		}
		controlThread.Shutdown()
	}
	for ; received < 3; received++ {
		if err := <-errs; err != nil {
			log.Err().Err(err).Log("a thread exited with an error")
		}
	}

	log.Info().Log("agentloopd stopped")
	return nil
}

// transitionsBuffer builds the agent/trainer transition buffer from the
// config document's buffers section, looking up the entry named after
// sample.DataUserName; if none is configured, it falls back to a
// SequentialBuffer sized by cfg.Sample.BufferCapacity, matching the
// runtime's documented default.
func transitionsBuffer(cfg config.Config) (data.Buffer[sample.Transition], error) {
	for _, b := range cfg.Buffers {
		if b.Name != sample.DataUserName {
			continue
		}
		return data.NewBufferFromPolicy[sample.Transition](b.Capacity, b.Policy, b.ReplaceProbability, b.ExpectedSurvivalLength)
	}
	return data.NewSequentialBuffer[sample.Transition](cfg.Sample.BufferCapacity)
}
