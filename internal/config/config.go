// Package config loads the runtime's YAML configuration document with Viper,
// generalizing tabular/reinforcement.FromYaml from one algorithm's
// hyperparameters to the whole runtime: thread timeouts, the HTTP bind
// address, buffer sizing and policy, checkpoint retention, and the sample
// trainer's hyperparameters.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/agentloop/agentloop/internal/apperr"
)

// Buffer describes one data buffer's capacity and overflow policy.
type Buffer struct {
	Name                    string  `yaml:"name"`
	Capacity                int     `yaml:"capacity"`
	Policy                  string  `yaml:"policy"` // "sequential" or "random_replacement"
	ReplaceProbability      *float64 `yaml:"replace_probability,omitempty"`
	ExpectedSurvivalLength  *float64 `yaml:"expected_survival_length,omitempty"`
}

// HTTP describes the control-plane bind address and command queue capacity.
type HTTP struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	CommandQueueSize int    `yaml:"command_queue_size"`
}

// ControlThread describes control-thread timing parameters.
type ControlThread struct {
	SaveStateIntervalSeconds        float64 `yaml:"save_state_interval_seconds"`
	MaxUptimeSeconds                float64 `yaml:"max_uptime_seconds"`
	TimeoutForAllThreadsPauseSeconds float64 `yaml:"timeout_for_all_threads_pause_seconds"`
	MaxAttemptsToPauseAllThreads    int     `yaml:"max_attempts_to_pause_all_threads"`
}

// Persistence describes state-store retention.
type Persistence struct {
	StatesDir string `yaml:"states_dir"`
	MaxKeep   int    `yaml:"max_keep"`
}

// Sample describes the bundled gridworld demonstration's hyperparameters,
// loaded the same way tabular/reinforcement.TrainingConfig was.
type Sample struct {
	Epsilon        float64 `yaml:"epsilon"`
	Eta            float64 `yaml:"eta"`
	Gamma          float64 `yaml:"gamma"`
	BufferCapacity int     `yaml:"buffer_capacity"`
}

// Config is the root document unmarshalled from YAML via Viper.
type Config struct {
	RunID         string        `yaml:"-"`
	ControlThread ControlThread `yaml:"control_thread"`
	HTTP          HTTP          `yaml:"http"`
	Persistence   Persistence   `yaml:"persistence"`
	Buffers       []Buffer      `yaml:"buffers"`
	Sample        Sample        `yaml:"sample"`
}

// Default returns the configuration used when no file is supplied, matching
// spec.md's documented defaults (infinite save interval/uptime, localhost:8391,
// queue size 1).
func Default() Config {
	return Config{
		RunID: uuid.NewString(),
		ControlThread: ControlThread{
			SaveStateIntervalSeconds:          0, // 0 means "disabled" (infinite interval)
			MaxUptimeSeconds:                  0, // 0 means "unbounded"
			TimeoutForAllThreadsPauseSeconds:  60,
			MaxAttemptsToPauseAllThreads:      3,
		},
		HTTP: HTTP{
			Host:             "localhost",
			Port:             8391,
			CommandQueueSize: 1,
		},
		Persistence: Persistence{
			StatesDir: "./states",
			MaxKeep:   5,
		},
		Sample: Sample{
			Epsilon:        0.1,
			Eta:            0.1,
			Gamma:          1.0,
			BufferCapacity: 4096,
		},
	}
}

// FromYaml loads a Config from the given YAML file path, following the
// pattern of tabular/reinforcement.FromYaml: Viper reads the raw document,
// then it is re-marshalled through gopkg.in/yaml.v3 into the typed struct so
// that Viper's case-folding of map keys never leaks into field names.
func FromYaml(path string) (Config, error) {
	cfg := Default()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return cfg, apperr.Configuration("reading config file %q: %v", path, err)
	}

	raw, err := yaml.Marshal(vp.AllSettings())
	if err != nil {
		return cfg, apperr.Configuration("re-marshalling config %q: %v", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, apperr.Configuration("unmarshalling config %q: %v", path, err)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	return cfg, Validate(cfg)
}

// Validate rejects configuration-error conditions named in spec.md §7:
// negative buffer sizes, contradictory replacement parameters, negative
// intervals.
func Validate(cfg Config) error {
	ct := cfg.ControlThread
	if ct.SaveStateIntervalSeconds < 0 || ct.MaxUptimeSeconds < 0 || ct.TimeoutForAllThreadsPauseSeconds < 0 {
		return apperr.Configuration("control_thread intervals must be >= 0, got save_state_interval_seconds=%v max_uptime_seconds=%v timeout_for_all_threads_pause_seconds=%v",
			ct.SaveStateIntervalSeconds, ct.MaxUptimeSeconds, ct.TimeoutForAllThreadsPauseSeconds)
	}
	if cfg.ControlThread.MaxAttemptsToPauseAllThreads <= 0 {
		return apperr.Configuration("max_attempts_to_pause_all_threads must be > 0, got %d", cfg.ControlThread.MaxAttemptsToPauseAllThreads)
	}
	if cfg.HTTP.CommandQueueSize <= 0 {
		return apperr.Configuration("http.command_queue_size must be > 0, got %d", cfg.HTTP.CommandQueueSize)
	}
	if cfg.Persistence.MaxKeep < 0 {
		return apperr.Configuration("persistence.max_keep must be >= 0, got %d", cfg.Persistence.MaxKeep)
	}
	for _, b := range cfg.Buffers {
		if b.Capacity < 0 {
			return apperr.Configuration("buffer %q: capacity must be >= 0, got %d", b.Name, b.Capacity)
		}
		if b.ReplaceProbability != nil && b.ExpectedSurvivalLength != nil {
			return apperr.Configuration("buffer %q: replace_probability and expected_survival_length are mutually exclusive", b.Name)
		}
		if b.ReplaceProbability != nil && (*b.ReplaceProbability < 0 || *b.ReplaceProbability > 1) {
			return apperr.Configuration("buffer %q: replace_probability must be in [0,1], got %v", b.Name, *b.ReplaceProbability)
		}
	}
	return nil
}

// Addr formats the HTTP bind address as host:port.
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// SaveStateInterval returns the configured interval, or a value so large it
// is effectively infinite (spec.md's default), as a time.Duration.
func (c ControlThread) SaveStateInterval() time.Duration {
	if c.SaveStateIntervalSeconds <= 0 {
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(c.SaveStateIntervalSeconds * float64(time.Second))
}

// MaxUptime returns the configured max uptime, or effectively infinite.
func (c ControlThread) MaxUptime() time.Duration {
	if c.MaxUptimeSeconds <= 0 {
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(c.MaxUptimeSeconds * float64(time.Second))
}

// TimeoutForAllThreadsPause returns the per-attempt pause timeout.
func (c ControlThread) TimeoutForAllThreadsPause() time.Duration {
	return time.Duration(c.TimeoutForAllThreadsPauseSeconds * float64(time.Second))
}
