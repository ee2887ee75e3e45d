package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	defaultConsumptionRate    = 0.2
	defaultExactMaxCustomers  = 12
	defaultGraspAlpha         = 0.3
	defaultGraspMaxIterations = 500
	defaultGraspTimeLimit     = 60 * time.Second
	defaultTabuTenure         = 10
	defaultTabuMaxIterations  = 1000
	defaultTabuTimeLimit      = 30 * time.Second
	defaultOSRMProfile        = "driving"
	defaultOSRMTimeout        = 10 * time.Second
	defaultOSRMMaxAttempts    = 4
	defaultParallelism        = 4
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	// Solver tunables shared by every algorithm run
	Solver *SolverConfig `json:"solver" yaml:"solver"`

	// Matrix configures an optional external distance matrix provider
	Matrix *MatrixConfig `json:"matrix" yaml:"matrix"`

	// Dispatch configures batch runs of several algorithms
	Dispatch *DispatchConfig `json:"dispatch" yaml:"dispatch"`

	// ExecutionLog configures the append-only run log
	ExecutionLog *ExecutionLogConfig `json:"executionLog" yaml:"executionLog"`

	// Metrics configures solver metrics export
	Metrics *MetricsConfig `json:"metrics" yaml:"metrics"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// SolverConfig defines the cost model and per-algorithm tunables
type SolverConfig struct {
	// Energy units drawn per distance unit
	ConsumptionRate float64 `json:"consumptionRate" yaml:"consumptionRate" mapstructure:"consumptionRate"`

	// Distance metric for coordinates: "euclidean" or "haversine"
	Metric string `json:"metric" yaml:"metric" mapstructure:"metric"`

	Exact           ExactConfig           `json:"exact" yaml:"exact" mapstructure:"exact"`
	NearestNeighbor NearestNeighborConfig `json:"nearestNeighbor" yaml:"nearestNeighbor" mapstructure:"nearestNeighbor"`
	GRASP           GRASPConfig           `json:"grasp" yaml:"grasp" mapstructure:"grasp"`
	Tabu            TabuConfig            `json:"tabu" yaml:"tabu" mapstructure:"tabu"`
}

// ExactConfig defines branch-and-bound limits
type ExactConfig struct {
	// Instances with more customers are rejected; a negative value disables the guard
	MaxCustomers int `json:"maxCustomers" yaml:"maxCustomers" mapstructure:"maxCustomers"`

	// Lower bound: "anchored" (admissible) or "unvisited" (spanning tree of the unvisited set only)
	Bound string `json:"bound" yaml:"bound" mapstructure:"bound"`
}

// NearestNeighborConfig defines the greedy builder options
type NearestNeighborConfig struct {
	TwoOpt bool `json:"twoOpt" yaml:"twoOpt" mapstructure:"twoOpt"`
}

// GRASPConfig defines GRASP tunables
type GRASPConfig struct {
	Alpha         float64       `json:"alpha" yaml:"alpha" mapstructure:"alpha"`
	MaxIterations int           `json:"maxIterations" yaml:"maxIterations" mapstructure:"maxIterations"`
	TimeLimit     time.Duration `json:"timeLimit" yaml:"timeLimit" mapstructure:"timeLimit"`
	Seed          int64         `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// TabuConfig defines Tabu Search tunables
type TabuConfig struct {
	Tenure        int           `json:"tenure" yaml:"tenure" mapstructure:"tenure"`
	MaxIterations int           `json:"maxIterations" yaml:"maxIterations" mapstructure:"maxIterations"`
	TimeLimit     time.Duration `json:"timeLimit" yaml:"timeLimit" mapstructure:"timeLimit"`
	Seed          int64         `json:"seed" yaml:"seed" mapstructure:"seed"`

	// Allow a tabu move when it improves the best known solution
	Aspiration bool `json:"aspiration" yaml:"aspiration" mapstructure:"aspiration"`
}

// MatrixConfig defines the external matrix provider
type MatrixConfig struct {
	// Provider type: "none" for coordinates only or "osrm"
	Provider string     `json:"provider" yaml:"provider"`
	OSRM     OSRMConfig `json:"osrm" yaml:"osrm"`
}

// OSRMConfig defines the OSRM table client
type OSRMConfig struct {
	BaseURL           string        `json:"baseUrl" yaml:"baseUrl"`
	Profile           string        `json:"profile" yaml:"profile"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	Burst             int           `json:"burst" yaml:"burst"`
	MaxAttempts       int           `json:"maxAttempts" yaml:"maxAttempts"`
}

// DispatchConfig defines batch dispatch behaviour
type DispatchConfig struct {
	// Algorithms to run; empty means every registered algorithm
	Algorithms []string `json:"algorithms" yaml:"algorithms"`

	// Maximum number of algorithms running at the same time
	Parallelism int `json:"parallelism" yaml:"parallelism"`

	// Overall deadline for one instance, 0 for none
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Directory for output_<input>.json files; empty writes to stdout
	OutputDir string `json:"outputDir" yaml:"outputDir"`
}

// ExecutionLogConfig defines the append-only execution log
type ExecutionLogConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// MetricsConfig defines the Prometheus textfile export
type MetricsConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	TextfilePath string `json:"textfilePath" yaml:"textfilePath"`
}

// DefaultSolverConfig returns the tunables used when nothing is configured
func DefaultSolverConfig() *SolverConfig {
	cfg := &SolverConfig{GRASP: GRASPConfig{Alpha: defaultGraspAlpha}}
	cfg.ApplyDefaults()

	return cfg
}

// ApplyDefaults fills zero values with defaults. A zero GRASP alpha is a valid
// setting (pure greedy), so only out-of-range values are replaced.
func (c *SolverConfig) ApplyDefaults() {
	if c.ConsumptionRate <= 0 {
		c.ConsumptionRate = defaultConsumptionRate
	}
	if strings.TrimSpace(c.Metric) == "" {
		c.Metric = "euclidean"
	}
	if c.Exact.MaxCustomers < 0 {
		c.Exact.MaxCustomers = 0
	} else if c.Exact.MaxCustomers == 0 {
		c.Exact.MaxCustomers = defaultExactMaxCustomers
	}
	if strings.TrimSpace(c.Exact.Bound) == "" {
		c.Exact.Bound = "anchored"
	}
	if c.GRASP.Alpha < 0 || c.GRASP.Alpha > 1 {
		c.GRASP.Alpha = defaultGraspAlpha
	}
	if c.GRASP.MaxIterations <= 0 {
		c.GRASP.MaxIterations = defaultGraspMaxIterations
	}
	if c.GRASP.TimeLimit <= 0 {
		c.GRASP.TimeLimit = defaultGraspTimeLimit
	}
	if c.Tabu.Tenure <= 0 {
		c.Tabu.Tenure = defaultTabuTenure
	}
	if c.Tabu.MaxIterations <= 0 {
		c.Tabu.MaxIterations = defaultTabuMaxIterations
	}
	if c.Tabu.TimeLimit <= 0 {
		c.Tabu.TimeLimit = defaultTabuTimeLimit
	}
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			if filepath.IsAbs(path) {
				searchPaths = append(searchPaths, path)

				continue
			}
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(currEnv, searchPaths)
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment overrides: SOLVER_GRASP_ALPHA -> solver.grasp.alpha
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads config.yaml and applies defaults for missing sections.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

// Load reads the config file at path, or config.yaml from the default search
// paths when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return New()
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cfg, err := LoadWithEnv[Config](name, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Solver == nil {
		c.Solver = DefaultSolverConfig()
	}
	c.Solver.ApplyDefaults()

	if c.Matrix == nil {
		c.Matrix = &MatrixConfig{Provider: "none"}
	}
	if c.Matrix.OSRM.Profile == "" {
		c.Matrix.OSRM.Profile = defaultOSRMProfile
	}
	if c.Matrix.OSRM.Timeout <= 0 {
		c.Matrix.OSRM.Timeout = defaultOSRMTimeout
	}
	if c.Matrix.OSRM.MaxAttempts <= 0 {
		c.Matrix.OSRM.MaxAttempts = defaultOSRMMaxAttempts
	}
	// OSRM_URL is the variable the routing scripts always honoured
	if url := os.Getenv("OSRM_URL"); url != "" && c.Matrix.OSRM.BaseURL == "" {
		c.Matrix.OSRM.BaseURL = url
		c.Matrix.Provider = "osrm"
	}

	if c.Dispatch == nil {
		c.Dispatch = &DispatchConfig{}
	}
	if c.Dispatch.Parallelism <= 0 {
		c.Dispatch.Parallelism = defaultParallelism
	}

	if c.ExecutionLog == nil {
		c.ExecutionLog = &ExecutionLogConfig{}
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
}

func findConfigFile(currEnv string, searchPaths []string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
