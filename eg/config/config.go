// Package config loads ambient, external-to-the-core configuration: the
// election's VaryingParameters overrides, the default production budget,
// and a test-build CSRNG seed string, from flags and environment variables
// (no config file is read), the way
// cmd/davinci-sequencer/config.go loads this teacher's service
// configuration. Package eg's Context never reads configuration itself
// (§6): it is always constructed from values this package (or an
// equivalent caller) has already resolved.
package config

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/egcore/egds/eg"
	"github.com/egcore/egds/params"
	"github.com/egcore/egds/resource"
)

const (
	defaultChaining        = "prohibited"
	defaultProductionSteps = 0 // 0 means unlimited
	defaultLogLevel        = "info"
	defaultLogOutput       = "stdout"
)

// VaryingParametersConfig mirrors params.VaryingParametersInfo with
// mapstructure tags for viper binding.
type VaryingParametersConfig struct {
	N        int    `mapstructure:"n"`
	K        int    `mapstructure:"k"`
	Info     string `mapstructure:"info"`
	Date     string `mapstructure:"date"`
	Chaining string `mapstructure:"chaining"` // prohibited, allowed, required
}

// LogConfig mirrors the teacher's LogConfig shape.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Config holds every configuration value an external caller (CLI, test
// harness) resolves before constructing an eg.Context.
type Config struct {
	Varying VaryingParametersConfig `mapstructure:"varying"`
	// ProductionSteps is the default resource.FiniteBudget step count; 0
	// means resource.UnlimitedBudget.
	ProductionSteps int `mapstructure:"productionSteps"`
	// CSRNGSeed, if non-empty, selects eg.DeterministicCSRNG(seed) instead
	// of crypto/rand.Reader. Test builds only; never set in production.
	CSRNGSeed string    `mapstructure:"csrngSeed"`
	Log       LogConfig `mapstructure:"log"`
}

// Load reads configuration from command-line flags (already registered on
// flag.CommandLine by the caller's main, or parsed here if not yet parsed),
// environment variables prefixed EGDS_, and viper defaults, following
// cmd/davinci-sequencer/config.go's loadConfig shape.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("varying.n", 1)
	v.SetDefault("varying.k", 1)
	v.SetDefault("varying.chaining", defaultChaining)
	v.SetDefault("productionSteps", defaultProductionSteps)
	v.SetDefault("csrngSeed", "")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	if !flag.Parsed() {
		flag.Int("varying.n", 1, "number of guardians (n)")
		flag.Int("varying.k", 1, "decryption threshold (k)")
		flag.String("varying.info", "", "election info string folded into H_B")
		flag.String("varying.date", "", "election date string folded into H_B")
		flag.String("varying.chaining", defaultChaining, "ballot chaining mode: prohibited, allowed, required")
		flag.Int("productionSteps", defaultProductionSteps, "default resource production budget step count (0 = unlimited)")
		flag.String("csrngSeed", "", "deterministic CSRNG seed for reproducible test runs (test builds only)")
		flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error, fatal)")
		flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
		flag.Parse()
	}

	v.SetEnvPrefix("EGDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// chainingModes maps the lower-case chaining strings to params.ChainingMode,
// the inverse of params.ChainingMode.String() after lower-casing.
var chainingModes = map[string]params.ChainingMode{
	"prohibited": params.ChainingProhibited,
	"allowed":    params.ChainingAllowed,
	"required":   params.ChainingRequired,
}

// VaryingParametersInfo converts the loaded VaryingParametersConfig into a
// params.VaryingParametersInfo ready for eg.Context.SeedVaryingParameters.
func (c *Config) VaryingParametersInfo() (params.VaryingParametersInfo, error) {
	mode, ok := chainingModes[strings.ToLower(c.Varying.Chaining)]
	if !ok {
		return params.VaryingParametersInfo{}, fmt.Errorf("config: unknown chaining mode %q", c.Varying.Chaining)
	}
	return params.VaryingParametersInfo{
		N:        c.Varying.N,
		K:        c.Varying.K,
		Info:     c.Varying.Info,
		Date:     c.Varying.Date,
		Chaining: mode,
	}, nil
}

// Budget converts ProductionSteps into a resource.Budget: <= 0 means
// resource.UnlimitedBudget, matching Config's documented "0 = unlimited".
func (c *Config) Budget() resource.Budget {
	if c.ProductionSteps <= 0 {
		return resource.UnlimitedBudget()
	}
	return resource.FiniteBudget(c.ProductionSteps)
}

// CSRNG returns nil (letting package resource substitute crypto/rand.Reader)
// unless CSRNGSeed is set, in which case it returns
// eg.DeterministicCSRNG(CSRNGSeed). The result becomes the context's CSRNG,
// which guardian key generation and ballot encryption do not read.
func (c *Config) CSRNG() io.Reader {
	if c.CSRNGSeed == "" {
		return nil
	}
	return eg.DeterministicCSRNG(c.CSRNGSeed)
}
