package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/positivity/pkg/errors"
)

// envPrefix is the environment variable prefix used by every setting.
const envPrefix = "POSITIVITY"

// newViper builds a pre-configured Viper instance: YAML file type,
// POSITIVITY_ env prefix, automatic env binding, and a key replacer that maps
// "." → "_" so that nested keys like "solver.max_iterations" resolve to
// "POSITIVITY_SOLVER_MAX_ITERATIONS".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges POSITIVITY_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigurationLoad,
			fmt.Sprintf("config: failed to read config file %q", configPath))
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from POSITIVITY_* environment variables and
// defaults, with no config file required.
//
//	POSITIVITY_<SECTION>_<FIELD>   e.g.  POSITIVITY_WORKER_CONCURRENCY
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigurationLoad, "config: failed to unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//Personal.AI order the ending
