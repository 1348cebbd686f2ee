package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jet/uidmap/log"
)

const DefaultLogMaxSizeMB = 10
const DefaultLogMaxFiles = 5
const DefaultMetricsEndpoint = "/metrics"
const DefaultAddress = "127.0.0.1:8079"
const MetricsNamespace = "uidmap"
const hostLabel = "host"

const (
	EnvUIDMapLogMaxSizeMB    = "UIDMAP_LOG_MAX_SIZE"
	EnvUIDMapLogMaxFiles     = "UIDMAP_LOG_MAX_FILES"
	EnvUIDMapLogDir          = "UIDMAP_LOG_DIR"
	EnvUIDMapLogName         = "UIDMAP_LOG_NAME"
	EnvUIDMapLogLevel        = "UIDMAP_LOG_LEVEL"
	EnvUIDMapAddress         = "UIDMAP_ADDR"
	EnvUIDMapMetricsEndpoint = "UIDMAP_METRICS_ENDPOINT"
	EnvUIDMapProfiles        = "UIDMAP_PROFILES"
	EnvComputerName          = "COMPUTERNAME"
)

// Config is the runtime configuration of uidmap.
// Values come from the environment and may be overridden by flags.
type Config struct {
	Log             log.LogConfig
	Address         string
	MetricsEndpoint string
	Profiles        bool
}

func LogConfigFromEnvironment() (log.LogConfig, error) {
	cfg := log.LogConfig{
		LogDir:      os.Getenv(EnvUIDMapLogDir),
		LogName:     os.Getenv(EnvUIDMapLogName),
		Level:       os.Getenv(EnvUIDMapLogLevel),
		MaxLogFiles: DefaultLogMaxFiles,
		MaxSizeMB:   DefaultLogMaxSizeMB,
	}
	sz, err := envToInt(DefaultLogMaxSizeMB, EnvUIDMapLogMaxSizeMB)
	if err != nil {
		return cfg, err
	}
	cfg.MaxSizeMB = int(sz)
	n, err := envToInt(DefaultLogMaxFiles, EnvUIDMapLogMaxFiles)
	if err != nil {
		return cfg, err
	}
	cfg.MaxLogFiles = int(n)
	return cfg, nil
}

func ConfigFromEnvironment() (Config, error) {
	lcfg, err := LogConfigFromEnvironment()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Log:             lcfg,
		Address:         envStr(DefaultAddress, EnvUIDMapAddress),
		MetricsEndpoint: envStr(DefaultMetricsEndpoint, EnvUIDMapMetricsEndpoint),
		Profiles:        envToBool(EnvUIDMapProfiles, true),
	}, nil
}

// AddFlags registers flags that override the environment configuration
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Log.LogDir, "log-dir", c.Log.LogDir, "directory of the log file (default: working directory) ["+EnvUIDMapLogDir+"]")
	fs.StringVar(&c.Log.LogName, "log-name", c.Log.LogName, "name of the log file (default: "+log.DefaultLogName+") ["+EnvUIDMapLogName+"]")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level: debug, info, warn, error ["+EnvUIDMapLogLevel+"]")
	fs.IntVar(&c.Log.MaxSizeMB, "log-max-size", c.Log.MaxSizeMB, "maximum size of a log file in megabytes ["+EnvUIDMapLogMaxSizeMB+"]")
	fs.IntVar(&c.Log.MaxLogFiles, "log-max-files", c.Log.MaxLogFiles, "number of rolled log files to keep ["+EnvUIDMapLogMaxFiles+"]")
	fs.BoolVar(&c.Profiles, "profiles", c.Profiles, "resolve profile directories from the registry ["+EnvUIDMapProfiles+"]")
}

// AddServeFlags registers the flags of the serve command
func (c *Config) AddServeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Address, "addr", c.Address, "listen address ["+EnvUIDMapAddress+"]")
	fs.StringVar(&c.MetricsEndpoint, "metrics-endpoint", c.MetricsEndpoint, "path of the prometheus metrics ["+EnvUIDMapMetricsEndpoint+"]")
}

// MetricLabels are the constant labels of every metric
func MetricLabels() map[string]string {
	labels := make(map[string]string)
	if host := envStr("", EnvComputerName); host != "" {
		labels[hostLabel] = host
	} else if host, err := os.Hostname(); err == nil {
		labels[hostLabel] = host
	}
	return labels
}

func envToBool(env string, def bool) bool {
	if env := os.Getenv(env); env != "" {
		switch strings.ToLower(strings.TrimSpace(env)) {
		case "y", "yes", "true", "1":
			return true
		case "n", "no", "false", "0":
			return false
		}
	}
	return def
}

func envStr(def string, envs ...string) string {
	for _, e := range envs {
		if env := os.Getenv(e); env != "" {
			return env
		}
	}
	return def
}

func envToInt(def int64, envs ...string) (int64, error) {
	for _, e := range envs {
		if env := os.Getenv(e); env != "" {
			i, err := strconv.ParseInt(env, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("error parsing environment %s=%s as integer: %v", e, env, err)
			}
			return int64(i), nil
		}
	}
	return def, nil
}
