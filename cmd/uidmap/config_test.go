package main

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestConfigDefaults(t *testing.T) {
	for _, env := range []string{
		EnvUIDMapLogDir, EnvUIDMapLogName, EnvUIDMapLogLevel, EnvUIDMapLogMaxSizeMB,
		EnvUIDMapLogMaxFiles, EnvUIDMapAddress, EnvUIDMapMetricsEndpoint, EnvUIDMapProfiles,
	} {
		t.Setenv(env, "")
	}
	cfg, err := ConfigFromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address != DefaultAddress {
		t.Errorf("address: expected %s but got %s", DefaultAddress, cfg.Address)
	}
	if cfg.MetricsEndpoint != DefaultMetricsEndpoint {
		t.Errorf("metrics endpoint: expected %s but got %s", DefaultMetricsEndpoint, cfg.MetricsEndpoint)
	}
	if !cfg.Profiles {
		t.Error("profiles should be enabled by default")
	}
	if cfg.Log.MaxSizeMB != DefaultLogMaxSizeMB || cfg.Log.MaxLogFiles != DefaultLogMaxFiles {
		t.Errorf("unexpected log rotation %+v", cfg.Log)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv(EnvUIDMapLogDir, `c:\uidmap\logs`)
	t.Setenv(EnvUIDMapLogName, "inventory.log")
	t.Setenv(EnvUIDMapLogLevel, "debug")
	t.Setenv(EnvUIDMapLogMaxSizeMB, "20")
	t.Setenv(EnvUIDMapLogMaxFiles, "2")
	t.Setenv(EnvUIDMapAddress, ":9000")
	t.Setenv(EnvUIDMapMetricsEndpoint, "/prom")
	t.Setenv(EnvUIDMapProfiles, "no")
	cfg, err := ConfigFromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.LogDir != `c:\uidmap\logs` || cfg.Log.LogName != "inventory.log" || cfg.Log.Level != "debug" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Log.MaxSizeMB != 20 || cfg.Log.MaxLogFiles != 2 {
		t.Errorf("unexpected log rotation %+v", cfg.Log)
	}
	if cfg.Address != ":9000" || cfg.MetricsEndpoint != "/prom" || cfg.Profiles {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigBadInteger(t *testing.T) {
	t.Setenv(EnvUIDMapLogMaxSizeMB, "ten")
	if _, err := ConfigFromEnvironment(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv(EnvUIDMapAddress, ":9000")
	t.Setenv(EnvUIDMapLogLevel, "warn")
	cfg, err := ConfigFromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs)
	cfg.AddServeFlags(fs)
	if err := fs.Parse([]string{"--addr", ":9100", "--profiles=false"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Address != ":9100" {
		t.Errorf("address: expected :9100 but got %s", cfg.Address)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level: expected warn but got %s", cfg.Log.Level)
	}
	if cfg.Profiles {
		t.Error("expected profiles to be disabled")
	}
}

func TestEnvToBool(t *testing.T) {
	tests := []struct {
		value    string
		def      bool
		expected bool
	}{
		{value: "", def: true, expected: true},
		{value: "yes", def: false, expected: true},
		{value: " TRUE ", def: false, expected: true},
		{value: "0", def: true, expected: false},
		{value: "maybe", def: true, expected: true},
	}
	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			t.Setenv("UIDMAP_TEST_BOOL", test.value)
			if actual := envToBool("UIDMAP_TEST_BOOL", test.def); actual != test.expected {
				t.Errorf("expected %v but got %v", test.expected, actual)
			}
		})
	}
}
