package config_test

import (
	"testing"

	"github.com/maca/crdt-graph/config"
)

// Functions

// TestLoadConfig executes a black-box test on the
// implemented functionalities to load a TOML config file.
func TestLoadConfig(t *testing.T) {

	// Try to load a broken config file. This should fail.
	_, err := config.LoadConfig("testdata/broken-config.toml")
	if err == nil {
		t.Fatal("[config.TestLoadConfig] Expected fail while loading broken-config.toml but received 'nil' error.")
	}

	// A replica ID outside the configured group size should fail.
	_, err = config.LoadConfig("testdata/out-of-range-config.toml")
	if err == nil {
		t.Fatal("[config.TestLoadConfig] Expected fail while loading out-of-range-config.toml but received 'nil' error.")
	}

	// A peer reusing this replica's ID should fail.
	_, err = config.LoadConfig("testdata/duplicate-peer-config.toml")
	if err == nil {
		t.Fatal("[config.TestLoadConfig] Expected fail while loading duplicate-peer-config.toml but received 'nil' error.")
	}

	// Now load a valid config.
	conf, err := config.LoadConfig("testdata/config.toml")
	if err != nil {
		t.Fatalf("[config.TestLoadConfig] Expected success while loading config.toml but received: '%s'\n", err.Error())
	}

	// Check for test success.
	if conf.Replica.Name != "alpha" {
		t.Fatalf("[config.TestLoadConfig] Expected '%s' but received '%s'\n", "alpha", conf.Replica.Name)
	}

	if conf.Replica.MaxReplicas != 4 {
		t.Fatalf("[config.TestLoadConfig] Expected MaxReplicas 4 but received %d.\n", conf.Replica.MaxReplicas)
	}

	if conf.Prometheus.Addr != ":9112" {
		t.Fatalf("[config.TestLoadConfig] Expected '%s' but received '%s'\n", ":9112", conf.Prometheus.Addr)
	}

	if len(conf.Peers) != 2 {
		t.Fatalf("[config.TestLoadConfig] Expected 2 peers but received %d.\n", len(conf.Peers))
	}

	if conf.Peers["beta"].ID != 1 {
		t.Fatalf("[config.TestLoadConfig] Expected peer ID 1 but received %d.\n", conf.Peers["beta"].ID)
	}
}

// TestMerge verifies that environment values take precedence over the
// config file.
func TestMerge(t *testing.T) {

	conf, err := config.LoadConfig("testdata/config.toml")
	if err != nil {
		t.Fatalf("[config.TestMerge] Expected success while loading config.toml but received: '%s'\n", err.Error())
	}

	conf.Merge(&config.Env{PrometheusAddr: ":9999"})

	if conf.Prometheus.Addr != ":9999" {
		t.Fatalf("[config.TestMerge] Expected '%s' but received '%s'\n", ":9999", conf.Prometheus.Addr)
	}

	// Unset environment values leave the file's values alone.
	if conf.Replica.Name != "alpha" {
		t.Fatalf("[config.TestMerge] Expected '%s' but received '%s'\n", "alpha", conf.Replica.Name)
	}
}
