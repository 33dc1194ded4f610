package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Structs

// Env holds information specific to the system where crdt-graph is
// deployed. This enables host adaptions without needing to maintain
// two different config files. Use the .env file to populate values
// that vary per machine.
type Env struct {
	ReplicaName    string
	PrometheusAddr string
}

// Functions

// LoadEnv looks for an .env file in the working directory and reads in
// all defined values.
func LoadEnv() (*Env, error) {

	// Load environment file.
	err := godotenv.Load(".env")
	if err != nil {
		return nil, fmt.Errorf("failed to read in .env file with: %s", err.Error())
	}

	env := new(Env)

	// Fill variables from .env into struct.
	env.ReplicaName = os.Getenv("CRDTGRAPH_REPLICA_NAME")
	env.PrometheusAddr = os.Getenv("CRDTGRAPH_PROMETHEUS_ADDR")

	return env, nil
}

// Merge lets the values from the environment take precedence over the
// ones from the config file.
func (c *Config) Merge(env *Env) {

	if env == nil {
		return
	}

	if env.ReplicaName != "" {
		c.Replica.Name = env.ReplicaName
	}

	if env.PrometheusAddr != "" {
		c.Prometheus.Addr = env.PrometheusAddr
	}
}
