package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Structs

// Config holds all information parsed from
// supplied config file.
type Config struct {
	Replica    Replica
	Log        Log
	Prometheus Prometheus
	Peers      map[string]Peer
}

// Replica identifies this process' replica within its synchronization
// group. MaxReplicas fixes the replica field width embedded in every
// timestamp and has to be identical across the whole group.
type Replica struct {
	Name        string
	ID          uint64
	MaxReplicas uint64
}

// Log is the logging related part of the TOML config file.
type Log struct {
	Level string
}

// Prometheus configures the optional metrics endpoint. An empty Addr
// disables exposure and selects discard counters.
type Prometheus struct {
	Addr string
}

// Peer describes another replica of the group this process
// synchronizes with.
type Peer struct {
	Name string
	ID   uint64
}

// Functions

// LoadConfig takes in the path to the main config file in TOML syntax
// and places the values from the file in the corresponding struct.
func LoadConfig(configFile string) (*Config, error) {

	conf := new(Config)

	// Parse values from TOML file into struct.
	_, err := toml.DecodeFile(configFile, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read in TOML config file at '%s' with: %v", configFile, err)
	}

	if conf.Replica.MaxReplicas < 1 {
		return nil, fmt.Errorf("replica group needs at least one member")
	}

	if conf.Replica.ID >= conf.Replica.MaxReplicas {
		return nil, fmt.Errorf("replica ID %d out of range for group of %d", conf.Replica.ID, conf.Replica.MaxReplicas)
	}

	// Make sure peer IDs fit the group and do not collide with each
	// other or with this replica.
	ids := map[uint64]string{
		conf.Replica.ID: conf.Replica.Name,
	}

	for name, peer := range conf.Peers {

		if peer.ID >= conf.Replica.MaxReplicas {
			return nil, fmt.Errorf("peer '%s' has ID %d out of range for group of %d", name, peer.ID, conf.Replica.MaxReplicas)
		}

		if holder, taken := ids[peer.ID]; taken {
			return nil, fmt.Errorf("peer '%s' reuses replica ID %d already held by '%s'", name, peer.ID, holder)
		}

		ids[peer.ID] = name
	}

	return conf, nil
}
