package placement

import (
	"errors"

	"go.gazette.dev/rackplan/protocol"
)

// Config parameterizes an assignment.
type Config struct {
	// Number of logical shards. Each shard has Replicas slots.
	Shards int
	// Number of replicas of each shard. One RackGroup is built per replica.
	Replicas int
	// RotateReplicas offsets the shard traversal of replica i by
	// i * Shards / Replicas before binding shards to hosts. Without rotation,
	// rack groups of identical host counts bind the same shard indices to the
	// same relative host positions ("mirrors"). Rotation changes which shard
	// indices land on a host, but never its load.
	RotateReplicas bool
}

const (
	// MaxShards is the largest number of Shards of a Config.
	MaxShards = 1 << 20
	// MaxShardSlots is the largest Replicas * Shards of a Config.
	MaxShardSlots = 1 << 24
)

// Validate returns an error if the Config is not well-formed.
func (c Config) Validate() error {
	if err := protocol.ValidateNonNegative(c.Shards, "Shards"); err != nil {
		return err
	} else if err = protocol.ValidatePositive(c.Replicas, "Replicas"); err != nil {
		return err
	} else if c.Shards > MaxShards {
		return protocol.NewValidationError("invalid Shards (%d; expected Shards <= %d)", c.Shards, MaxShards)
	} else if c.Shards != 0 && c.Replicas > MaxShardSlots/c.Shards {
		return protocol.NewValidationError("invalid Replicas (%d; expected Replicas * Shards <= %d)",
			c.Replicas, MaxShardSlots)
	}
	return nil
}

// rotation returns the queue offset applied to |replica|.
func (c Config) rotation(replica int) int {
	if !c.RotateReplicas || c.Shards == 0 {
		return 0
	}
	return (replica * c.Shards / c.Replicas) % c.Shards
}

// InvalidTopologyError is returned when the rack topology cannot host an
// assignment: there are no hosts, or fewer non-empty racks than replicas.
type InvalidTopologyError struct {
	Err error
}

func (e *InvalidTopologyError) Error() string { return "invalid topology: " + e.Err.Error() }
func (e *InvalidTopologyError) Unwrap() error { return e.Err }

// InvalidShardConfigError is returned when a Config fails validation.
type InvalidShardConfigError struct {
	Err error
}

func (e *InvalidShardConfigError) Error() string { return "invalid shard config: " + e.Err.Error() }
func (e *InvalidShardConfigError) Unwrap() error { return e.Err }

// IsInvalidTopology returns true if |err| is or wraps an *InvalidTopologyError.
func IsInvalidTopology(err error) bool {
	var target *InvalidTopologyError
	return errors.As(err, &target)
}

// IsInvalidShardConfig returns true if |err| is or wraps an *InvalidShardConfigError.
func IsInvalidShardConfig(err error) bool {
	var target *InvalidShardConfigError
	return errors.As(err, &target)
}

// validateTopology checks that every RackGroup will receive at least one Host.
func validateTopology(hosts []*Host, rackNames []string, replicas int) error {
	if len(hosts) == 0 {
		return &InvalidTopologyError{protocol.NewValidationError("no hosts")}
	}
	for i, h := range hosts {
		if h.Rack == "" {
			return &InvalidTopologyError{protocol.ExtendContext(
				protocol.NewValidationError("host %s has no rack", h.Name), "Hosts[%d]", i)}
		}
	}
	if len(rackNames) < replicas {
		return &InvalidTopologyError{protocol.NewValidationError(
			"not enough racks (%d; expected racks >= Replicas = %d)", len(rackNames), replicas)}
	}
	return nil
}
