package zero

import (
	"io"
	"log"

	"github.com/zerfoo/zerfoo/training/optimizer"
)

// Config wires every injected dependency the lifecycle façade (component H)
// needs. Nothing here is looked up from process-wide state; per spec.md §9
// "Global state", rank/world size/communicator are constructor arguments,
// not accessors called from hot paths.
type Config struct {
	// Rank and WorldSize identify this participant in the fixed
	// data-parallel group.
	Rank      int
	WorldSize int

	// Collective is the injected collective-communication layer.
	Collective CollectiveGroup

	// BaseOptimizer is the external step-rule this façade delegates Step
	// to, run on the rewritten shard groups.
	BaseOptimizer optimizer.Optimizer[float32]

	// ClipThreshold, if non-zero, enables global-norm gradient clipping
	// via BaseOptimizer.Clip between copying grads into the master shards
	// and running the step rule. Zero disables it.
	ClipThreshold float32

	// LogZeroGrad enables the log_num_zeros_in_grad diagnostic: Step
	// counts near-zero gradient elements and logs the total via Logger.
	LogZeroGrad bool

	// Logger receives diagnostic output (zero-grad counts, checkpoint
	// warnings). A nil Logger discards all output.
	Logger *log.Logger
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return log.New(io.Discard, "", 0)
}
