// Package distributed provides distributed training strategies and coordination mechanisms
// for multi-node machine learning workloads in the Zerfoo framework.
package distributed

import (
	"fmt"

	"github.com/zerfoo/zerfoo/tensor"
)

// InternalStrategy defines the interface for a distributed training strategy.
type InternalStrategy[T tensor.Numeric] interface {
	// Init initializes the strategy.
	Init(rank int, size int, coordinatorAddress string) error
	// AllReduceGradients performs an all-reduce operation on the gradients.
	AllReduceGradients(gradients map[string]*tensor.TensorNumeric[T]) error
	// Barrier blocks until all workers have reached the barrier.
	Barrier() error
	// BroadcastTensor broadcasts a tensor from the root to all other workers.
	BroadcastTensor(t *tensor.TensorNumeric[T], rootRank int) error
	// Rank returns the rank of the current worker.
	Rank() int
	// Size returns the total number of workers.
	Size() int
	// Shutdown cleans up the resources used by the strategy.
	Shutdown()
}

// Logger is an interface for logging, shared by every package in this module
// that needs to report progress without depending on a concrete logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

type defaultLogger struct{}

func (l *defaultLogger) Printf(format string, v ...interface{}) {
	fmt.Printf(format, v...)
}
