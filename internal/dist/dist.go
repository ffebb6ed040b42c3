package dist

// Trainer defines an interface for distributed training routines.
type Trainer interface {
    // TrainStep performs one training iteration across distributed nodes.
    TrainStep() error
}

// ParameterServer is a stub representing a parameter server in distributed training.
type ParameterServer struct {
    // Fields for maintaining global parameters and synchronization (e.g., gRPC clients)
}

// TrainStep implements one round of training in a parameter server setup.
func (ps *ParameterServer) TrainStep() error {
    // TODO: coordinate with worker nodes to gather gradients and update parameters:contentReference[oaicite:19]{index=19}:contentReference[oaicite:20]{index=20}.
    return nil
}
