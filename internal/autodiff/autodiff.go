package autodiff

// Engine provides automatic differentiation (AD) capabilities (reverse-mode backpropagation).
// TODO: Implement reverse-mode AD to record operations during forward pass and compute gradients during backward pass:contentReference[oaicite:12]{index=12}.
type Engine struct {
    // Fields for tracking the computational graph or tape
}

// ComputeGradients performs a backward pass on the given graph to compute gradients.
func (eng *Engine) ComputeGradients(g *graph.Graph) error {
    // TODO: traverse the graph in reverse and calculate gradients for each node
    return nil
}
