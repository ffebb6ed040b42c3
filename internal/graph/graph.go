package graph

// Node represents an operation or variable in the computation graph.
type Node struct {
    // Example fields: operation type, value, gradient, children nodes
}

// Graph represents a computational graph of operations and dependencies.
type Graph struct {
    Nodes []*Node
}

// AddNode adds a node to the computational graph.
func (g *Graph) AddNode(node *Node) {
    // TODO: append node to graph and handle dependencies
    g.Nodes = append(g.Nodes, node)
}

// Execute runs a forward pass on the graph (stub implementation).
func (g *Graph) Execute() error {
    // TODO: iterate through nodes and perform computations in order
    return nil
}
