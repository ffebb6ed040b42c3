// Package zero implements ZeRO-style distributed optimizer sharding: it
// partitions a replicated model's gradient buffer across a data-parallel
// group so that each participant reduces only its assigned slice of
// gradients, steps only the corresponding shard of optimizer state and
// master parameters, and gathers the updated parameters back into a full
// replica.
//
// The package is a pure index-algebra and orchestration layer. It never
// allocates the gradient buffer itself, never implements the collective
// primitives, and never implements the step rule: those are injected
// dependencies (see Config) supplied by the surrounding training framework.
package zero
