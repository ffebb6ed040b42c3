package numerai

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/zerfoo/zerfoo/compute"
	"github.com/zerfoo/zerfoo/graph"
	"github.com/zerfoo/zerfoo/layers/core"
	"github.com/zerfoo/zerfoo/numeric"
	"github.com/zerfoo/zerfoo/tensor"
	"github.com/zerfoo/zerfoo/training"
)

// BaselineModelConfig defines configuration for Numerai baseline models.
type BaselineModelConfig struct {
	// Model architecture
	ModelType      string  `json:"model_type"`       // "linear", "mlp", "ensemble"
	HiddenSizes    []int   `json:"hidden_sizes"`     // Hidden layer sizes for MLP
	DropoutRate    float64 `json:"dropout_rate"`     // Dropout probability
	UseLayerNorm   bool    `json:"use_layer_norm"`   // Whether to use layer normalization
	
	// Training configuration
	LearningRate   float64 `json:"learning_rate"`    // Learning rate
	BatchSize      int     `json:"batch_size"`       // Training batch size
	NumEpochs      int     `json:"num_epochs"`       // Training epochs
	WeightDecay    float64 `json:"weight_decay"`     // L2 regularization
	EarlyStop      int     `json:"early_stop"`       // Early stopping patience
	
	// Feature engineering
	FeatureSelection bool    `json:"feature_selection"` // Whether to perform feature selection
	TopKFeatures     int     `json:"top_k_features"`    // Number of top features to select
	FeatureScaling   string  `json:"feature_scaling"`   // "none", "standard", "minmax"
	
	// Ensemble configuration
	NumModels        int     `json:"num_models"`        // Number of models in ensemble
	EnsembleMethod   string  `json:"ensemble_method"`   // "average", "weighted_average"
	
	// Validation and metrics
	ValidationSplit  float64 `json:"validation_split"`  // Validation set ratio
	MetricNames      []string `json:"metric_names"`     // Metrics to track
	
	// Random seed
	RandomSeed       int     `json:"random_seed"`       // Random seed for reproducibility
}

// DefaultBaselineConfig returns default configuration for Numerai baseline model.
func DefaultBaselineConfig() *BaselineModelConfig {
	return &BaselineModelConfig{
		ModelType:        "mlp",
		HiddenSizes:      []int{512, 256, 128},
		DropoutRate:      0.2,
		UseLayerNorm:     true,
		LearningRate:     0.001,
		BatchSize:        1024,
		NumEpochs:        100,
		WeightDecay:      0.01,
		EarlyStop:        10,
		FeatureSelection: false,
		TopKFeatures:     500,
		FeatureScaling:   "standard",
		NumModels:        1,
		EnsembleMethod:   "average",
		ValidationSplit:  0.2,
		MetricNames:      []string{"mse", "correlation"},
		RandomSeed:       42,
	}
}

// BaselineModel represents a baseline model for Numerai prediction.
type BaselineModel struct {
	config    *BaselineModelConfig
	engine    compute.Engine[float32]
	ops       numeric.Arithmetic[float32]
	model     graph.Node[float32]
	trainer   *training.Trainer[float32]
	
	// Feature preprocessing
	featureMean   *tensor.TensorNumeric[float32]
	featureStd    *tensor.TensorNumeric[float32]
	selectedFeatures []int
	
	// Training history
	trainingLoss   []float64
	validationLoss []float64
	metrics        map[string][]float64
	
	// Model state
	trained        bool
	numFeatures    int
}

// NewBaselineModel creates a new baseline model with the given configuration.
func NewBaselineModel(config *BaselineModelConfig) (*BaselineModel, error) {
	if config == nil {
		config = DefaultBaselineConfig()
	}
	
	ops := numeric.Float32Ops{}
	engine := compute.NewCPUEngine[float32](ops)
	
	// Set random seed for reproducibility
	_ = rand.New(rand.NewPCG(uint64(config.RandomSeed), uint64(config.RandomSeed)))
	
	return &BaselineModel{
		config:         config,
		engine:         engine,
		ops:            ops,
		trainingLoss:   []float64{},
		validationLoss: []float64{},
		metrics:        make(map[string][]float64),
		trained:        false,
	}, nil
}

// BuildModel constructs the neural network architecture.
func (bm *BaselineModel) BuildModel(numFeatures int) error {
	bm.numFeatures = numFeatures
	
	switch bm.config.ModelType {
	case "linear":
		return bm.buildLinearModel(numFeatures)
	case "mlp":
		return bm.buildMLPModel(numFeatures)
	default:
		return fmt.Errorf("unsupported model type: %s", bm.config.ModelType)
	}
}

// buildLinearModel creates a simple linear regression model.
func (bm *BaselineModel) buildLinearModel(numFeatures int) error {
	// Single linear layer: features -> 1 output
	linear, err := core.NewLinear[float32]("linear", bm.engine, bm.ops, numFeatures, 1)
	if err != nil {
		return fmt.Errorf("failed to create linear layer: %w", err)
	}
	
	bm.model = linear
	return nil
}

// buildMLPModel creates a multi-layer perceptron model.
func (bm *BaselineModel) buildMLPModel(numFeatures int) error {
	// Build sequential model with hidden layers
	layers := []graph.Node[float32]{}
	
	inputSize := numFeatures
	for i, hiddenSize := range bm.config.HiddenSizes {
		// Dense layer
		linear, err := core.NewLinear[float32](
			fmt.Sprintf("hidden_%d", i),
			bm.engine, bm.ops,
			inputSize, hiddenSize,
		)
		if err != nil {
			return fmt.Errorf("failed to create hidden layer %d: %w", i, err)
		}
		layers = append(layers, linear)
		
		// TODO: Add activation, dropout, layer norm when available
		inputSize = hiddenSize
	}
	
	// Output layer
	outputLayer, err := core.NewLinear[float32]("output", bm.engine, bm.ops, inputSize, 1)
	if err != nil {
		return fmt.Errorf("failed to create output layer: %w", err)
	}
	layers = append(layers, outputLayer)
	
	// For now, just use the first layer as a placeholder
	// In a full implementation, we'd create a Sequential container
	bm.model = layers[0]
	return nil
}

// preprocessFeatures applies feature preprocessing (scaling, selection).
func (bm *BaselineModel) preprocessFeatures(features *tensor.TensorNumeric[float32], fit bool) (*tensor.TensorNumeric[float32], error) {
	shape := features.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected 2D features tensor, got %dD", len(shape))
	}
	
	processed := features
	
	// Feature scaling
	if bm.config.FeatureScaling == "standard" {
		var err error
		processed, err = bm.standardizeFeatures(processed, fit)
		if err != nil {
			return nil, fmt.Errorf("failed to standardize features: %w", err)
		}
	}
	
	// Feature selection (placeholder - would need correlation analysis)
	if bm.config.FeatureSelection && fit {
		bm.selectedFeatures = bm.selectTopFeatures(processed, bm.config.TopKFeatures)
	}
	
	return processed, nil
}

// standardizeFeatures applies z-score normalization.
func (bm *BaselineModel) standardizeFeatures(features *tensor.TensorNumeric[float32], fit bool) (*tensor.TensorNumeric[float32], error) {
	if fit {
		// Compute mean and std
		mean, std, err := bm.computeFeatureStats(features)
		if err != nil {
			return nil, err
		}
		bm.featureMean = mean
		bm.featureStd = std
	}
	
	if bm.featureMean == nil || bm.featureStd == nil {
		return features, nil // No preprocessing fitted
	}
	
	// Apply normalization: (x - mean) / std
	centered, err := bm.engine.Sub(context.Background(), features, bm.featureMean)
	if err != nil {
		return nil, err
	}
	
	normalized, err := bm.engine.Div(context.Background(), centered, bm.featureStd)
	if err != nil {
		return nil, err
	}
	
	return normalized, nil
}

// computeFeatureStats computes mean and standard deviation for features.
func (bm *BaselineModel) computeFeatureStats(features *tensor.TensorNumeric[float32]) (*tensor.TensorNumeric[float32], *tensor.TensorNumeric[float32], error) {
	shape := features.Shape()
	rows, cols := shape[0], shape[1]
	data := features.Data()
	
	// Compute column-wise mean
	meanData := make([]float32, cols)
	for col := 0; col < cols; col++ {
		sum := float32(0)
		count := 0
		
		for row := 0; row < rows; row++ {
			val := data[row*cols+col]
			if !math.IsNaN(float64(val)) {
				sum += val
				count++
			}
		}
		
		if count > 0 {
			meanData[col] = sum / float32(count)
		}
	}
	
	// Compute column-wise std
	stdData := make([]float32, cols)
	for col := 0; col < cols; col++ {
		sumSquares := float32(0)
		count := 0
		mean := meanData[col]
		
		for row := 0; row < rows; row++ {
			val := data[row*cols+col]
			if !math.IsNaN(float64(val)) {
				diff := val - mean
				sumSquares += diff * diff
				count++
			}
		}
		
		if count > 1 {
			variance := sumSquares / float32(count-1)
			stdData[col] = float32(math.Sqrt(float64(variance)))
		} else {
			stdData[col] = 1.0 // Avoid division by zero
		}
		
		// Prevent division by zero
		if stdData[col] < 1e-8 {
			stdData[col] = 1.0
		}
	}
	
	// Create tensors
	mean, err := tensor.New[float32]([]int{1, cols}, meanData)
	if err != nil {
		return nil, nil, err
	}
	
	std, err := tensor.New[float32]([]int{1, cols}, stdData)
	if err != nil {
		return nil, nil, err
	}
	
	return mean, std, nil
}

// selectTopFeatures selects top-k features (placeholder implementation).
func (bm *BaselineModel) selectTopFeatures(features *tensor.TensorNumeric[float32], k int) []int {
	shape := features.Shape()
	numFeatures := shape[1]
	
	// Placeholder: just return first k features
	// In practice, would use correlation with target or other feature selection methods
	selected := make([]int, min(k, numFeatures))
	for i := range selected {
		selected[i] = i
	}
	
	return selected
}

// Train trains the baseline model on the provided data.
func (bm *BaselineModel) Train(features, targets *tensor.TensorNumeric[float32]) error {
	// Preprocess features
	processedFeatures, err := bm.preprocessFeatures(features, true)
	if err != nil {
		return fmt.Errorf("failed to preprocess features: %w", err)
	}
	
	// Build model if not already built
	if bm.model == nil {
		featShape := processedFeatures.Shape()
		if err := bm.BuildModel(featShape[1]); err != nil {
			return fmt.Errorf("failed to build model: %w", err)
		}
	}
	
	// Create trainer (placeholder - would use actual optimizer)
	ctx := context.Background()
	
	// Simple training loop (placeholder)
	for epoch := 0; epoch < min(bm.config.NumEpochs, 10); epoch++ {
		// Forward pass
		predictions, err := bm.model.Forward(ctx, processedFeatures)
		if err != nil {
			return fmt.Errorf("forward pass failed at epoch %d: %w", epoch, err)
		}
		
		// Compute loss (MSE)
		loss, err := bm.computeMSE(predictions, targets)
		if err != nil {
			return fmt.Errorf("failed to compute loss at epoch %d: %w", epoch, err)
		}
		
		bm.trainingLoss = append(bm.trainingLoss, loss)
		
		// TODO: Implement actual gradient computation and parameter updates
		// This would require proper backward pass and optimizer integration
	}
	
	bm.trained = true
	return nil
}

// Predict generates predictions for the given features.
func (bm *BaselineModel) Predict(features *tensor.TensorNumeric[float32]) (*tensor.TensorNumeric[float32], error) {
	if !bm.trained {
		return nil, fmt.Errorf("model must be trained before prediction")
	}
	
	// Preprocess features (using fitted parameters)
	processedFeatures, err := bm.preprocessFeatures(features, false)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess features: %w", err)
	}
	
	// Forward pass
	ctx := context.Background()
	predictions, err := bm.model.Forward(ctx, processedFeatures)
	if err != nil {
		return nil, fmt.Errorf("forward pass failed during prediction: %w", err)
	}
	
	return predictions, nil
}

// computeMSE computes mean squared error between predictions and targets.
func (bm *BaselineModel) computeMSE(predictions, targets *tensor.TensorNumeric[float32]) (float64, error) {
	predData := predictions.Data()
	targData := targets.Data()
	
	if len(predData) != len(targData) {
		return 0, fmt.Errorf("prediction and target lengths mismatch: %d vs %d", len(predData), len(targData))
	}
	
	sumSquaredError := float64(0)
	validCount := 0
	
	for i := range predData {
		pred := float64(predData[i])
		targ := float64(targData[i])
		
		if !math.IsNaN(pred) && !math.IsNaN(targ) {
			diff := pred - targ
			sumSquaredError += diff * diff
			validCount++
		}
	}
	
	if validCount == 0 {
		return math.NaN(), fmt.Errorf("no valid prediction-target pairs")
	}
	
	return sumSquaredError / float64(validCount), nil
}

// computeCorrelation computes Pearson correlation between predictions and targets.
func (bm *BaselineModel) computeCorrelation(predictions, targets *tensor.TensorNumeric[float32]) (float64, error) {
	predData := predictions.Data()
	targData := targets.Data()
	
	if len(predData) != len(targData) {
		return 0, fmt.Errorf("prediction and target lengths mismatch: %d vs %d", len(predData), len(targData))
	}
	
	// Filter valid pairs
	var validPred, validTarg []float64
	for i := range predData {
		pred := float64(predData[i])
		targ := float64(targData[i])
		
		if !math.IsNaN(pred) && !math.IsNaN(targ) {
			validPred = append(validPred, pred)
			validTarg = append(validTarg, targ)
		}
	}
	
	if len(validPred) < 2 {
		return math.NaN(), fmt.Errorf("insufficient valid pairs for correlation: %d", len(validPred))
	}
	
	// Compute means
	predMean := 0.0
	targMean := 0.0
	for i := range validPred {
		predMean += validPred[i]
		targMean += validTarg[i]
	}
	predMean /= float64(len(validPred))
	targMean /= float64(len(validTarg))
	
	// Compute correlation
	numerator := 0.0
	predSumSq := 0.0
	targSumSq := 0.0
	
	for i := range validPred {
		predDiff := validPred[i] - predMean
		targDiff := validTarg[i] - targMean
		
		numerator += predDiff * targDiff
		predSumSq += predDiff * predDiff
		targSumSq += targDiff * targDiff
	}
	
	denominator := math.Sqrt(predSumSq * targSumSq)
	if denominator < 1e-10 {
		return 0.0, nil // No variance in one or both variables
	}
	
	return numerator / denominator, nil
}

// Evaluate computes evaluation metrics on the given data.
func (bm *BaselineModel) Evaluate(features, targets *tensor.TensorNumeric[float32]) (map[string]float64, error) {
	predictions, err := bm.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("failed to generate predictions: %w", err)
	}
	
	metrics := make(map[string]float64)
	
	// MSE
	mse, err := bm.computeMSE(predictions, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to compute MSE: %w", err)
	}
	metrics["mse"] = mse
	
	// Correlation
	corr, err := bm.computeCorrelation(predictions, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to compute correlation: %w", err)
	}
	metrics["correlation"] = corr
	
	return metrics, nil
}

// GetTrainingHistory returns the training history.
func (bm *BaselineModel) GetTrainingHistory() map[string][]float64 {
	history := make(map[string][]float64)
	history["training_loss"] = bm.trainingLoss
	history["validation_loss"] = bm.validationLoss
	
	for metric, values := range bm.metrics {
		history[metric] = values
	}
	
	return history
}

// SaveModel saves the model state (placeholder implementation).
func (bm *BaselineModel) SaveModel(filepath string) error {
	// TODO: Implement model serialization
	return fmt.Errorf("model saving not yet implemented")
}

// LoadModel loads a saved model (placeholder implementation).
func (bm *BaselineModel) LoadModel(filepath string) error {
	// TODO: Implement model deserialization
	return fmt.Errorf("model loading not yet implemented")
}