package penpal

import "sync"

// Usage is the token count reported for one completion.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// TokenRates defines cost per million tokens for input and output
type TokenRates struct {
	Input  float64
	Output float64
}

// Pricing constants for GPT-4o and GPT-4o-mini (in dollars per million tokens)
const (
	GPT4oInputRate      = 2.5
	GPT4oOutputRate     = 10.0
	GPT4oMiniInputRate  = 0.15
	GPT4oMiniOutputRate = 0.60
)

// ModelPricings is a map of model names to their pricing information
var ModelPricings = map[string]TokenRates{
	"gpt-4o": {
		Input:  GPT4oInputRate,
		Output: GPT4oOutputRate,
	},
	"gpt-4o-mini": {
		Input:  GPT4oMiniInputRate,
		Output: GPT4oMiniOutputRate,
	},
}

// CostDetails represents detailed cost information for a session
type CostDetails struct {
	InputTokens  int64
	OutputTokens int64
	TotalCost    float64
}

// UsageTracker sums the usage of every non-streaming completion in a session.
// Streamed chat replies do not report usage and are not counted.
type UsageTracker struct {
	mu           sync.Mutex
	model        string
	inputTokens  int64
	outputTokens int64
}

func NewUsageTracker(model string) *UsageTracker {
	return &UsageTracker{model: model}
}

func (u *UsageTracker) Add(usage Usage) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inputTokens += usage.PromptTokens
	u.outputTokens += usage.CompletionTokens
}

// Cost returns the accumulated cost, or false when the model has no known pricing.
func (u *UsageTracker) Cost() (*CostDetails, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	pricing, exists := ModelPricings[u.model]
	if !exists {
		return nil, false
	}

	inputCost := float64(u.inputTokens) * pricing.Input / 1000000
	outputCost := float64(u.outputTokens) * pricing.Output / 1000000

	return &CostDetails{
		InputTokens:  u.inputTokens,
		OutputTokens: u.outputTokens,
		TotalCost:    inputCost + outputCost,
	}, true
}
