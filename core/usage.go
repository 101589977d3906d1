package core

// Usage is the token and latency accounting of a single model call, or the
// aggregate of several.
type Usage struct {
	Model          string  `json:"model,omitempty"`
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Add folds another usage record into u. Token counts and elapsed time sum;
// the model name is kept when both records agree and cleared when they mix.
func (u *Usage) Add(other Usage) {
	if u.Model != other.Model {
		if u.InputTokens == 0 && u.OutputTokens == 0 && u.ElapsedSeconds == 0 {
			u.Model = other.Model
		} else if other.Model != "" {
			u.Model = ""
		}
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.ElapsedSeconds += other.ElapsedSeconds
}

// TotalTokens returns the combined input and output token count.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}
