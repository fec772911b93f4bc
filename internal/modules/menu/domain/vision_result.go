package domain

import "time"

// VisionResult ビジョンLLMの応答
type VisionResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
	ProcessedAt  time.Time
}

// NewVisionResult 新しいVisionResultを作成
func NewVisionResult(text string, inputTokens, outputTokens int, model string) *VisionResult {
	return &VisionResult{
		Text:         text,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Model:        model,
		ProcessedAt:  time.Now(),
	}
}

// TotalTokens 合計トークン数を返す
func (r *VisionResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}
