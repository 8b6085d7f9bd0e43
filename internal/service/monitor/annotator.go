package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantora/coinsentry/internal/service/llm"
)

type llmAnnotator struct {
	llmSvc llm.Service
}

// NewLLMAnnotator 用大模型给技术信号配一句点评
func NewLLMAnnotator(llmSvc llm.Service) Annotator {
	return &llmAnnotator{
		llmSvc: llmSvc,
	}
}

func (a *llmAnnotator) Annotate(ctx context.Context, sig Signal) (string, error) {
	prompt := fmt.Sprintf("交易对 %s 刚出现 %s 信号, 当前价格 %s, 指标值 %s. "+
		"请用一句话点评这个信号对短线交易者意味着什么, 纯文本, 不要换行.",
		sig.Symbol, sig.Kind, sig.Price, sig.Value)

	answer, err := a.llmSvc.AskOnce(ctx, llm.Question{Content: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer.Content), nil
}
