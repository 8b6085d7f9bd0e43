package httpflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantora/coinsentry/internal/service/flow"
)

var _ flow.Service = (*Service)(nil)

// Service 通过 REST 接口拉取交易所资金流统计
type Service struct {
	baseURL string
	apiKey  string
	cli     *http.Client
}

func NewService(baseURL, apiKey string) *Service {
	return &Service{
		baseURL: baseURL,
		apiKey:  apiKey,
		cli: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type flowResponse struct {
	Statistics struct {
		Total24h          string `json:"total24h"`
		WhaleVolume       string `json:"whaleVolume"`
		WhaleTransactions int64  `json:"whaleTransactions"`
		NetBalance        string `json:"netBalance"`
	} `json:"statistics"`
}

func (s *Service) GetExchangeFlow(ctx context.Context, direction flow.Direction, req flow.Request) (flow.Stats, error) {
	q := url.Values{}
	q.Set("asset", req.Asset)
	if req.Exchange != "" {
		q.Set("exchange", req.Exchange)
	}
	if req.Window > 0 {
		q.Set("window", req.Window.String())
	}

	endpoint := fmt.Sprintf("%s/v1/flows/%s?%s", s.baseURL, direction, q.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return flow.Stats{}, err
	}
	if s.apiKey != "" {
		httpReq.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.cli.Do(httpReq)
	if err != nil {
		return flow.Stats{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return flow.Stats{}, fmt.Errorf("flow api returned status %d", resp.StatusCode)
	}

	var body flowResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return flow.Stats{}, fmt.Errorf("decode flow response: %w", err)
	}
	return convertStats(body)
}

func convertStats(body flowResponse) (flow.Stats, error) {
	total, err := decimal.NewFromString(body.Statistics.Total24h)
	if err != nil {
		return flow.Stats{}, fmt.Errorf("parse total24h: %w", err)
	}
	whale, err := decimal.NewFromString(body.Statistics.WhaleVolume)
	if err != nil {
		return flow.Stats{}, fmt.Errorf("parse whaleVolume: %w", err)
	}
	net, err := decimal.NewFromString(body.Statistics.NetBalance)
	if err != nil {
		return flow.Stats{}, fmt.Errorf("parse netBalance: %w", err)
	}
	return flow.Stats{
		Total24h:          total,
		WhaleVolume:       whale,
		WhaleTransactions: body.Statistics.WhaleTransactions,
		NetBalance:        net,
	}, nil
}
