package client

import (
	"context"
	"fmt"
)

// RuleCondition is one clause of a screening rule.
type RuleCondition struct {
	Type     string  `json:"type"`
	Contains string  `json:"contains,omitempty"`
	Lab      string  `json:"lab,omitempty"`
	Operator string  `json:"operator,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

// Rule is a risk screening rule as published by the server.
type Rule struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	RiskLevel      string          `json:"risk_level"`
	Recommendation string          `json:"recommendation"`
	Conditions     []RuleCondition `json:"conditions"`
}

// AnalyzeRequest asks for a risk verdict, either for a stored record
// (RecordID) or for ad-hoc findings (Diseases and Labs).
type AnalyzeRequest struct {
	RecordID string      `json:"record_id,omitempty"`
	Diseases []string    `json:"diseases,omitempty"`
	Labs     []LabResult `json:"labs,omitempty"`
}

// ScreeningClient covers risk screening operations.
type ScreeningClient struct {
	client *Client
}

// Analyze evaluates the screening rules and returns the verdict.
func (s *ScreeningClient) Analyze(ctx context.Context, req AnalyzeRequest) (*ScreeningResult, error) {
	if req.RecordID == "" && len(req.Diseases) == 0 && len(req.Labs) == 0 {
		return nil, fmt.Errorf("medner: analyze needs a record id or findings")
	}
	var result ScreeningResult
	if err := s.client.post(ctx, "/api/v1/screening/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HighRisk lists records whose screening verdict is HIGH, newest first.
func (s *ScreeningClient) HighRisk(ctx context.Context, page, pageSize int) (*RecordPage, error) {
	q := pageQuery(page, pageSize)
	path := "/api/v1/screening/high-risk"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var rp RecordPage
	if err := s.client.getList(ctx, path, &rp.Records, &rp.Meta); err != nil {
		return nil, err
	}
	return &rp, nil
}

// Rules returns the active screening rule set.
func (s *ScreeningClient) Rules(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	if err := s.client.get(ctx, "/api/v1/screening/rules", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
