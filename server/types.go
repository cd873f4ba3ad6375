package server

import "github.com/sig-0/bobvalue/valuation"

// ValuationRequest is a valuation input, optionally valued from a current
// USDT balance instead of the amount bought at the P2P rate
type ValuationRequest struct {
	USDTBalance *float64 `json:"usdt_balance,omitempty"`

	valuation.Input
}

type ValuationResponse struct {
	Result      *valuation.Result `json:"result"`
	USDTBalance *float64          `json:"usdt_balance,omitempty"`
	Outcome     valuation.Outcome `json:"outcome"`
	Display     valuation.Display `json:"display"`
	Input       valuation.Input   `json:"input"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
