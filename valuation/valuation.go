package valuation

import "math"

const (
	FieldInitialBOBAmount = "initial_bob_amount"
	FieldP2PRate          = "p2p_rate"
	FieldOfficialRate     = "official_rate"
	FieldUSDTBalance      = "usdt_balance"
)

type Outcome string

const (
	OutcomeGain Outcome = "gain"
	OutcomeLoss Outcome = "loss"
)

func (o Outcome) String() string {
	return string(o)
}

// Input is a single valuation request
type Input struct {
	InitialBOBAmount float64 `json:"initial_bob_amount"`
	P2PRate          float64 `json:"p2p_rate"`
	OfficialRate     float64 `json:"official_rate"`
}

// Validate makes sure every field is a finite, strictly positive number
func (i Input) Validate() error {
	if err := checkPositive(FieldInitialBOBAmount, i.InitialBOBAmount); err != nil {
		return err
	}

	if err := checkPositive(FieldP2PRate, i.P2PRate); err != nil {
		return err
	}

	return checkPositive(FieldOfficialRate, i.OfficialRate)
}

// Result is the derived valuation. It has no identity of its own,
// and is recomputed on every request
type Result struct {
	USDTPurchased     float64 `json:"usdt_purchased"`
	AvailableBOBValue float64 `json:"available_bob_value"`
	PercentageChange  float64 `json:"percentage_change"`
}

// Outcome classifies the result as a gain or a loss
func (r *Result) Outcome() Outcome {
	return Classify(r.PercentageChange)
}

// Compute values the USDT bought at the P2P rate using the official rate
func Compute(initialBOBAmount, p2pRate, officialRate float64) (*Result, error) {
	in := Input{
		InitialBOBAmount: initialBOBAmount,
		P2PRate:          p2pRate,
		OfficialRate:     officialRate,
	}

	return in.Compute()
}

// Compute validates the input and runs the valuation
func (i Input) Compute() (*Result, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}

	usdtPurchased := i.InitialBOBAmount / i.P2PRate

	return value(i.InitialBOBAmount, usdtPurchased, i.OfficialRate), nil
}

// ComputeFromBalance values a current USDT balance (which may differ from
// the amount originally purchased) against the BOB initially spent
func ComputeFromBalance(initialBOBAmount, usdtBalance, officialRate float64) (*Result, error) {
	if err := checkPositive(FieldInitialBOBAmount, initialBOBAmount); err != nil {
		return nil, err
	}

	if err := checkPositive(FieldUSDTBalance, usdtBalance); err != nil {
		return nil, err
	}

	if err := checkPositive(FieldOfficialRate, officialRate); err != nil {
		return nil, err
	}

	return value(initialBOBAmount, usdtBalance, officialRate), nil
}

// Classify returns OutcomeLoss only for strictly negative changes
func Classify(percentageChange float64) Outcome {
	if percentageChange < 0 {
		return OutcomeLoss
	}

	return OutcomeGain
}

// value keeps the evaluation order fixed, results depend on it.
// The explicit conversion rounds the product so it is never fused
// into the subtraction that follows
func value(initialBOBAmount, usdt, officialRate float64) *Result {
	availableBOBValue := float64(usdt * officialRate)
	percentageChange := ((availableBOBValue - initialBOBAmount) / initialBOBAmount) * 100

	return &Result{
		USDTPurchased:     usdt,
		AvailableBOBValue: availableBOBValue,
		PercentageChange:  percentageChange,
	}
}

func checkPositive(field string, v float64) error {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return &ValidationError{
			Field:  field,
			Value:  v,
			Reason: "must be a finite number",
		}
	case v <= 0:
		return &ValidationError{
			Field:  field,
			Value:  v,
			Reason: "must be positive",
		}
	}

	return nil
}
