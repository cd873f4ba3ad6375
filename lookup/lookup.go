package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// RateField is the JSON key the model is asked to reply with
const RateField = "exchangeRate"

// OfficialRatePrompt asks for the official rate, not a P2P market rate
const OfficialRatePrompt = `What is the current official BOB/USDT exchange rate ` +
	`(Bolivian bolivianos per 1 USDT), as set by the Banco Central de Bolivia? ` +
	`Do not use peer-to-peer (P2P) market rates such as Binance P2P. ` +
	`Reply only with a JSON object of the form {"` + RateField + `": <number>}.`

const (
	defaultSource = "model"
	jsonFenceTag  = "json"
)

// Result is a best-effort snapshot of the official rate.
// It is advisory only, and carries no freshness guarantee
type Result struct {
	FetchedAt    time.Time `json:"fetched_at"`
	Source       string    `json:"source"`
	ExchangeRate float64   `json:"exchange_rate"`
}

// Lookup queries a generative model for the official BOB/USDT rate.
// Every call is a single attempt, there are no retries
type Lookup struct {
	model  Model
	logger *slog.Logger

	source  string
	timeout time.Duration
}

// New creates a new Lookup backed by the given model
func New(model Model, opts ...Option) *Lookup {
	if model == nil {
		model = UnavailableModel()
	}

	l := &Lookup{
		model:  model,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		source: defaultSource,
	}

	// Apply the options
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// FetchOfficialRate asks the model for the current official rate [BLOCKING].
// Any failure is returned as a *FailureError
func (l *Lookup) FetchOfficialRate(ctx context.Context) (*Result, error) {
	if l.timeout > 0 {
		var cancelFn context.CancelFunc

		ctx, cancelFn = context.WithTimeout(ctx, l.timeout)
		defer cancelFn()
	}

	reply, err := l.model.Generate(ctx, OfficialRatePrompt)
	if err != nil {
		l.logger.Warn(
			"unable to query model for official rate",
			"source", l.source,
			"err", err,
		)

		return nil, &FailureError{Op: "query model", Err: err}
	}

	rate, err := parseRate(reply)
	if err != nil {
		l.logger.Warn(
			"unable to parse model reply",
			"source", l.source,
			"reply", reply,
			"err", err,
		)

		return nil, &FailureError{Op: "parse reply", Err: err}
	}

	l.logger.Info(
		"fetched official rate",
		"source", l.source,
		"rate", rate,
	)

	return &Result{
		FetchedAt:    time.Now().UTC(),
		Source:       l.source,
		ExchangeRate: rate,
	}, nil
}

// parseRate extracts the rate from the model reply.
// The reply is expected to be {"exchangeRate": <number>}, optionally
// wrapped in a markdown code fence. A bare number is accepted as well
func parseRate(reply string) (float64, error) {
	s := stripCodeFence(reply)
	if s == "" {
		return 0, errEmptyReply
	}

	var rate float64

	if strings.HasPrefix(s, "{") {
		var payload map[string]json.RawMessage

		if err := json.Unmarshal([]byte(s), &payload); err != nil {
			return 0, fmt.Errorf("unable to decode reply: %w", err)
		}

		raw, ok := payload[RateField]
		if !ok || string(raw) == "null" {
			return 0, errMissingRate
		}

		if err := json.Unmarshal(raw, &rate); err != nil {
			return 0, fmt.Errorf("unable to decode %s: %w", RateField, err)
		}
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errInvalidReply
		}

		rate = v
	}

	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, errInvalidRate
	}

	return rate, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence, if any
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")

	// The language tag is matched case-insensitively ("json", "JSON")
	if len(s) >= len(jsonFenceTag) && strings.EqualFold(s[:len(jsonFenceTag)], jsonFenceTag) {
		s = s[len(jsonFenceTag):]
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
