package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/bobvalue/lookup"
	"github.com/sig-0/bobvalue/valuation"
)

const maxBodySize = 1 << 16

var (
	errInvalidBody               = errors.New("invalid request body")
	errUnableToFetchOfficialRate = errors.New("unable to fetch official rate, enter it manually")
)

// Valuation computes a valuation from a JSON body
func (s *Server) Valuation(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		s.logger.Debug(
			"unable to decode valuation request",
			"err", err,
		)

		s.rejectValuation(w, errInvalidBody)

		return
	}

	// The body must hold a single JSON object
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		s.rejectValuation(w, errInvalidBody)

		return
	}

	s.writeValuation(w, req)
}

// ValuationQuery computes a valuation from query parameters
func (s *Server) ValuationQuery(w http.ResponseWriter, r *http.Request) {
	var (
		amountParam   = r.URL.Query().Get(valuation.FieldInitialBOBAmount)
		p2pParam      = r.URL.Query().Get(valuation.FieldP2PRate)
		officialParam = r.URL.Query().Get(valuation.FieldOfficialRate)
		balanceParam  = r.URL.Query().Get(valuation.FieldUSDTBalance)

		req ValuationRequest
	)

	// Parse the USDT balance (optional)
	if strings.TrimSpace(balanceParam) != "" {
		balance, err := parseNumber(valuation.FieldUSDTBalance, balanceParam)
		if err != nil {
			s.rejectValuation(w, err)

			return
		}

		req.USDTBalance = &balance
	}

	// Parse the initial BOB amount
	amount, err := parseNumber(valuation.FieldInitialBOBAmount, amountParam)
	if err != nil {
		s.rejectValuation(w, err)

		return
	}

	req.InitialBOBAmount = amount

	// Parse the P2P rate, not needed when valuing a balance
	if req.USDTBalance == nil || strings.TrimSpace(p2pParam) != "" {
		p2pRate, err := parseNumber(valuation.FieldP2PRate, p2pParam)
		if err != nil {
			s.rejectValuation(w, err)

			return
		}

		req.P2PRate = p2pRate
	}

	// Parse the official rate
	officialRate, err := parseNumber(valuation.FieldOfficialRate, officialParam)
	if err != nil {
		s.rejectValuation(w, err)

		return
	}

	req.OfficialRate = officialRate

	s.writeValuation(w, req)
}

// OfficialRate runs a single best-effort official rate lookup
func (s *Server) OfficialRate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	res, err := s.fetcher.FetchOfficialRate(r.Context())

	s.metrics.lookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.lookups.WithLabelValues(lookup.StateFailed.String()).Inc()

		s.logger.Warn(
			"unable to fetch official rate",
			"err", err,
		)

		writeError(
			w,
			http.StatusBadGateway,
			errUnableToFetchOfficialRate,
		)

		return
	}

	s.metrics.lookups.WithLabelValues(lookup.StateSucceeded.String()).Inc()

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeValuation(w http.ResponseWriter, req ValuationRequest) {
	var (
		res *valuation.Result
		err error
	)

	if req.USDTBalance != nil {
		res, err = valuation.ComputeFromBalance(
			req.InitialBOBAmount,
			*req.USDTBalance,
			req.OfficialRate,
		)
	} else {
		res, err = req.Compute()
	}

	if err != nil {
		s.rejectValuation(w, err)

		return
	}

	outcome := res.Outcome()
	s.metrics.valuations.WithLabelValues(outcome.String()).Inc()

	writeJSON(w, http.StatusOK, &ValuationResponse{
		Input:       req.Input,
		USDTBalance: req.USDTBalance,
		Result:      res,
		Display:     res.Rounded(valuation.DefaultPlaces),
		Outcome:     outcome,
	})
}

// rejectValuation counts and reports an invalid valuation request
func (s *Server) rejectValuation(w http.ResponseWriter, err error) {
	s.metrics.valuations.WithLabelValues(outcomeInvalid).Inc()

	writeError(w, http.StatusBadRequest, err)
}

func parseNumber(field, raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, &valuation.ValidationError{
			Field:  field,
			Reason: "is required",
		}
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &valuation.ValidationError{
			Field:  field,
			Reason: "must be a number",
		}
	}

	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	var vErr *valuation.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}

	writeJSON(w, status, resp)
}
