package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/bobvalue/lookup"
	"github.com/sig-0/bobvalue/lookup/mock"
	"github.com/sig-0/bobvalue/valuation"
)

type fetchDelegate func(context.Context) (*lookup.Result, error)

type mockFetcher struct {
	fetchFn fetchDelegate
}

func (m *mockFetcher) FetchOfficialRate(ctx context.Context) (*lookup.Result, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}

func newTestServer(t *testing.T, fetcher RateFetcher) *Server {
	t.Helper()

	m, err := newMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	return &Server{
		fetcher: fetcher,
		logger:  noopLogger,
		metrics: m,
	}
}

func TestHandlers_Valuation(t *testing.T) {
	t.Parallel()

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader("{"))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid body is counted", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader("not json"))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.valuations.WithLabelValues(outcomeInvalid)))
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		body := `{"initial_bob_amount": 700, "p2p_rate": 6.96, "official_rate": 6.86} {"x": 1}`
		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, errInvalidBody.Error(), resp.Error)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.valuations.WithLabelValues(outcomeInvalid)))
	})

	t.Run("USDT balance", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		body := `{"initial_bob_amount": 700, "p2p_rate": 6.96, "official_rate": 6.86, "usdt_balance": 50}`
		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp ValuationResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Result)
		require.NotNil(t, resp.USDTBalance)

		expected, err := valuation.ComputeFromBalance(700, 50, 6.86)
		require.NoError(t, err)

		assert.Equal(t, 50.0, *resp.USDTBalance)
		assert.Equal(t, expected, resp.Result)
		assert.Equal(t, valuation.OutcomeLoss, resp.Outcome)
	})

	t.Run("non-positive USDT balance", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		body := `{"initial_bob_amount": 700, "official_rate": 6.86, "usdt_balance": 0}`
		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, valuation.FieldUSDTBalance, resp.Field)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		body := `{"initial_bob_amount": 700, "p2p_rate": 6.96, "official_rate": 6.86, "fee": 1}`
		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-positive rate", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		body := `{"initial_bob_amount": 700, "p2p_rate": 0, "official_rate": 6.86}`
		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, valuation.FieldP2PRate, resp.Field)
		assert.NotEmpty(t, resp.Error)

		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.valuations.WithLabelValues(outcomeInvalid)))
	})

	t.Run("loss", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		body := `{"initial_bob_amount": 700, "p2p_rate": 6.96, "official_rate": 6.86}`
		req := httptest.NewRequest(http.MethodPost, "/v1/valuation", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.Valuation(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp ValuationResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Result)

		assert.InDelta(t, 100.5747, resp.Result.USDTPurchased, 1e-4)
		assert.InDelta(t, 689.9425, resp.Result.AvailableBOBValue, 1e-4)
		assert.InDelta(t, -1.4368, resp.Result.PercentageChange, 1e-4)

		assert.Equal(t, valuation.OutcomeLoss, resp.Outcome)
		assert.Equal(t, "-1.44", resp.Display.PercentageChange)
		assert.Equal(t, 700.0, resp.Input.InitialBOBAmount)

		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.valuations.WithLabelValues("loss")))
	})
}

func TestHandlers_ValuationQuery(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name          string
		url           string
		expectedField string
	}{
		{
			"missing amount",
			"/v1/valuation?p2p_rate=6.96&official_rate=6.86",
			valuation.FieldInitialBOBAmount,
		},
		{
			"non-numeric P2P rate",
			"/v1/valuation?initial_bob_amount=700&p2p_rate=abc&official_rate=6.86",
			valuation.FieldP2PRate,
		},
		{
			"negative official rate",
			"/v1/valuation?initial_bob_amount=700&p2p_rate=6.96&official_rate=-6.86",
			valuation.FieldOfficialRate,
		},
		{
			"NaN amount",
			"/v1/valuation?initial_bob_amount=NaN&p2p_rate=6.96&official_rate=6.86",
			valuation.FieldInitialBOBAmount,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t, &mockFetcher{})

			req := httptest.NewRequest(http.MethodGet, testCase.url, http.NoBody)
			w := httptest.NewRecorder()

			s.ValuationQuery(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse

			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, testCase.expectedField, resp.Field)
		})
	}

	t.Run("USDT balance without P2P rate", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		url := "/v1/valuation?initial_bob_amount=700&usdt_balance=103&official_rate=6.86"
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
		w := httptest.NewRecorder()

		s.ValuationQuery(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp ValuationResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Result)

		expected, err := valuation.ComputeFromBalance(700, 103, 6.86)
		require.NoError(t, err)

		assert.Equal(t, expected, resp.Result)
		assert.Equal(t, valuation.OutcomeGain, resp.Outcome)
	})

	t.Run("non-numeric USDT balance", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		url := "/v1/valuation?initial_bob_amount=700&usdt_balance=lots&official_rate=6.86"
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
		w := httptest.NewRecorder()

		s.ValuationQuery(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, valuation.FieldUSDTBalance, resp.Field)
	})

	t.Run("break-even is a gain", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &mockFetcher{})

		url := "/v1/valuation?initial_bob_amount=1000&p2p_rate=7&official_rate=7"
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
		w := httptest.NewRecorder()

		s.ValuationQuery(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp ValuationResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Result)

		assert.Equal(t, 1000.0, resp.Result.AvailableBOBValue)
		assert.Equal(t, 0.0, resp.Result.PercentageChange)
		assert.Equal(t, valuation.OutcomeGain, resp.Outcome)
		assert.Equal(t, "142.86", resp.Display.USDTPurchased)
	})
}

func TestHandlers_OfficialRate(t *testing.T) {
	t.Parallel()

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, lookup.New(&mock.Model{
			GenerateFn: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("boom")
			},
		}))

		req := httptest.NewRequest(http.MethodGet, "/v1/rates/official", http.NoBody)
		w := httptest.NewRecorder()

		s.OfficialRate(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, errUnableToFetchOfficialRate.Error(), resp.Error)

		assert.Equal(
			t,
			1.0,
			testutil.ToFloat64(s.metrics.lookups.WithLabelValues(lookup.StateFailed.String())),
		)
	})

	t.Run("malformed model reply", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, lookup.New(&mock.Model{
			GenerateFn: func(_ context.Context, _ string) (string, error) {
				return "I am not sure", nil
			},
		}))

		req := httptest.NewRequest(http.MethodGet, "/v1/rates/official", http.NoBody)
		w := httptest.NewRecorder()

		s.OfficialRate(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, lookup.New(&mock.Model{
			GenerateFn: func(_ context.Context, _ string) (string, error) {
				return `{"exchangeRate": 6.96}`, nil
			},
		}, lookup.WithSource("gemini/test")))

		req := httptest.NewRequest(http.MethodGet, "/v1/rates/official", http.NoBody)
		w := httptest.NewRecorder()

		s.OfficialRate(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp lookup.Result

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		assert.Equal(t, 6.96, resp.ExchangeRate)
		assert.Equal(t, "gemini/test", resp.Source)

		assert.Equal(
			t,
			1.0,
			testutil.ToFloat64(s.metrics.lookups.WithLabelValues(lookup.StateSucceeded.String())),
		)
	})
}
