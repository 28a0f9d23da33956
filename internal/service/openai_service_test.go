package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"contaflow/pkg/config"

	"go.uber.org/zap"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty falls back to default", "", DefaultBaseURL},
		{"whitespace falls back to default", "   ", DefaultBaseURL},
		{"bare openai host gains scheme and v1", "api.openai.com", "https://api.openai.com/v1"},
		{"openai host with v1 kept", "api.openai.com/v1", "https://api.openai.com/v1"},
		{"openai host forced to https", "http://api.openai.com/v1", "https://api.openai.com/v1"},
		{"scheme added to localhost", "localhost:8787/v1", "https://localhost:8787/v1"},
		{"explicit http kept for localhost", "http://localhost:8787/v1", "http://localhost:8787/v1"},
		{"explicit http kept for loopback", "http://127.0.0.1:9090", "http://127.0.0.1:9090"},
		{"explicit http kept for .local", "http://llm.local/v1", "http://llm.local/v1"},
		{"http upgraded for public hosts", "http://example.com/v1", "https://example.com/v1"},
		{"trailing slash collapsed", "https://example.com/v1/", "https://example.com/v1"},
		{"duplicate slashes collapsed", "https://example.com//v1//api", "https://example.com/v1/api"},
		{"unsupported scheme falls back", "ftp://example.com/v1", DefaultBaseURL},
		{"unparsable falls back", "https://", DefaultBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBaseURL(tt.input); got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func newTestService(t *testing.T, handler http.Handler) (*OpenAIService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewOpenAIService(&config.OpenAIConfig{
		APIKey:     "test-key",
		SessionKey: "test-session",
		BaseURL:    server.URL,
		Model:      "gpt-4o-mini",
	}, zap.NewNop())
	return svc, server
}

func TestReadAPIError(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "rate limit exceeded"},
		})
	}))

	_, err := svc.ListModels(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
	if apiErr.Message != "rate limit exceeded" {
		t.Errorf("Message = %q, want rate limit exceeded", apiErr.Message)
	}
}

func TestReadAPIErrorRawBodyFallback(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))

	_, err := svc.ListModels(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("Message = %q, want raw body fallback", apiErr.Message)
	}
}

func TestGetCreditBalance(t *testing.T) {
	t.Run("parses the grant totals", func(t *testing.T) {
		svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/dashboard/billing/credit_grants" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(CreditBalance{TotalGranted: 120, TotalUsed: 20, TotalAvailable: 100})
		}))

		balance, err := svc.GetCreditBalance(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if balance.TotalAvailable != 100 {
			t.Errorf("TotalAvailable = %v, want 100", balance.TotalAvailable)
		}
	})

	balanceReason := func(t *testing.T, svc *OpenAIService, want string) {
		t.Helper()
		_, err := svc.GetCreditBalance(context.Background())
		var unavailable *BalanceUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected *BalanceUnavailableError, got %v", err)
		}
		if unavailable.Reason != want {
			t.Errorf("Reason = %q, want %q", unavailable.Reason, want)
		}
	}

	t.Run("missing session key", func(t *testing.T) {
		svc, _ := newTestService(t, http.NotFoundHandler())
		svc.sessionKey = ""
		balanceReason(t, svc, BalanceReasonSessionKeyRequired)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		balanceReason(t, svc, BalanceReasonForbidden)
	})

	t.Run("unsupported endpoint", func(t *testing.T) {
		svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		balanceReason(t, svc, BalanceReasonUnsupported)
	})
}

func TestTransportErrorKeepsCancellation(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ListModels(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
