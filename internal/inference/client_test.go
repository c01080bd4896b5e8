package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brightpath/wellbeing-worker/internal/logger"
)

func clientLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func TestClientClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		results := make([]Result, len(req.Inputs))
		for i := range req.Inputs {
			results[i] = Result{
				Prediction:    "Struggling",
				Probabilities: map[string]float64{"Struggling": 0.8, "Thriving": 0.2},
			}
		}
		json.NewEncoder(w).Encode(classifyResponse{Results: results})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: time.Second}, clientLog(t))
	results, err := c.Classify(context.Background(), [][]float64{{1, 0}, {0, 1}}, 1)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Prediction != "Struggling" {
		t.Fatalf("prediction = %q, want Struggling", results[0].Prediction)
	}
}

func TestClientRetriesOn503(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(classifyResponse{Results: []Result{{Prediction: "Thriving"}}})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 3, RetryDelay: time.Millisecond}, clientLog(t))
	results, err := c.Classify(context.Background(), [][]float64{{1}}, 1)
	if err != nil {
		t.Fatalf("Classify returned error after retries: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("server hit %d times, want 3", got)
	}
}

func TestClientDoesNotRetryOn400(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 3, RetryDelay: time.Millisecond}, clientLog(t))
	_, err := c.Classify(context.Background(), [][]float64{{1}}, 1)
	if err == nil {
		t.Fatal("Classify should fail on 400")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("server hit %d times, want 1", got)
	}
}

func TestClientRejectsLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{Results: []Result{{Prediction: "Thriving"}}})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: time.Second}, clientLog(t))
	if _, err := c.Classify(context.Background(), [][]float64{{1}, {2}}, 1); err == nil {
		t.Fatal("Classify should fail when result count does not match input count")
	}
}

func TestClientEmptyBatchSkipsRequest(t *testing.T) {
	c := New(Options{BaseURL: "http://localhost:1"}, clientLog(t))
	results, err := c.Classify(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("empty batch should not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}
