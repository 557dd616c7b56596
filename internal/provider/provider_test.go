package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nope")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	var unknown *UnknownProviderError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProviderError, got %T", err)
	}
	if unknown.Name != "nope" {
		t.Errorf("expected name %q, got %q", "nope", unknown.Name)
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	n := NewNoise("noise", 1)

	if err := r.Register(n); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register(n); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestScriptCycles(t *testing.T) {
	s, err := NewScript("script", []string{"one", "two"})
	if err != nil {
		t.Fatalf("new script: %v", err)
	}

	want := []string{"one", "two", "one"}
	for i, expected := range want {
		out, err := s.Generate(context.Background(), "p", GenSpec{})
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if out != expected {
			t.Errorf("call %d: expected %q, got %q", i, expected, out)
		}
	}
}

func TestScriptEmpty(t *testing.T) {
	if _, err := NewScript("script", nil); err == nil {
		t.Error("expected error for empty script")
	}
}

func TestNoiseSeededRepeatability(t *testing.T) {
	a := NewNoise("noise", 42)
	b := NewNoise("noise", 42)

	outA, _ := a.Generate(context.Background(), "p", GenSpec{})
	outB, _ := b.Generate(context.Background(), "p", GenSpec{})
	if outA != outB {
		t.Errorf("same seed produced different output:\n%q\n%q", outA, outB)
	}
	if len(strings.Fields(outA)) < 8 {
		t.Errorf("expected at least 8 tokens, got %q", outA)
	}
}

func TestHTTPGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"text":"generated output"}`))
	}))
	defer srv.Close()

	h := NewHTTP(HTTPConfig{Name: "remote", URL: srv.URL})
	out, err := h.Generate(context.Background(), "prompt", GenSpec{Model: "m1"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "generated output" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestHTTPGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewHTTP(HTTPConfig{URL: srv.URL})
	if _, err := h.Generate(context.Background(), "prompt", GenSpec{}); err == nil {
		t.Error("expected error on 503")
	}
}

func TestHTTPIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	h := NewHTTP(HTTPConfig{URL: srv.URL})
	if !h.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}

	srv.Close()
	if h.IsAvailable(context.Background()) {
		t.Error("expected provider to be unavailable after shutdown")
	}
}
