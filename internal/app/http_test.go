package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient(7 * time.Second)
	if c.Timeout != 7*time.Second {
		t.Fatalf("timeout=%v, want 7s", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if tr.Proxy == nil {
		t.Fatalf("expected proxy from environment")
	}
	// Ensure we didn't return the default client's transport
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
}

func TestNewHTTPClient_DefaultTimeout(t *testing.T) {
	if c := newHTTPClient(0); c.Timeout != httpTimeoutDefault {
		t.Fatalf("timeout=%v, want %v", c.Timeout, httpTimeoutDefault)
	}
}
