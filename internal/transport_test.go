package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTransport_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("custom header not forwarded")
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("X-Test", "1")
	resp, err := NewTransport(time.Second).Get(context.Background(), srv.URL, header)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var body struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(resp, &body); err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if !body.OK || resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewTransport(time.Second).Get(context.Background(), url, nil)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %v, want ConnectionError", err)
	}
	if connErr.URL != url {
		t.Errorf("URL = %q, want %q", connErr.URL, url)
	}
	if !strings.HasPrefix(err.Error(), "Connection Error:") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	tr := NewTransport(50 * time.Millisecond)
	if tr.Timeout() != 50*time.Millisecond {
		t.Errorf("Timeout() = %v", tr.Timeout())
	}

	start := time.Now()
	_, err := tr.Post(context.Background(), srv.URL, []byte(`{}`), "application/json", nil)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %v, want ConnectionError", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not honoured, took %v", elapsed)
	}
}

func TestTransport_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	_, err := NewTransport(time.Second).Get(context.Background(), srv.URL, nil)
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("error = %v, want ServerError", err)
	}
	if serverErr.StatusCode != 500 || serverErr.Body != "internal error" {
		t.Errorf("ServerError = %+v", serverErr)
	}
	if err.Error() != "Error from server: 500 - internal error" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	err := DecodeJSON(&Response{URL: "http://x", Body: []byte("<html>")}, &struct{}{})
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedResponseError", err)
	}
	if malformed.Body != "<html>" {
		t.Errorf("Body = %q", malformed.Body)
	}
}

func TestNewTransport_DefaultTimeout(t *testing.T) {
	if got := NewTransport(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", got, DefaultTimeout)
	}
}
