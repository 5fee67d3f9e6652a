package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := newClient(clientConfig{
		LoripsumURL:   srv.URL + "/api",
		MarkdownumURL: srv.URL + "/lorem-markdownum/markdown.txt",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	return c, srv
}

func TestServiceEndpoint(t *testing.T) {
	t.Run("path services ignore params", func(t *testing.T) {
		s := loripsumService("http://loripsum.net/api")
		got := s.endpoint("/3/short/prude/plaintext", url.Values{"x": {"1"}})
		if got != "http://loripsum.net/api/3/short/prude/plaintext" {
			t.Fatalf("unexpected endpoint: %s", got)
		}
	})

	t.Run("query services encode params", func(t *testing.T) {
		s := markdownumService(defaultMarkdownumURL)
		got := s.endpoint("", url.Values{"num-blocks": {"4"}, "no-code": {"on"}})
		want := defaultMarkdownumURL + "?no-code=on&num-blocks=4"
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})
}

func TestClientRequest(t *testing.T) {
	t.Run("returns body verbatim", func(t *testing.T) {
		var gotPath string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte("Lorem ipsum dolor sit amet.\n\n"))
		})
		text, err := c.request(context.Background(), c.loripsum, "GET", "/3/short/prude/plaintext", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "Lorem ipsum dolor sit amet.\n\n" {
			t.Fatalf("unexpected text: %q", text)
		}
		if gotPath != "/api/3/short/prude/plaintext" {
			t.Fatalf("unexpected path: %s", gotPath)
		}
	})

	t.Run("sends query params to markdown service", func(t *testing.T) {
		var gotQuery url.Values
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Write([]byte("# Lorem"))
		})
		params := url.Values{"num-blocks": {"2"}, "no-lists": {"on"}}
		if _, err := c.request(context.Background(), c.markdownum, "GET", "", params); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotQuery.Get("num-blocks") != "2" || gotQuery.Get("no-lists") != "on" {
			t.Fatalf("unexpected query: %v", gotQuery)
		}
	})

	t.Run("sends profile headers", func(t *testing.T) {
		var ua string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
		})
		if _, err := c.request(context.Background(), c.loripsum, "GET", "/1/short", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(ua, "loremtext/") {
			t.Fatalf("unexpected User-Agent: %q", ua)
		}
	})
}

func TestClientErrors(t *testing.T) {
	t.Run("structured error body becomes ServiceError", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "bad request"}`))
		})
		_, err := c.request(context.Background(), c.loripsum, "GET", "/0/short", nil)
		var se *ServiceError
		if !errors.As(err, &se) {
			t.Fatalf("expected ServiceError, got %T: %v", err, err)
		}
		msg := err.Error()
		if msg != "Loripsum error response [400]: bad request" {
			t.Fatalf("unexpected message: %q", msg)
		}
	})

	t.Run("markdown service name in message", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"code": 7}}`))
		})
		_, err := c.request(context.Background(), c.markdownum, "GET", "", nil)
		if err == nil || !strings.HasPrefix(err.Error(), "Lorem Markdownum error response [500]: ") {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(err.Error(), `"code"`) {
			t.Fatalf("expected raw error object in message: %v", err)
		}
	})

	t.Run("unstructured failure is a StatusError", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		})
		_, err := c.request(context.Background(), c.loripsum, "GET", "/1/short", nil)
		var st *StatusError
		if !errors.As(err, &st) {
			t.Fatalf("expected StatusError, got %T: %v", err, err)
		}
		if st.StatusCode != http.StatusBadGateway || !strings.Contains(err.Error(), "upstream down") {
			t.Fatalf("unexpected StatusError: %v", err)
		}
	})

	t.Run("long status body is cut on a rune boundary", func(t *testing.T) {
		err := &StatusError{StatusCode: http.StatusBadGateway, Body: strings.Repeat("é", 300)}
		msg := err.Error()
		if !utf8.ValidString(msg) {
			t.Fatalf("message is not valid UTF-8: %q", msg)
		}
		want := "unexpected status 502: " + strings.Repeat("é", maxStatusBody) + "..."
		if msg != want {
			t.Fatalf("unexpected message length %d", len(msg))
		}
	})

	t.Run("transport failure is returned unchanged", func(t *testing.T) {
		c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()
		_, err := c.request(context.Background(), c.loripsum, "GET", "/1/short", nil)
		if err == nil {
			t.Fatal("expected error from closed server")
		}
		var se *ServiceError
		var st *StatusError
		if errors.As(err, &se) || errors.As(err, &st) {
			t.Fatalf("transport error was normalized: %v", err)
		}
		var opErr *net.OpError
		if !errors.As(err, &opErr) {
			t.Fatalf("expected a net.OpError in chain, got %T: %v", err, err)
		}
	})
}

func TestClientDecodesBodies(t *testing.T) {
	const text = "Lorem ipsum dolor sit amet, consectetur adipiscing elit."

	encoders := map[string]func(t *testing.T) []byte{
		"gzip": func(t *testing.T) []byte {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write([]byte(text))
			zw.Close()
			return buf.Bytes()
		},
		"br": func(t *testing.T) []byte {
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte(text))
			bw.Close()
			return buf.Bytes()
		},
		"zstd": func(t *testing.T) []byte {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				t.Fatalf("zstd writer: %v", err)
			}
			defer enc.Close()
			return enc.EncodeAll([]byte(text), nil)
		},
	}

	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			payload := encode(t)
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", name)
				w.Write(payload)
			})
			got, err := c.request(context.Background(), c.loripsum, "GET", "/1/short", nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != text {
				t.Fatalf("expected %q, got %q", text, got)
			}
		})
	}
}
