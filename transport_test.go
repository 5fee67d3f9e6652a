package main

import (
	"context"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTLSTestServer starts a TLS server and returns a transport that trusts
// its certificate. conns counts accepted connections.
func newTLSTestServer(t *testing.T, enableHTTP2 bool, handler http.HandlerFunc) (*httptest.Server, http.RoundTripper, *atomic.Int32) {
	t.Helper()
	conns := &atomic.Int32{}
	srv := httptest.NewUnstartedServer(handler)
	srv.EnableHTTP2 = enableHTTP2
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			conns.Add(1)
		}
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	tr, err := newTransport(getProfile("native"))
	if err != nil {
		t.Fatal(err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	tr.(*roundTripper).rootCAs = pool
	return srv, tr, conns
}

func TestNewTransport(t *testing.T) {
	t.Run("creates transport without error", func(t *testing.T) {
		tr, err := newTransport(getProfile("chrome"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr == nil {
			t.Fatal("expected non-nil transport")
		}
	})
}

func TestDoFetch(t *testing.T) {
	t.Run("plain http goes through HTTP/1.1 with extra headers", func(t *testing.T) {
		var proto, custom string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proto = r.Proto
			custom = r.Header.Get("X-Custom-Test")
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte("short and stout"))
		}))
		defer srv.Close()

		profile := getProfile("native")
		tr, err := newTransport(profile)
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, body, err := doFetch(ctx, tr, profile, "GET", srv.URL, [][2]string{{"X-Custom-Test", "loremtext"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusTeapot {
			t.Fatalf("non-2xx should not be an error here, got %d", resp.StatusCode)
		}
		if string(body) != "short and stout" {
			t.Fatalf("unexpected body: %q", body)
		}
		if proto != "HTTP/1.1" || custom != "loremtext" {
			t.Fatalf("unexpected proto %q or header %q", proto, custom)
		}
	})

	t.Run("stops after ten redirects", func(t *testing.T) {
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, srv.URL+"/again", http.StatusFound)
		}))
		defer srv.Close()

		profile := getProfile("native")
		tr, _ := newTransport(profile)
		if _, _, err := doFetch(context.Background(), tr, profile, "GET", srv.URL, nil); err == nil {
			t.Fatal("expected redirect loop error")
		}
	})
}

func TestHTTPSProtocolSelection(t *testing.T) {
	protoHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Proto))
	}

	t.Run("http/1.1-only server is served over HTTP/1.1", func(t *testing.T) {
		srv, tr, conns := newTLSTestServer(t, false, protoHandler)
		profile := getProfile("native")
		for i := 0; i < 2; i++ {
			resp, body, err := doFetch(context.Background(), tr, profile, "GET", srv.URL+"/markdown.txt", nil)
			if err != nil {
				t.Fatalf("request %d: unexpected error: %v", i, err)
			}
			if resp.StatusCode != http.StatusOK || string(body) != "HTTP/1.1" {
				t.Fatalf("request %d: got %d %q", i, resp.StatusCode, body)
			}
		}
		if n := conns.Load(); n != 1 {
			t.Fatalf("expected the negotiated connection to be reused, got %d connections", n)
		}
	})

	t.Run("h2 server is served over HTTP/2", func(t *testing.T) {
		srv, tr, conns := newTLSTestServer(t, true, protoHandler)
		_, body, err := doFetch(context.Background(), tr, getProfile("native"), "GET", srv.URL, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "HTTP/2.0" {
			t.Fatalf("expected HTTP/2.0, got %q", body)
		}
		if n := conns.Load(); n != 1 {
			t.Fatalf("expected a single connection, got %d", n)
		}
	})

	t.Run("markdown service over an http/1.1-only server", func(t *testing.T) {
		srv, tr, _ := newTLSTestServer(t, false, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# Lorem"))
		})
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		c.tr = tr
		c.markdownum = markdownumService(srv.URL + "/markdown.txt")
		text, err := c.request(context.Background(), c.markdownum, "GET", "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "# Lorem" {
			t.Fatalf("unexpected text: %q", text)
		}
	})
}
