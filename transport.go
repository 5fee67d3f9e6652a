package main

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// roundTripper uses uTLS to establish TLS connections with the profile's
// fingerprint. HTTPS goes over whichever protocol the server picked during
// ALPN, plain HTTP over HTTP/1.1.
type roundTripper struct {
	profile BrowserProfile
	rootCAs *x509.CertPool // nil means the system roots
	h2      *http2.Transport
	h1      *http.Transport

	mu      sync.Mutex
	protos  map[string]string   // negotiated ALPN protocol per host:port
	pending map[string]net.Conn // handshaken conns waiting for a transport
}

// newTransport creates a new http.RoundTripper that uses uTLS with the
// given profile's TLS ClientHello fingerprint.
func newTransport(profile BrowserProfile) (http.RoundTripper, error) {
	rt := &roundTripper{
		profile: profile,
		protos:  make(map[string]string),
		pending: make(map[string]net.Conn),
	}

	// The *tls.Config parameter is ignored since uTLS builds its own.
	rt.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return rt.dialTLS(ctx, network, addr)
		},
	}

	rt.h1 = &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return rt.dialTLS(ctx, network, addr)
		},
	}

	return rt, nil
}

// dialTLS creates a uTLS connection with the profile's fingerprint and
// records the protocol the server chose. A connection dialed by RoundTrip
// to learn that protocol is handed out first.
func (rt *roundTripper) dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	rt.mu.Lock()
	if conn, ok := rt.pending[addr]; ok {
		delete(rt.pending, addr)
		rt.mu.Unlock()
		return conn, nil
	}
	rt.mu.Unlock()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{}
	tcpConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	tlsConn := utls.UClient(tcpConn, &utls.Config{
		ServerName: host,
		NextProtos: []string{"h2", "http/1.1"},
		RootCAs:    rt.rootCAs,
	}, rt.profile.TLSHello)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		tcpConn.Close()
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}

	rt.mu.Lock()
	rt.protos[addr] = tlsConn.ConnectionState().NegotiatedProtocol
	rt.mu.Unlock()
	return tlsConn, nil
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return rt.h1.RoundTrip(req)
	}

	port := req.URL.Port()
	if port == "" {
		port = "443"
	}
	addr := net.JoinHostPort(req.URL.Hostname(), port)

	rt.mu.Lock()
	proto, known := rt.protos[addr]
	rt.mu.Unlock()
	if !known {
		conn, err := rt.dialTLS(req.Context(), "tcp", addr)
		if err != nil {
			return nil, err
		}
		rt.mu.Lock()
		if old, ok := rt.pending[addr]; ok {
			old.Close()
		}
		rt.pending[addr] = conn
		proto = rt.protos[addr]
		rt.mu.Unlock()
	}

	if proto == http2.NextProtoTLS {
		return rt.h2.RoundTrip(req)
	}
	return rt.h1.RoundTrip(req)
}

// doFetch performs a bodiless request with the profile's headers and
// returns the decoded response body. Non-2xx responses are not errors here.
func doFetch(ctx context.Context, tr http.RoundTripper, profile BrowserProfile, method, targetURL string, extraHeaders [][2]string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return nil, nil, err
	}

	for _, h := range profile.Headers {
		req.Header.Set(h[0], h[1])
	}
	for _, h := range extraHeaders {
		req.Header.Set(h[0], h[1])
	}

	client := &http.Client{
		Transport: tr,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp)
	if err != nil {
		return resp, nil, err
	}
	return resp, respBody, nil
}

// readBody reads resp.Body, undoing any Content-Encoding we advertised.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode failed: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd decode failed: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return body, nil
}
