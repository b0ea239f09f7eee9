package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/webtransport-go"
)

// Transporter is the demo's narrow contract for shipping and receiving raw
// engine datagrams. Both the primary WebTransport path and the alternate
// WebRTC path implement it, so main.go doesn't care which one is live.
type Transporter interface {
	Send(pkt []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

const dialTimeout = 10 * time.Second

// webtransportConn is the demo's primary transport: one WebTransport
// session carrying every JOIN/VOICE packet as an unreliable datagram.
type webtransportConn struct {
	mu   sync.Mutex
	sess *webtransport.Session
}

// DialWebTransport opens a WebTransport session against addr (host:port).
// The demo trusts a self-signed cert for local testing only.
func DialWebTransport(ctx context.Context, addr string) (*webtransportConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	d := webtransport.Dialer{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec — demo-only self-signed cert
		QUICConfig: &quic.Config{
			EnableDatagrams: true,
		},
	}

	_, sess, err := d.Dial(dialCtx, "https://"+addr, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("webtransport dial: %w", err)
	}
	return &webtransportConn{sess: sess}, nil
}

func (c *webtransportConn) Send(pkt []byte) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return fmt.Errorf("webtransport: not connected")
	}
	return sess.SendDatagram(pkt)
}

func (c *webtransportConn) Recv(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return nil, fmt.Errorf("webtransport: not connected")
	}
	return sess.ReceiveDatagram(ctx)
}

func (c *webtransportConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.CloseWithError(0, "disconnect")
}
