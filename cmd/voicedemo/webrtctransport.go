package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
)

// webrtcConn is the demo's alternate transport: engine packets ride an
// unreliable, unordered WebRTC DataChannel instead of a QUIC datagram.
// Session negotiation (SDP offer/answer) happens over a plain WebSocket,
// since WebRTC itself has no signalling channel of its own.
type webrtcConn struct {
	pc *webrtc.PeerConnection
	dc *webrtc.DataChannel

	mu      sync.Mutex
	inbox   chan []byte
	closeCh chan struct{}
}

type sdpMessage struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// DialWebRTC negotiates a PeerConnection with signalURL over WebSocket and
// returns a Transporter backed by a single unordered, unreliable
// DataChannel ("voice").
func DialWebRTC(ctx context.Context, signalURL string) (*webrtcConn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, signalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("webrtc signalling dial: %w", err)
	}
	defer ws.Close()

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}

	ordered := false
	maxRetransmits := uint16(0) // voice tolerates loss; never retransmit stale audio
	dc, err := pc.CreateDataChannel("voice", &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create data channel: %w", err)
	}

	conn := &webrtcConn{
		pc:      pc,
		dc:      dc,
		inbox:   make(chan []byte, 256),
		closeCh: make(chan struct{}),
	}

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		select {
		case conn.inbox <- msg.Data:
		default:
			// Drop under backpressure: a stale voice frame is worse than none.
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return nil, fmt.Errorf("set local description: %w", err)
	}

	if err := ws.WriteJSON(sdpMessage{Type: "offer", SDP: offer.SDP}); err != nil {
		pc.Close()
		return nil, fmt.Errorf("send offer: %w", err)
	}

	var answer sdpMessage
	if err := ws.ReadJSON(&answer); err != nil {
		pc.Close()
		return nil, fmt.Errorf("read answer: %w", err)
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer.SDP,
	}); err != nil {
		pc.Close()
		return nil, fmt.Errorf("set remote description: %w", err)
	}

	return conn, nil
}

func (c *webrtcConn) Send(pkt []byte) error {
	return c.dc.Send(pkt)
}

func (c *webrtcConn) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data := <-c.inbox:
		return data, nil
	case <-c.closeCh:
		return nil, fmt.Errorf("webrtc: closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *webrtcConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.closeCh:
	default:
		close(c.closeCh)
	}
	return c.pc.Close()
}
