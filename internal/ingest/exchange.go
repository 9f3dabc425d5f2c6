package ingest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tradepulse/tradepulse/internal/history"
	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/obslog"
	"github.com/tradepulse/tradepulse/internal/queue"
)

// Endpoint parameters, fixed at build time rather than exposed as flags or
// env vars.
const (
	exchangeHost     = "ws.okx.com"
	exchangePort     = "8443"
	exchangePath     = "/ws/v5/public"
	exchangeOrigin   = "https://www.okx.com"
	exchangeSubproto = "okx-protocol"
	caBundlePath     = "/etc/ssl/certs/ca-certificates.crt"

	tcpKeepaliveIdle     = 10 * time.Second
	tcpKeepaliveInterval = 5 * time.Second
	tcpKeepaliveCount    = 3

	initialBackoff = 2 * time.Second
	maxBackoff     = 60 * time.Second

	pingInterval      = 60 * time.Second
	inactivityTimeout = 90 * time.Second
	handshakeTimeout  = 10 * time.Second
)

type subscribeArg struct {
	Channel string `json:"channel"`
	InstId  string `json:"instId"`
}

type subscribeFrame struct {
	Op   string         `json:"op"`
	Args []subscribeArg `json:"args"`
}

func subscribeMessage() ([]byte, error) {
	frame := subscribeFrame{Op: "subscribe"}
	for _, s := range model.Symbols {
		frame.Args = append(frame.Args, subscribeArg{Channel: "trades", InstId: s})
	}
	return json.Marshal(frame)
}

// Supervisor owns the exchange connection lifecycle: connect, subscribe,
// heartbeat, disconnect detection, and backoff reconnect.
type Supervisor struct {
	queue     *queue.TradeQueue
	histories [model.NumSymbols]*history.SymbolHistory
	log       *obslog.Logger
	dialer    *websocket.Dialer
}

// NewSupervisor builds a connection supervisor fanning parsed trades into q
// and histories.
func NewSupervisor(q *queue.TradeQueue, histories [model.NumSymbols]*history.SymbolHistory, log *obslog.Logger) (*Supervisor, error) {
	tlsConfig, err := caBundleTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("loading CA bundle: %w", err)
	}

	dialer := &websocket.Dialer{
		NetDialContext: (&net.Dialer{
			Timeout: handshakeTimeout,
			KeepAliveConfig: net.KeepAliveConfig{
				Enable:   true,
				Idle:     tcpKeepaliveIdle,
				Interval: tcpKeepaliveInterval,
				Count:    tcpKeepaliveCount,
			},
		}).DialContext,
		TLSClientConfig:  tlsConfig,
		Subprotocols:     []string{exchangeSubproto},
		HandshakeTimeout: handshakeTimeout,
	}

	scoped := log.WithFields(zap.String("component", "exchange-supervisor"), zap.String("endpoint", exchangeHost))
	return &Supervisor{queue: q, histories: histories, log: scoped, dialer: dialer}, nil
}

func caBundleTLSConfig() (*tls.Config, error) {
	pem, err := os.ReadFile(caBundlePath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates parsed from %s", caBundlePath)
	}
	return &tls.Config{RootCAs: pool}, nil
}

func (s *Supervisor) endpointURL() string {
	return fmt.Sprintf("wss://%s:%s%s", exchangeHost, exchangePort, exchangePath)
}

// Run drives the Disconnected → Connecting → Connected(subscribed) →
// Disconnected cycle until ctx is cancelled, reconnecting with capped
// exponential backoff between attempts.
func (s *Supervisor) Run(ctx context.Context) {
	backoff := initialBackoff

	for ctx.Err() == nil {
		conn, err := s.connect(ctx)
		if err != nil {
			s.log.Sugar().Warnw("connect failed, backing off", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = initialBackoff
		s.runConnection(ctx, conn)
	}
}

func (s *Supervisor) connect(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Origin", exchangeOrigin)

	conn, _, err := s.dialer.DialContext(ctx, s.endpointURL(), header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// runConnection subscribes, pumps reads until disconnect or ctx
// cancellation, and always closes conn on return.
func (s *Supervisor) runConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	msg, err := subscribeMessage()
	if err != nil {
		s.log.Sugar().Errorw("failed to build subscribe frame", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		s.log.Sugar().Warnw("subscribe write failed", "error", err)
		return
	}

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(inactivityTimeout))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(inactivityTimeout))

	stopPing := make(chan struct{})
	pingDone := make(chan struct{})
	go s.pingLoop(conn, stopPing, pingDone)
	defer func() {
		close(stopPing)
		<-pingDone
	}()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Sugar().Infow("disconnected", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(inactivityTimeout))
		ParseFrame(payload, s.queue, s.histories)
	}
}

// pingLoop sends an empty PING frame every 60 s while the connection is
// writable; any write failure ends the loop and lets runConnection's read
// side observe the broken connection.
func (s *Supervisor) pingLoop(conn *websocket.Conn, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
