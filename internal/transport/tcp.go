package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

const (
	DefaultTCPPort = 2947

	tcpDialTimeout  = 6 * time.Second
	tcpPollInterval = 300 * time.Millisecond
)

// gpsdWatchNMEA asks gpsd to stream raw NMEA sentences to this client.
const gpsdWatchNMEA = `?WATCH={"enable":true,"nmea":true};` + "\n"

// TCPTransport reads NMEA from a network socket: gpsd or a receiver that
// shares its output over TCP.
type TCPTransport struct {
	host      string
	port      int
	gpsdWatch bool

	mu     sync.Mutex
	conn   net.Conn
	reader *sentenceReader
}

func NewTCPTransport(host string, port int, gpsdWatch bool) *TCPTransport {
	if port == 0 {
		port = DefaultTCPPort
	}

	return &TCPTransport{host: host, port: port, gpsdWatch: gpsdWatch}
}

func (t *TCPTransport) Name() string {
	return "tcp"
}

func (t *TCPTransport) StatusTarget() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.targetLocked()
}

func (t *TCPTransport) targetLocked() string {
	if t.host == "" {
		return ""
	}

	return net.JoinHostPort(t.host, fmt.Sprintf("%d", t.port))
}

func (t *TCPTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn != nil
}

func (t *TCPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	target := t.targetLocked()
	logger := transportLogger("tcp", "target", target)

	if t.conn != nil {
		logger.Debug("connect skipped: already connected")

		return nil
	}
	if t.host == "" {
		logger.Warn("connect failed: host is empty")

		return errors.New("tcp host is empty")
	}

	dialer := net.Dialer{Timeout: tcpDialTimeout}
	logger.Info("connecting")
	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		logger.Warn("connect failed", "error", err)

		return fmt.Errorf("dial tcp: %w", err)
	}
	if t.gpsdWatch {
		_ = conn.SetWriteDeadline(time.Now().Add(tcpDialTimeout))
		if _, err := conn.Write([]byte(gpsdWatchNMEA)); err != nil {
			_ = conn.Close()
			logger.Warn("gpsd watch request failed", "error", err)

			return fmt.Errorf("request gpsd nmea stream: %w", err)
		}
		_ = conn.SetWriteDeadline(time.Time{})
	}
	t.conn = conn
	t.reader = newSentenceReader(&pollingConn{conn: conn, interval: tcpPollInterval})
	logger.Info("connected", "remote", conn.RemoteAddr().String())

	return nil
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	logger := transportLogger("tcp", "target", t.targetLocked())
	if t.conn == nil {
		logger.Debug("close skipped: not connected")

		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.reader = nil
	if err != nil {
		logger.Warn("close failed", "error", err)

		return err
	}
	logger.Info("closed")

	return nil
}

func (t *TCPTransport) ReadLine(ctx context.Context) (string, error) {
	t.mu.Lock()
	reader := t.reader
	t.mu.Unlock()
	if reader == nil {
		return "", errors.New("transport is not connected")
	}

	line, err := reader.ReadLine(ctx)
	if err != nil {
		return "", fmt.Errorf("read tcp sentence: %w", err)
	}

	return line, nil
}

// pollingConn makes a blocking socket behave like a serial port with a read
// timeout, so pending reads notice context cancellation.
type pollingConn struct {
	conn     net.Conn
	interval time.Duration
}

func (c *pollingConn) Read(p []byte) (int, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.interval))
	n, err := c.conn.Read(p)
	if err != nil && n == 0 && errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, nil
	}

	return n, err
}
