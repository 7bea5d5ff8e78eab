// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// Connection is a channel to the device that must be closed after use
type Connection interface {
	velocio.Channel
	io.Closer
}

// ErrConnectionClosed is returned when using a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// serialPort is the part of serial.Port used by SerialChannel
type serialPort interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

// SerialChannel wraps a serial port. The port is switched to a zero read
// timeout so Read polls; bytes seen by a poll are kept until ReadByte.
type SerialChannel struct {
	port      serialPort
	lookahead []byte
	buf       []byte
}

// NewSerialChannel puts port into polling mode and wraps it
func NewSerialChannel(port serialPort) (*SerialChannel, error) {
	if err := port.SetReadTimeout(0); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return &SerialChannel{
		port: port,
		buf:  make([]byte, 256),
	}, nil
}

func (s *SerialChannel) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// Buffered polls the port if nothing is held back yet
func (s *SerialChannel) Buffered() (int, error) {
	if len(s.lookahead) == 0 {
		if err := s.poll(); err != nil {
			return 0, err
		}
	}
	return len(s.lookahead), nil
}

func (s *SerialChannel) ReadByte() (byte, error) {
	if len(s.lookahead) == 0 {
		if err := s.poll(); err != nil {
			return 0, err
		}
		if len(s.lookahead) == 0 {
			return 0, io.ErrNoProgress
		}
	}
	b := s.lookahead[0]
	s.lookahead = s.lookahead[1:]
	return b, nil
}

// Discard drops held back bytes and the driver's input buffer
func (s *SerialChannel) Discard() error {
	s.lookahead = s.lookahead[:0]
	return s.port.ResetInputBuffer()
}

func (s *SerialChannel) Close() error {
	return s.port.Close()
}

func (s *SerialChannel) poll() error {
	n, err := s.port.Read(s.buf)
	if err != nil {
		return err
	}
	s.lookahead = append(s.lookahead, s.buf[:n]...)
	return nil
}

// WebSocketChannel carries the serial byte stream over a WebSocket bridge.
// A background reader appends every binary message to the receive buffer.
type WebSocketChannel struct {
	conn *websocket.Conn

	mu     sync.Mutex
	buf    []byte
	err    error
	closed bool
}

func newWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	w := &WebSocketChannel{conn: conn}
	go w.readLoop()
	return w
}

func (w *WebSocketChannel) readLoop() {
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
			return
		}

		// Only binary messages carry device bytes
		if messageType != websocket.BinaryMessage {
			continue
		}

		w.mu.Lock()
		w.buf = append(w.buf, data...)
		w.mu.Unlock()
	}
}

// Buffered reports received bytes. Once the connection has failed and the
// buffer is empty, the failure is returned.
func (w *WebSocketChannel) Buffered() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) == 0 {
		if w.closed {
			return 0, ErrConnectionClosed
		}
		if w.err != nil {
			return 0, w.err
		}
	}
	return len(w.buf), nil
}

func (w *WebSocketChannel) ReadByte() (byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) == 0 {
		if w.err != nil {
			return 0, w.err
		}
		return 0, io.ErrNoProgress
	}
	b := w.buf[0]
	w.buf = w.buf[1:]
	return b, nil
}

func (w *WebSocketChannel) Discard() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = nil
	return nil
}

func (w *WebSocketChannel) Write(p []byte) (int, error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return 0, ErrConnectionClosed
	}

	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketChannel) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.conn.Close()
}

// lineMode is the PLC programming port setting, 8N1 at the given baud
func lineMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerialConnection opens portName and puts it into polling mode
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	port, err := serial.Open(portName, lineMode(baudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	ch, err := NewSerialChannel(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	logger.Debug().Str("port", portName).Int("baud", baudRate).Msg("serial port open")
	return ch, nil
}

// bridgeHeader returns the handshake headers for a bridge login.
// No username means no Authorization header.
func bridgeHeader(username, password string) http.Header {
	h := http.Header{}
	if username == "" {
		return h
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	h.Set("Authorization", "Basic "+token)
	return h
}

// OpenWebSocketConnection dials a serial-to-WebSocket bridge at wsURL
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: skipSSLVerify},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, u.String(), bridgeHeader(username, password))
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	switch {
	case err != nil && resp != nil:
		return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
	case err != nil:
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	logger.Debug().Str("url", u.Redacted()).Msg("bridge connected")
	return newWebSocketChannel(conn), nil
}

// GetPassword returns VELOCIO_PASSWORD if set, otherwise reads the bridge
// password from stdin
func GetPassword() (string, error) {
	if pw, ok := os.LookupEnv("VELOCIO_PASSWORD"); ok {
		return pw, nil
	}
	return readPassword(os.Stdin, os.Stderr)
}

// readPassword prompts on a terminal without echo. Anything else, such as
// a pipe, is read up to the first newline.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// OpenConnection opens either a WebSocket or a serial connection based on config
func OpenConnection() (Connection, string, error) {
	if cfg.URL != "" {
		password := ""
		if cfg.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(cfg.URL, cfg.Username, password, cfg.NoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", cfg.URL), nil
	}

	conn, err := OpenSerialConnection(cfg.Port, cfg.Baud)
	if err != nil {
		return nil, "", err
	}
	return conn, fmt.Sprintf("Serial: %s @ %d baud", cfg.Port, cfg.Baud), nil
}
