// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/util"
)

// readMargin keeps the read deadline ahead of the probe budget, so "no frame
// before the budget" is observed by the probe rather than as a dispatcher timeout.
const readMargin = 250 * time.Millisecond

// Conn is the subset of *websocket.Conn the realtime probe uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// Dialer opens realtime sockets. On a rejected handshake the HTTP response is
// returned alongside the error.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, *http.Response, error)
}

type websocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer returns a gorilla/websocket backed Dialer.
func NewWebsocketDialer(handshakeTimeout time.Duration) Dialer {
	return &websocketDialer{dialer: &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}}
}

func (d *websocketDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, *http.Response, error) {
	conn, resp, err := d.dialer.DialContext(ctx, urlStr, header)
	if err != nil {
		return nil, resp, err
	}
	return conn, resp, nil
}

// realtimeFrame covers the error shapes of both realtime APIs:
// OpenAI {"type":"error","error":{...}} and Gemini {"error":{...}}.
type realtimeFrame struct {
	Type  string `json:"type"`
	Error *struct {
		Type    string `json:"type"`
		Code    any    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// realtimeProbe opens a socket, optionally sends a setup frame and waits for
// the first frame. Success is an open socket followed by a non-error frame, or
// by silence until the budget runs out.
func realtimeProbe(ctx context.Context, dialer Dialer, t target, urlStr string, header http.Header, setup []byte) error {
	conn, resp, err := dialer.DialContext(ctx, urlStr, header)
	if err != nil {
		return handshakeError(t, resp, err)
	}

	var once sync.Once
	closeConn := func() {
		once.Do(func() {
			if errClose := conn.Close(); errClose != nil {
				log.WithField("model", t.model).WithError(errClose).Debug("realtime socket close failed")
			}
		})
	}
	defer closeConn()
	stop := context.AfterFunc(ctx, closeConn)
	defer stop()

	if setup != nil {
		if err := conn.WriteMessage(websocket.TextMessage, setup); err != nil {
			return t.newError(0, "", "", "failed to send setup frame", err)
		}
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultRealtimeTimeout)
	}
	if err := conn.SetReadDeadline(deadline.Add(-readMargin)); err != nil {
		return t.newError(0, "", "", "failed to set read deadline", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return t.newError(0, "", "", "realtime probe cancelled", ctx.Err())
		}
		return readError(t, err)
	}

	var frame realtimeFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		// Binary audio or other non-JSON payloads are still a live session.
		return nil
	}
	if frame.Type == "error" || frame.Error != nil {
		pe := t.newError(0, "", "", "realtime session reported an error", nil)
		if frame.Error != nil {
			pe.Type = frame.Error.Type
			pe.Message = frame.Error.Message
			if frame.Error.Code != nil {
				pe.Code = fmt.Sprint(frame.Error.Code)
			}
			if frame.Error.Status != "" {
				pe.Code = frame.Error.Status
			}
			pe.NotFound = pe.Code == "model_not_found" || pe.Code == "NOT_FOUND"
		}
		return pe
	}
	return nil
}

func handshakeError(t target, resp *http.Response, err error) error {
	if resp == nil {
		return t.newError(0, "", "", "", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return t.fromHTTP(resp.StatusCode, body)
	}
	pe := t.newError(resp.StatusCode, "", "", fmt.Sprintf("model exists but realtime handshake did not complete (status %d)", resp.StatusCode), err)
	pe.NotFound = false
	if msg := util.ProviderErrorMessage(body); msg != "" {
		log.WithField("model", t.model).WithField("status", resp.StatusCode).Debugf("realtime handshake rejected: %s", msg)
	}
	return pe
}

func readError(t target, err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		if closeErr.Code == websocket.CloseNormalClosure {
			return nil
		}
		return t.newError(0, "", "", fmt.Sprintf("realtime socket closed with code %d: %s", closeErr.Code, closeErr.Text), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		// Closed by the context watcher: the budget ran out with no frame.
		return nil
	}
	return t.newError(0, "", "", "realtime socket read failed", err)
}
