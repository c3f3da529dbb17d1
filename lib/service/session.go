// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/bureau-foundation/boxoffice/lib/codec"
	"github.com/bureau-foundation/boxoffice/lib/command"
)

// errRequestTooLarge is reported when one request exceeds the
// configured size.
var errRequestTooLarge = errors.New("request exceeds maximum size")

// requestLimiter caps the bytes read between two calls to reset.
type requestLimiter struct {
	reader    io.Reader
	limit     int64
	remaining int64
}

func (l *requestLimiter) reset() { l.remaining = l.limit }

func (l *requestLimiter) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, errRequestTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.reader.Read(p)
	l.remaining -= int64(n)
	return n, err
}

// session is the protocol state machine for one connection.
type session struct {
	conn       net.Conn
	limiter    *requestLimiter
	decoder    *codec.Decoder
	encoder    *codec.Encoder
	dispatcher command.Dispatcher
	scripts    ScriptRunner
	config     Config
	logger     *slog.Logger
	state      State
}

func newSession(conn net.Conn, dispatcher command.Dispatcher, scripts ScriptRunner, config Config, logger *slog.Logger) *session {
	limiter := &requestLimiter{reader: conn, limit: config.MaxRequestSize}
	return &session{
		conn:       conn,
		limiter:    limiter,
		decoder:    codec.NewDecoder(limiter),
		encoder:    codec.NewEncoder(conn),
		dispatcher: dispatcher,
		scripts:    scripts,
		config:     config,
		logger:     logger,
		state:      StateAwaitRequest,
	}
}

// run processes requests until the peer disconnects, the connection
// is closed by the server, or a protocol error occurs.
func (s *session) run(ctx context.Context) {
	defer s.transition(StateClosed)

	for {
		s.transition(StateAwaitRequest)
		request, err := s.read(s.config.IdleTimeout)
		if err != nil {
			if isDisconnect(err) || ctx.Err() != nil {
				return
			}
			s.fail(&ProtocolError{State: s.state, Reason: "reading request", Err: err})
			return
		}

		if err := s.handle(ctx, request); err != nil {
			var protocolError *ProtocolError
			if errors.As(err, &protocolError) && ctx.Err() == nil {
				s.fail(protocolError)
			} else {
				s.logger.Debug("session ended", "state", s.state.String(), "error", err)
			}
			return
		}
	}
}

// handle processes one request and writes its response. A returned
// error ends the session.
func (s *session) handle(ctx context.Context, request Request) error {
	s.transition(StateDispatching)

	switch request.Kind {
	case RequestCommand:
		return s.handleCommand(ctx, request)

	case RequestScript:
		if s.scripts == nil {
			return s.respond(Response{Kind: ResponseError, Message: "scripts are not supported by this server"})
		}
		s.logger.Info("running submitted script", "script", request.Path)
		output := s.scripts.Run(ctx, request.Path, request.Content, command.OriginClient)
		return s.respond(Response{Kind: ResponseInfo, OK: true, Message: output})

	case RequestPayload:
		return &ProtocolError{State: s.state, Reason: "payload request outside a payload exchange"}

	default:
		return &ProtocolError{State: s.state, Reason: fmt.Sprintf("unknown request kind %q", request.Kind)}
	}
}

func (s *session) handleCommand(ctx context.Context, request Request) error {
	call := command.Call{Name: request.Name, Args: request.Args, Origin: command.OriginClient}

	cmd, err := s.dispatcher.Resolve(call)
	if err != nil {
		return s.respond(Response{Kind: ResponseError, Message: err.Error()})
	}

	if cmd.Kind == command.KindPayload {
		if err := s.respond(Response{
			Kind:    ResponseNeedPayload,
			OK:      true,
			Message: "send a ticket for " + cmd.Usage(),
		}); err != nil {
			return err
		}

		s.transition(StateAwaitPayload)
		followUp, err := s.read(s.config.PayloadTimeout)
		if err != nil {
			if isDisconnect(err) {
				return err
			}
			return &ProtocolError{State: s.state, Reason: "waiting for payload", Err: err}
		}
		if followUp.Kind != RequestPayload {
			return &ProtocolError{State: s.state, Reason: fmt.Sprintf("expected a payload request, got %q", followUp.Kind)}
		}
		if followUp.Ticket == nil {
			return &ProtocolError{State: s.state, Reason: "payload request has no ticket"}
		}
		call.Payload = followUp.Ticket
		s.transition(StateDispatchingWithPayload)
	}

	result := s.dispatcher.Execute(ctx, cmd, call)
	if !result.OK {
		return s.respond(Response{Kind: ResponseError, Message: result.Message})
	}
	return s.respond(Response{Kind: ResponseInfo, OK: true, Message: result.Message})
}

// read decodes one request, bounding the wait by timeout (zero means
// no deadline).
func (s *session) read(timeout time.Duration) (Request, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return Request{}, err
	}

	s.limiter.reset()
	var request Request
	if err := s.decoder.Decode(&request); err != nil {
		return Request{}, err
	}
	return request, nil
}

func (s *session) respond(response Response) error {
	previous := s.state
	s.transition(StateResponding)
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return err
	}
	if err := s.encoder.Encode(response); err != nil {
		return fmt.Errorf("writing %s response after %s: %w", response.Kind, previous, err)
	}
	return nil
}

// fail reports a protocol error to the peer before the connection is
// closed. Write failures are ignored: the connection is closing
// either way.
func (s *session) fail(protocolError *ProtocolError) {
	s.logger.Warn("closing connection on protocol error", "state", protocolError.State.String(), "error", protocolError)
	if err := s.respond(Response{Kind: ResponseError, Message: protocolError.Error()}); err != nil {
		s.logger.Debug("failed to write protocol error response", "error", err)
	}
}

func (s *session) transition(next State) {
	if s.state != next {
		s.logger.Debug("session state", "from", s.state.String(), "to", next.String())
	}
	s.state = next
}

// isDisconnect reports whether err means the peer went away or the
// server closed the connection, as opposed to sending bad data.
func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
