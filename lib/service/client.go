// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bureau-foundation/boxoffice/lib/codec"
	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// DefaultClientTimeout bounds one request-response round trip when
// Dial is given no timeout.
const DefaultClientTimeout = 30 * time.Second

// ErrPayloadDeclined is returned by Command when the server asks for
// a payload and the client has none to give. The connection is closed
// because the server is blocked waiting for it.
var ErrPayloadDeclined = errors.New("server requested a payload but none was provided")

// PayloadFunc supplies the ticket for a payload command. prompt is
// the server's need_payload message.
type PayloadFunc func(ctx context.Context, prompt string) (*schema.Ticket, error)

// Client is one persistent connection to a boxoffice server. A Client
// is not safe for concurrent use; requests on one connection are
// strictly sequential.
type Client struct {
	address string
	timeout time.Duration
	conn    net.Conn
	encoder *codec.Encoder
	decoder *codec.Decoder
}

// Dial connects to the server at address. timeout bounds the connect
// and every later round trip; zero uses [DefaultClientTimeout].
func Dial(ctx context.Context, address string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", address, err)
	}
	return &Client{
		address: address,
		timeout: timeout,
		conn:    conn,
		encoder: codec.NewEncoder(conn),
		decoder: codec.NewDecoder(conn),
	}, nil
}

// Address returns the server address the client dialed.
func (c *Client) Address() string { return c.address }

// Send writes one request and reads one response.
func (c *Client) Send(ctx context.Context, request Request) (Response, error) {
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return Response{}, fmt.Errorf("setting deadline: %w", err)
	}
	// Cancellation interrupts a blocked read or write by moving the
	// deadline into the past.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := c.encoder.Encode(request); err != nil {
		return Response{}, c.transportError(ctx, "writing request", err)
	}
	var response Response
	if err := c.decoder.Decode(&response); err != nil {
		return Response{}, c.transportError(ctx, "reading response", err)
	}
	return response, nil
}

// Command runs a named command. If the server answers need_payload,
// payload is called for the ticket and the exchange is completed.
// A nil payload, or one that fails, closes the connection and
// returns an error.
func (c *Client) Command(ctx context.Context, name string, args []string, payload PayloadFunc) (Response, error) {
	response, err := c.Send(ctx, Request{Kind: RequestCommand, Name: name, Args: args})
	if err != nil {
		return Response{}, err
	}
	if response.Kind != ResponseNeedPayload {
		return response, nil
	}

	if payload == nil {
		c.Close()
		return Response{}, fmt.Errorf("%s: %w", name, ErrPayloadDeclined)
	}
	ticket, err := payload(ctx, response.Message)
	if err != nil {
		c.Close()
		return Response{}, fmt.Errorf("%s: building payload: %w", name, err)
	}
	return c.Send(ctx, Request{Kind: RequestPayload, Ticket: ticket})
}

// Script submits script text for replay on the server.
func (c *Client) Script(ctx context.Context, path, content string) (Response, error) {
	return c.Send(ctx, Request{Kind: RequestScript, Path: path, Content: content})
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) transportError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", operation, ctxErr)
	}
	return fmt.Errorf("%s on %s: %w", operation, c.address, err)
}
