// Package rpc implements the dual-protocol request dispatcher.
//
// Inbound messages are either JSON-RPC 2.0 envelopes or legacy
// free-form action envelopes. Both decode into one canonical request so
// resolution, invocation and error mapping are format-agnostic; only
// the reply envelope differs.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

const jsonrpcVersion = "2.0"

// envelope is the superset of both wire formats. The jsonrpc field is
// the discriminator: when present the message is a structured request,
// otherwise the legacy action shape applies.
type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Action  string          `json:"action"`
	// legacy messages put arguments under params as well; some older
	// clients used "parameters", accepted for compatibility
	Parameters json.RawMessage `json:"parameters"`
}

// request is the canonical decoded form shared by both protocols.
type request struct {
	method string
	params json.RawMessage
	// raw id bytes; nil means the id key was absent
	id     json.RawMessage
	legacy bool
}

// jsonrpcResponse is the structured reply envelope. Result and Error
// are mutually exclusive.
type jsonrpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// legacyResponse is the reply envelope for the legacy action protocol,
// keyed by action name since legacy clients carry no correlation id.
type legacyResponse struct {
	Action string `json:"action"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Dispatcher decodes inbound messages, resolves them against the
// registry and encodes replies. It holds no per-connection state; every
// message is independent.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Dispatch processes one inbound message and returns the encoded reply.
// The second return value is false for notifications, which never get a
// reply. A malformed or failing message yields an error reply in the
// envelope style of the protocol detected; it never fails the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, message []byte) ([]byte, bool) {
	req, errResp := d.decode(message)
	if errResp != nil {
		return errResp, true
	}

	result, opErr := d.invoke(ctx, req)

	if req.legacy {
		resp := legacyResponse{Action: req.method}
		if opErr != nil {
			resp.Error = opErr
		} else {
			resp.Result = result
		}
		return d.encode(resp), true
	}

	// Structured protocol: no id means notification, no reply ever.
	if req.id == nil {
		if opErr != nil {
			d.logger.Debug("notification failed",
				"method", req.method,
				"code", opErr.Code,
				"error", opErr.Message,
			)
		}
		return nil, false
	}

	resp := jsonrpcResponse{Jsonrpc: jsonrpcVersion, ID: req.id}
	if opErr != nil {
		resp.Error = opErr
	} else {
		resp.Result = result
	}
	return d.encode(resp), true
}

// decode parses the wire bytes into a canonical request. On failure it
// returns a ready-to-send error reply instead.
func (d *Dispatcher) decode(message []byte) (request, []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		d.logger.Warn("undecodable message", "error", err)
		return request{}, d.encode(jsonrpcResponse{
			Jsonrpc: jsonrpcVersion,
			ID:      json.RawMessage("null"),
			Error:   newError(CodeParseError, "parse error"),
		})
	}

	if env.Jsonrpc != "" {
		// Structured protocol detected.
		id := normalizeID(env.ID)
		if env.Jsonrpc != jsonrpcVersion {
			return request{}, d.encode(jsonrpcResponse{
				Jsonrpc: jsonrpcVersion,
				ID:      echoID(id),
				Error:   newError(CodeInvalidRequest, fmt.Sprintf("unsupported protocol version %q", env.Jsonrpc)),
			})
		}
		if env.Method == "" {
			return request{}, d.encode(jsonrpcResponse{
				Jsonrpc: jsonrpcVersion,
				ID:      echoID(id),
				Error:   newError(CodeInvalidRequest, "method is required"),
			})
		}
		return request{method: env.Method, params: env.Params, id: id}, nil
	}

	// Legacy protocol: id-less by construction, always replied to.
	if env.Action == "" {
		return request{}, d.encode(legacyResponse{
			Error: newError(CodeInvalidRequest, "message has neither a jsonrpc envelope nor an action"),
		})
	}
	params := env.Params
	if params == nil {
		params = env.Parameters
	}
	return request{method: env.Action, params: params, legacy: true}, nil
}

// invoke resolves and runs the operation, translating every failure
// into a protocol error. Panics are contained here so one bad message
// cannot terminate a connection.
func (d *Dispatcher) invoke(ctx context.Context, req request) (result any, opErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("operation panicked", "method", req.method, "panic", r)
			result = nil
			opErr = newError(CodeInternalError, "internal error")
		}
	}()

	op, ok := d.registry.Resolve(req.method)
	if !ok {
		return nil, newError(CodeMethodNotFound, fmt.Sprintf("method %q not found", req.method))
	}

	res, err := op.Handler(ctx, req.params)
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

// encode marshals a reply envelope. Marshal failures degrade to a
// minimal internal-error response rather than dropping the reply.
func (d *Dispatcher) encode(resp any) []byte {
	out, err := json.Marshal(resp)
	if err != nil {
		d.logger.Error("failed to encode response", "error", err)
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32000,"message":"internal error"}}`)
	}
	return out
}

// normalizeID distinguishes an absent id key (nil, a notification)
// from an explicit null (a request whose reply echoes null).
func normalizeID(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return json.RawMessage("null")
	}
	return raw
}

// echoID returns the id to place in an error reply during decode,
// falling back to null when none was carried.
func echoID(id json.RawMessage) json.RawMessage {
	if id == nil {
		return json.RawMessage("null")
	}
	return id
}
