package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/automeal/automeal-server/internal/catalog"
	"github.com/automeal/automeal-server/internal/models"
	"github.com/automeal/automeal-server/internal/rpc"
	"github.com/automeal/automeal-server/internal/store"
)

// MCPHandler serves the manifest, tool and resource endpoints over
// HTTP. Everything it returns is derived from the operation registry.
type MCPHandler struct {
	registry *rpc.Registry
	catalog  *catalog.Provider
	logger   *slog.Logger
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(registry *rpc.Registry, cat *catalog.Provider, logger *slog.Logger) *MCPHandler {
	return &MCPHandler{
		registry: registry,
		catalog:  cat,
		logger:   logger,
	}
}

// GetManifest handles GET /mcp/manifest
func (h *MCPHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.registry.Manifest(), h.logger)
}

// ListTools handles GET /mcp/tools
func (h *MCPHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.registry.Tools(), h.logger)
}

// toolCallRequest is the body of POST /mcp/tools/call.
type toolCallRequest struct {
	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments"`
}

// textContent wraps a payload the way tool results are returned:
// a single text block holding pretty-printed JSON.
func textContent(v any) (map[string]any, error) {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	}, nil
}

// CallTool handles POST /mcp/tools/call
func (h *MCPHandler) CallTool(w http.ResponseWriter, r *http.Request) {
	var req toolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if req.ToolName == "" {
		WriteError(w, http.StatusBadRequest, "tool_name is required", h.logger)
		return
	}

	op, ok := h.registry.Resolve(req.ToolName)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Tool %s not found", req.ToolName), h.logger)
		return
	}

	result, err := op.Handler(r.Context(), req.Arguments)
	if err != nil {
		status, msg := httpStatusFor(err)
		h.logger.Warn("tool call failed", "tool", req.ToolName, "error", err)
		WriteError(w, status, msg, h.logger)
		return
	}

	body, err := textContent(result)
	if err != nil {
		h.logger.Error("failed to encode tool result", "tool", req.ToolName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, body, h.logger)
}

// ListResources handles GET /mcp/resources
func (h *MCPHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.registry.Resources(), h.logger)
}

// ReadResource handles GET /mcp/resources/read?uri=...
func (h *MCPHandler) ReadResource(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		WriteError(w, http.StatusBadRequest, "uri is required", h.logger)
		return
	}

	payload, err := h.resolveResource(r.Context(), uri)
	if err != nil {
		if errors.Is(err, errResourceNotFound) {
			WriteError(w, http.StatusNotFound, err.Error(), h.logger)
			return
		}
		status, msg := httpStatusFor(err)
		WriteError(w, status, msg, h.logger)
		return
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		h.logger.Error("failed to encode resource", "uri", uri, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"contents": []map[string]any{
			{"uri": uri, "mimeType": "application/json", "text": string(text)},
		},
	}, h.logger)
}

// resolveResource maps a resource URI onto catalog data.
func (h *MCPHandler) resolveResource(ctx context.Context, uri string) (any, error) {
	switch {
	case uri == "dishes://all":
		return h.catalog.ListDishes(), nil

	case uri == "restaurants://all":
		return h.catalog.ListRestaurants(), nil

	case strings.HasPrefix(uri, "restaurants://") && strings.HasSuffix(uri, "/menu"):
		restaurantID := strings.TrimSuffix(strings.TrimPrefix(uri, "restaurants://"), "/menu")
		return h.catalog.Menu(restaurantID)

	case strings.HasPrefix(uri, "dishes://by-tag/"):
		tag := strings.TrimPrefix(uri, "dishes://by-tag/")
		return h.catalog.Search(models.DishFilter{Tags: []string{tag}}), nil

	default:
		return nil, fmt.Errorf("%w: %s", errResourceNotFound, uri)
	}
}

var errResourceNotFound = errors.New("resource not found")

// httpStatusFor maps domain errors onto HTTP statuses for the thin
// HTTP surface. The dispatcher has its own protocol-level mapping.
func httpStatusFor(err error) (int, string) {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == rpc.CodeInvalidParams || rpcErr.Code == rpc.CodeValidation {
			return http.StatusBadRequest, rpcErr.Message
		}
		return http.StatusInternalServerError, rpcErr.Message
	}

	switch {
	case errors.Is(err, catalog.ErrDishNotFound),
		errors.Is(err, catalog.ErrRestaurantNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrDeliveryNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadRequest, err.Error()
	}
}
