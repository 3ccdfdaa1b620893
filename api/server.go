// Package api exposes the shop tools and the chat agent over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness probe
//	GET  /tools          tool definitions
//	POST /tools/{name}   execute a tool with a JSON argument object
//	GET  /orders         order snapshots (when a store is configured)
//	GET  /orders/{id}    a single order snapshot
//	POST /chat           {"session_id", "message"} -> {"session_id", "reply"}
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentshop/logging"
	"github.com/hupe1980/agentshop/order"
	"github.com/hupe1980/agentshop/tool"
)

const maxBodyBytes = 1 << 20

// Chatter answers a user message within a session.
type Chatter interface {
	Chat(ctx context.Context, sessionID, text string) (string, error)
	EndSession(sessionID string)
}

// Options configure a Server.
type Options struct {
	// Agent serves /chat. Without it the route answers 501.
	Agent Chatter
	// Store enables the read-only /orders routes.
	Store          *order.Store
	Logger         logging.Logger
	TracerProvider trace.TracerProvider
}

// Server is the HTTP front end. It implements http.Handler.
type Server struct {
	router *mux.Router
	tools  *tool.Registry
	agent  Chatter
	store  *order.Store
	logger logging.Logger
	tracer trace.Tracer
}

// NewServer wires the routes for tools.
func NewServer(tools *tool.Registry, optFns ...func(o *Options)) *Server {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	s := &Server{
		router: mux.NewRouter(),
		tools:  tools,
		agent:  opts.Agent,
		store:  opts.Store,
		logger: logging.OrNoOp(opts.Logger),
		tracer: tp.Tracer("github.com/hupe1980/agentshop/api"),
	}

	s.router.Use(s.traceMiddleware)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/tools", s.handleListTools).Methods(http.MethodGet)
	s.router.HandleFunc("/tools/{name}", s.handleExecuteTool).Methods(http.MethodPost)
	s.router.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	s.router.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods(http.MethodGet)
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/chat/{session}", s.handleEndSession).Methods(http.MethodDelete)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type executeResponse struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tools.Definitions())
}

func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := s.tools.Execute(r.Context(), name, string(body))
	if err != nil {
		status, code := statusForToolError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("api.tool.error", "tool", name, "error", err.Error())
		}
		writeError(w, status, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{Tool: name, Result: result})
}

func (s *Server) handleListOrders(w http.ResponseWriter, _ *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "order store not configured", "")
		return
	}
	ids := s.store.Orders()
	orders := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.store.Order(id)
		if err != nil {
			continue
		}
		orders = append(orders, o)
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "order store not configured", "")
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id", "")
		return
	}
	o, err := s.store.Order(id)
	if errors.Is(err, order.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), order.KindOrderNotFound.String())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		writeError(w, http.StatusNotImplemented, "chat agent not configured", "")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := s.agent.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("api.chat.error", "session", req.SessionID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Reply: reply})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		writeError(w, http.StatusNotImplemented, "chat agent not configured", "")
		return
	}
	s.agent.EndSession(mux.Vars(r)["session"])
	w.WriteHeader(http.StatusNoContent)
}

// statusForToolError maps tool error codes to HTTP status codes.
func statusForToolError(err error) (int, string) {
	var toolErr *tool.ToolError
	if !errors.As(err, &toolErr) {
		return http.StatusInternalServerError, ""
	}
	switch toolErr.Code {
	case tool.CodeNotFound:
		return http.StatusNotFound, toolErr.Code
	case tool.CodeValidation, tool.CodeInvalidArguments:
		return http.StatusBadRequest, toolErr.Code
	case tool.CodeExecution:
		return http.StatusUnprocessableEntity, toolErr.Code
	default:
		return http.StatusInternalServerError, toolErr.Code
	}
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}

		s.logger.Debug("api.request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
