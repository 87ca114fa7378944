package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	appmiddleware "github.com/IsnaAyustin/final-project-ds/internal/middleware"
	ws "github.com/IsnaAyustin/final-project-ds/internal/websocket"
	api "github.com/IsnaAyustin/final-project-ds/pkg/contracts/api/v1"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// WebSocket reply types
const (
	MessageTypePrediction = "prediction"
	MessageTypeError      = "error"
)

// PredictionReply is one reply sent over /ws/predict
type PredictionReply struct {
	Type    string                   `json:"type"`
	ID      string                   `json:"id,omitempty"`
	Result  *domain.PredictionResult `json:"result,omitempty"`
	Problem *apierrors.ProblemDetails `json:"problem,omitempty"`
}

// PredictionHandler serves the prediction form over HTTP and WebSocket
type PredictionHandler struct {
	service      PredictionServiceInterface
	validator    *appmiddleware.Validator
	wsConfig     config.WebSocketConfig
	wsMetrics    *ws.OTelMetrics
	upgrader     websocket.Upgrader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPredictionHandler creates a new prediction handler. allowedOrigins
// limits WebSocket upgrades; empty or "*" allows any origin.
func NewPredictionHandler(
	service PredictionServiceInterface,
	validator *appmiddleware.Validator,
	wsConfig config.WebSocketConfig,
	allowedOrigins []string,
	wsMetrics *ws.OTelMetrics,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *PredictionHandler {
	h := &PredictionHandler{
		service:      service,
		validator:    validator,
		wsConfig:     wsConfig,
		wsMetrics:    wsMetrics,
		logger:       logger.With(slog.String("handler", "prediction")),
		errorHandler: errorHandler,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  wsConfig.ReadBufferSize,
		WriteBufferSize: wsConfig.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
		Error:           h.upgradeError,
	}
	return h
}

// Routes returns the prediction routes
func (h *PredictionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.With(appmiddleware.ContentTypeValidator("application/json")).Post("/", h.Predict)

	return r
}

// GetOptions handles GET /api/prediction/options
func (h *PredictionHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Options())
}

// Predict handles POST /api/prediction
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	explain, err := appmiddleware.NewQueryParams(r).Bool("explain", false)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var req api.PredictionRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.predict(r.Context(), req.Input(), explain)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "prediction served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Float64("predicted_price", result.PredictedPrice),
		slog.Bool("explained", result.Attribution != nil))
	render.JSON(w, r, result)
}

func (h *PredictionHandler) predict(ctx context.Context, in domain.PredictionInput, explain bool) (*domain.PredictionResult, error) {
	if err := h.service.CheckBounds(in); err != nil {
		return nil, err
	}
	return h.service.Predict(ctx, in, explain)
}

// Stream handles GET /ws/predict. Every text message is a PredictionMessage
// and gets exactly one PredictionReply.
func (h *PredictionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		return
	}

	session := ws.NewSession(
		ws.NewConnectionWrapper(conn),
		ws.HandlerFunc(h.handleMessage),
		ws.NewOptions(h.wsConfig),
		middleware.GetReqID(r.Context()),
		h.logger,
		h.wsMetrics,
	)
	// the request context ends with the hijacked connection
	session.Serve(context.WithoutCancel(r.Context()))
}

func (h *PredictionHandler) handleMessage(ctx context.Context, message []byte) []byte {
	var msg api.PredictionMessage
	reply := PredictionReply{Type: MessageTypePrediction}

	err := json.Unmarshal(message, &msg)
	if err != nil {
		err = apierrors.InvalidRequestWithError(err)
	} else {
		reply.ID = msg.ID
		err = h.validator.ValidateStruct(&msg)
	}
	if err == nil {
		err = h.validator.ValidateStruct(msg.Input)
	}
	if err == nil {
		reply.Result, err = h.predict(ctx, msg.Input.Input(), msg.Explain)
	}

	if err != nil {
		reply.Type = MessageTypeError
		reply.Result = nil
		reply.Problem = h.errorHandler.ErrorToProblem(err, config.WebSocketPredictPath)
		h.logger.DebugContext(ctx, "prediction message rejected",
			slog.String("id", reply.ID),
			slog.Int("status", reply.Problem.Status),
			slog.String("error", err.Error()))
	}

	out, err := json.Marshal(reply)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode reply", slog.String("error", err.Error()))
		return nil
	}
	return out
}

func (h *PredictionHandler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	problem := apierrors.NewProblemDetails(status, apierrors.TypeWebSocketUpgrade,
		"WebSocket Upgrade Failed", reason.Error(), r.URL.Path)
	problem.WithExtension("trace_id", middleware.GetReqID(r.Context()))
	render.Render(w, r, problem)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
