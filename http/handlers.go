package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"custseg/form"
	"custseg/monitoring"
	"custseg/pipeline"
)

// Predictor runs one submission through the scaler and classifier.
type Predictor interface {
	Predict(c pipeline.Customer) (*pipeline.Prediction, error)
}

type Handlers struct {
	predictor Predictor
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewHandlers(predictor Predictor, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		predictor: predictor,
		metrics:   metrics,
		logger:    logger,
	}
}

type apiResult struct {
	Label         int       `json:"label"`
	Probabilities []float64 `json:"probabilities"`
	Headline      string    `json:"headline"`
	Summary       string    `json:"summary"`
}

type apiError struct {
	Error    string   `json:"error"`
	Field    string   `json:"field,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

func newAPIResult(p *pipeline.Prediction) apiResult {
	return apiResult{
		Label:         p.Label,
		Probabilities: p.Probabilities,
		Headline:      p.Headline(),
		Summary:       p.FormatProbabilities(),
	}
}

// describeError maps submission errors to a status code and the offending
// field. Anything unrecognized is an internal failure.
func describeError(err error) (int, apiError) {
	var (
		verr *pipeline.ValidationError
		berr *form.BoundsError
		perr *form.ParseError
		serr *form.SchemaError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, apiError{Error: err.Error(), Field: verr.Field}
	case errors.As(err, &berr):
		return http.StatusUnprocessableEntity, apiError{Error: err.Error(), Field: berr.Field}
	case errors.As(err, &serr):
		return http.StatusUnprocessableEntity, apiError{Error: "invalid submission", Problems: serr.Problems}
	case errors.As(err, &perr):
		return http.StatusBadRequest, apiError{Error: err.Error(), Field: perr.Field}
	default:
		return http.StatusInternalServerError, apiError{Error: "prediction failed"}
	}
}

// submit decodes an API body and runs the pipeline.
func (h *Handlers) submit(body []byte) (*pipeline.Prediction, error) {
	customer, err := form.DecodeJSON(body)
	if err != nil {
		h.rejectInput(err)
		return nil, err
	}
	return h.predictor.Predict(customer)
}

// rejectInput counts a submission turned away before reaching the pipeline,
// which counts its own rejections.
func (h *Handlers) rejectInput(err error) {
	_, payload := describeError(err)
	field := payload.Field
	if field == "" {
		field = "schema"
	}
	h.metrics.ObserveRejection(field)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": form.Fields(),
		"schema": form.Schema(),
	})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read request body"})
		return
	}

	prediction, err := h.submit(body)
	if err != nil {
		status, payload := describeError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		}
		writeJSON(w, status, payload)
		return
	}
	writeJSON(w, http.StatusOK, newAPIResult(prediction))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
