package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ahmethakanbesel/ecb-exchange/internal/apperror"
	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

type handler struct {
	rateSvc  *rate.Service
	validate *validator.Validate
}

type snapshotResponse struct {
	Base     string      `json:"base"`
	Rates    []rate.Rate `json:"rates"`
	Captured string      `json:"capturedAt"`
}

type convertBatchRequest struct {
	Conversions []rate.ConversionRequest `json:"conversions" validate:"required,min=1,max=100,dive"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.rateSvc.HealthCheck(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getRates(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.rateSvc.Fetch(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Base:     rate.BaseCurrency,
		Rates:    snapshot.Rates,
		Captured: snapshot.Timestamp.Format(timeFormat),
	})
}

func (h *handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	amount := 1.0
	if v := q.Get("amount"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(a) || math.IsInf(a, 0) {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		amount = a
	}

	conversions, err := h.rateSvc.ConvertBatch(r.Context(), []rate.ConversionRequest{{From: from, Amount: amount, To: to}})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversions[0])
}

func (h *handler) convertBatch(w http.ResponseWriter, r *http.Request) {
	var req convertBatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conversions, err := h.rateSvc.ConvertBatch(r.Context(), req.Conversions)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversions)
}

func writeAppError(w http.ResponseWriter, err error) {
	ae := apperror.From(err)
	writeError(w, ae.HTTPStatus(), ae.Message())
}
