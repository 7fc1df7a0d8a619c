package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"grainsim/model"
	"grainsim/report"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.instrument)
	api.HandleFunc("/simulate", s.Simulate).Methods("POST")
	api.HandleFunc("/simulate/csv", s.SimulateCSV).Methods("POST")
	api.HandleFunc("/simulate/png", s.SimulatePNG).Methods("POST")
	api.HandleFunc("/compare", s.Compare).Methods("POST")
	api.HandleFunc("/crops", s.Crops).Methods("GET")
	router.HandleFunc("/health", s.HealthCheck).Methods("GET")
}

// Simulate handles POST /api/simulate
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.simulate(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, rep, http.StatusOK)
}

// SimulateCSV handles POST /api/simulate/csv
func (s *Server) SimulateCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.simulate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep.Simulation.Field); err != nil {
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="grain_report.csv"`)
	w.Write(buf.Bytes())
}

// SimulatePNG handles POST /api/simulate/png
func (s *Server) SimulatePNG(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.simulate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WritePNG(&buf, rep); err != nil {
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// Compare handles POST /api/compare
func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.sendJSON(w, s.svc.Compare(in), http.StatusOK)
}

// Crops handles GET /api/crops
func (s *Server) Crops(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, s.svc.Crops(), http.StatusOK)
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	s.sendJSON(w, status, http.StatusOK)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) (*model.Report, bool) {
	in, err := decodeInput(r)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	rep, err := s.svc.Simulate(in, nil)
	if err != nil {
		s.sendError(w, err.Error(), statusFor(err))
		return nil, false
	}
	return rep, true
}

// 请求体为空时使用默认工况，缺省字段同样取默认值
func decodeInput(r *http.Request) (model.SimulationInput, error) {
	in := model.DefaultSimulationInput()
	if r.Body == nil {
		return in, nil
	}
	err := json.NewDecoder(r.Body).Decode(&in)
	if err != nil && !errors.Is(err, io.EOF) {
		return in, fmt.Errorf("invalid simulation input: %w", err)
	}
	return in, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnknownCrop):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNumericDivergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Log.WithError(err).Warn("写入响应失败")
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// 记录请求数和耗时，endpoint 取路由模板
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		timer := NewTimer(s.metrics.APIRequestDuration.WithLabelValues(endpoint))
		next.ServeHTTP(rec, r)
		d := timer.ObserveDuration()
		s.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(rec.status))
		s.Log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
			"status":   rec.status,
			"cost":     d,
		}).Debug("api request")
	})
}
