package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"grainsim/calculator"
	"grainsim/model"
	"grainsim/risk"
)

type Server struct {
	cfg      Config
	svc      *Service
	upgrader websocket.Upgrader
	registry *prometheus.Registry
	metrics  *Collector
	router   *mux.Router

	Log logrus.FieldLogger
}

func NewServer(cfg Config, calc *calculator.Calculator, est *risk.Estimator) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewCollector(cfg.Namespace, registry)

	s := &Server{
		cfg: cfg,
		svc: NewService(calc, est, metrics),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		registry: registry,
		metrics:  metrics,
		router:   mux.NewRouter(),
		Log:      logrus.StandardLogger(),
	}
	s.RegisterRoutes(s.router)
	s.router.HandleFunc("/ws", s.serveWs)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.WithError(err).Warn("websocket 握手失败")
		return
	}
	defer conn.Close()

	s.metrics.ActiveConnections.Inc()
	defer s.metrics.ActiveConnections.Dec()

	hub := NewHub(s.svc, s.cfg, conn)
	defer close(hub.done)
	go hub.handleRequest()
	go hub.handleResponse()

	log := s.Log.WithField("remote", conn.RemoteAddr().String())
	log.Info("websocket 已连接")
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket 异常断开")
			} else {
				log.Info("websocket 已断开")
			}
			return
		}
		select {
		case hub.msg <- msg:
		case <-r.Context().Done():
			return
		}
	}
}

// Serve 启动 HTTP 服务，ctx 取消后优雅退出
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Log.WithField("addr", s.cfg.Addr).Info("服务已启动")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Log.Info("正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
