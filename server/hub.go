package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"grainsim/calculator"
	"grainsim/model"
)

// 消息类型
const (
	MsgSimulate   = "simulate"
	MsgCompare    = "compare"
	MsgCrops      = "crops"
	MsgResult     = "result"
	MsgProgress   = "progress"
	MsgComparison = "comparison"
	MsgError      = "error"
)

// Hub 负责一个 websocket 连接：读循环把请求放进 msg，
// handleRequest 执行计算，handleResponse 是唯一写连接的 goroutine
type Hub struct {
	svc  *Service
	cfg  Config
	conn *websocket.Conn
	log  logrus.FieldLogger

	// request
	msg chan model.Msg
	// response
	reply chan model.Msg

	done chan struct{}
}

func NewHub(svc *Service, cfg Config, conn *websocket.Conn) *Hub {
	return &Hub{
		svc:   svc,
		cfg:   cfg,
		conn:  conn,
		log:   svc.Log,
		msg:   make(chan model.Msg, 10),
		reply: make(chan model.Msg, 10),
		done:  make(chan struct{}),
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				h.log.WithError(err).WithField("type", reply.Type).Warn("发送消息失败")
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			h.dispatch(msg)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) dispatch(msg model.Msg) {
	h.svc.metrics.MessagesTotal.WithLabelValues(msg.Type).Inc()
	switch msg.Type {
	case MsgSimulate:
		in, err := parseInput(msg.Content)
		if err != nil {
			h.sendError(err)
			return
		}
		rep, err := h.svc.Simulate(in, h.pushProgress)
		if err != nil {
			h.sendError(err)
			return
		}
		h.sendJSON(MsgResult, rep)
	case MsgCompare:
		in, err := parseInput(msg.Content)
		if err != nil {
			h.sendError(err)
			return
		}
		h.sendJSON(MsgComparison, h.svc.Compare(in))
	case MsgCrops:
		h.sendJSON(MsgCrops, h.svc.Crops())
	default:
		h.log.WithField("type", msg.Type).Warn("no such type")
		h.sendError(fmt.Errorf("no such type: %q", msg.Type))
	}
}

// 计算过程中周期性推送场数据
func (h *Hub) pushProgress(step, total int, field *model.FieldState) {
	if h.cfg.PushInterval <= 0 || step%h.cfg.PushInterval != 0 {
		return
	}
	dt := h.svc.calc.Config().TimeStep
	h.sendJSON(MsgProgress, calculator.BuildPushData(step, total, dt, field))
}

func (h *Hub) sendJSON(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.sendError(err)
		return
	}
	h.send(model.Msg{Type: typ, Content: string(data)})
}

func (h *Hub) sendError(err error) {
	h.send(model.Msg{Type: MsgError, Content: err.Error()})
}

func (h *Hub) send(msg model.Msg) {
	select {
	case h.reply <- msg:
	case <-h.done:
	}
}

// 缺省字段使用默认工况
func parseInput(content string) (model.SimulationInput, error) {
	in := model.DefaultSimulationInput()
	if content == "" {
		return in, nil
	}
	if err := json.Unmarshal([]byte(content), &in); err != nil {
		return in, fmt.Errorf("invalid simulation input: %w", err)
	}
	return in, nil
}
