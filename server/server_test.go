package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gopkg.in/ini.v1"

	"grainsim/calculator"
	"grainsim/model"
	"grainsim/risk"
	"grainsim/silo"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	calc, err := calculator.NewCalculator(nil, calculator.DefaultConfig(), silo.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.PushInterval = 1000
	return NewServer(cfg, calc, risk.NewSeededEstimator(7))
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSimulateAPI(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s.Handler(), "/api/simulate", `{"days": 2, "crop": "Rice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var rep model.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Simulation.Input.Crop != "Rice" || rep.Simulation.Steps != 864 {
		t.Errorf("simulation = %+v", rep.Simulation.Input)
	}
	// 缺省字段取默认值
	if rep.Simulation.Input.HotspotTemperature != 40 || rep.Simulation.Input.BaseMoisture != 14 {
		t.Errorf("input = %+v", rep.Simulation.Input)
	}
	if len(rep.Simulation.Field.Temperature) != calculator.DefaultNodes {
		t.Errorf("nodes = %d", len(rep.Simulation.Field.Temperature))
	}
	if !(rep.Risk.Mean > 0 && rep.Risk.Mean < 1) {
		t.Errorf("mean = %v", rep.Risk.Mean)
	}
}

func TestSimulateAPIErrors(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		body string
		code int
	}{
		{`{"crop": "Barley"}`, http.StatusNotFound},
		{`{"days": -1}`, http.StatusBadRequest},
		{`{"base_moisture": -5}`, http.StatusBadRequest},
		{`{"days": `, http.StatusBadRequest},
	}
	for _, c := range cases {
		rec := post(t, s.Handler(), "/api/simulate", c.body)
		if rec.Code != c.code {
			t.Errorf("%s: code = %d, want %d", c.body, rec.Code, c.code)
		}
		var e ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
			t.Fatal(err)
		}
		if e.Code != c.code || e.Message == "" {
			t.Errorf("%s: error = %+v", c.body, e)
		}
	}
}

func TestSimulateCSV(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s.Handler(), "/api/simulate/csv", `{"days": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != calculator.DefaultNodes+1 || lines[0] != "Height,Temp,Moisture,DML" {
		t.Errorf("lines = %d, header = %q", len(lines), lines[0])
	}
	if rec.Header().Get("Content-Type") != "text/csv" {
		t.Errorf("content type = %s", rec.Header().Get("Content-Type"))
	}
}

func TestCompareAPI(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s.Handler(), "/api/compare", `{"days": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var replies []ComparisonReply
	if err := json.NewDecoder(rec.Body).Decode(&replies); err != nil {
		t.Fatal(err)
	}
	if len(replies) != 3 {
		t.Fatalf("replies = %d", len(replies))
	}
	for _, r := range replies {
		if r.Error != "" || r.Report == nil || r.Report.Simulation.Input.Crop != r.Crop {
			t.Errorf("reply = %+v", r)
		}
	}
}

func TestCropsAPI(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var crops []model.CropProfile
	if err := json.NewDecoder(rec.Body).Decode(&crops); err != nil {
		t.Fatal(err)
	}
	if len(crops) != 3 || crops[2].Name != "Wheat" || crops[2].Density != 780 {
		t.Errorf("crops = %+v", crops)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	post(t, s.Handler(), "/api/simulate", `{"days": 1}`)

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: code = %d", path, rec.Code)
		}
		if path == "/metrics" {
			body := rec.Body.String()
			for _, name := range []string{
				"grainsim_simulations_total",
				"grainsim_api_requests_total",
				"grainsim_risk_mean",
			} {
				if !strings.Contains(body, name) {
					t.Errorf("metrics missing %s", name)
				}
			}
		}
	}
}

func TestLoadConfig(t *testing.T) {
	file, err := ini.Load([]byte("[server]\nAddr = :8080\nPushInterval = 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig(file)
	if cfg.Addr != ":8080" || cfg.PushInterval != 0 || cfg.ReadBufferSize != 1024 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func dial(t *testing.T, s *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatal(err)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) model.Msg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var msg model.Msg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestHubSimulate(t *testing.T) {
	s := newTestServer(t)
	conn, closeFn := dial(t, s)
	defer closeFn()

	if err := conn.WriteJSON(model.Msg{Type: MsgSimulate, Content: `{"days": 10}`}); err != nil {
		t.Fatal(err)
	}
	// 4320 步，每 1000 步推送一次
	var progress []calculator.PushData
	for {
		msg := readMsg(t, conn)
		if msg.Type == MsgProgress {
			var p calculator.PushData
			if err := json.Unmarshal([]byte(msg.Content), &p); err != nil {
				t.Fatal(err)
			}
			progress = append(progress, p)
			continue
		}
		if msg.Type != MsgResult {
			t.Fatalf("msg = %+v", msg)
		}
		var rep model.Report
		if err := json.Unmarshal([]byte(msg.Content), &rep); err != nil {
			t.Fatal(err)
		}
		if rep.Simulation.Steps != 4320 {
			t.Errorf("steps = %d", rep.Simulation.Steps)
		}
		break
	}
	if len(progress) != 4 {
		t.Fatalf("progress = %d", len(progress))
	}
	if progress[0].Step != 1000 || progress[3].Step != 4000 || progress[0].Total != 4320 {
		t.Errorf("progress = %+v", progress[0])
	}
	if got := len(calculator.Decode(progress[3].Temperature)); got != calculator.DefaultNodes {
		t.Errorf("nodes = %d", got)
	}
}

func TestHubMessages(t *testing.T) {
	s := newTestServer(t)
	conn, closeFn := dial(t, s)
	defer closeFn()

	cases := []struct {
		msg  model.Msg
		want string
	}{
		{model.Msg{Type: MsgCrops}, MsgCrops},
		{model.Msg{Type: MsgSimulate, Content: `{"crop": "Barley"}`}, MsgError},
		{model.Msg{Type: MsgSimulate, Content: `not json`}, MsgError},
		{model.Msg{Type: MsgCompare, Content: `{"days": 0.5}`}, MsgComparison},
		{model.Msg{Type: "stop"}, MsgError},
	}
	for _, c := range cases {
		if err := conn.WriteJSON(c.msg); err != nil {
			t.Fatal(err)
		}
		msg := readMsg(t, conn)
		if msg.Type != c.want {
			t.Errorf("%s: reply %s, want %s (%s)", c.msg.Type, msg.Type, c.want, msg.Content)
		}
	}
}

func TestSimulatePNG(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s.Handler(), "/api/simulate/png", `{"days": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("输出不是 PNG")
	}
}
