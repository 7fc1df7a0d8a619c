package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grainsim/model"
)

func testReport(level model.RiskLevel) *model.Report {
	f := model.NewFieldState(5)
	copy(f.Position, []float64{0, 1.25, 2.5, 3.75, 5})
	copy(f.Temperature, []float64{25, 30, 40, 30, 25})
	copy(f.Moisture, []float64{14, 14, 13.9, 14, 14})
	copy(f.CumulativeSpoilage, []float64{0.1, 0.2, 0.5, 0.2, 0.1})
	copy(f.CumulativeFungalIndex, []float64{0.2, 0.4, 1.0, 0.4, 0.2})
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = 0.3 + 0.4*float64(i)/float64(len(samples))
	}
	return &model.Report{
		Simulation: &model.SimulationResult{
			Input:         model.SimulationInput{Days: 10, Crop: "Wheat"},
			Field:         f,
			Steps:         4320,
			SimulatedDays: 10,
			PeakSpoilage:  0.5,
			PeakNode:      2,
		},
		Risk: &model.RiskResult{
			Samples: samples,
			Mean:    0.5,
			Low:     0.32,
			High:    0.68,
			Level:   level,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	r := testReport(model.RiskMedium)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r.Simulation.Field); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Height,Temp,Moisture,DML" {
		t.Errorf("header = %v", rows[0])
	}
	if strings.Join(rows[3], ",") != "2.5,40,13.9,0.5" {
		t.Errorf("row = %v", rows[3])
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grain_report.csv")
	if err := SaveCSV(path, testReport(model.RiskLow).Simulation.Field); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Height,Temp,Moisture,DML\n") {
		t.Errorf("data = %q", data)
	}
	if err := SaveCSV(filepath.Join(t.TempDir(), "missing", "x.csv"), nil); err == nil {
		t.Error("目录不存在时应当报错")
	}
}

func TestSummary(t *testing.T) {
	cases := map[model.RiskLevel]string{
		model.RiskLow:    "Status: LOW RISK",
		model.RiskMedium: "Status: MEDIUM RISK",
		model.RiskHigh:   "Status: HIGH RISK",
	}
	for level, want := range cases {
		s := Summary(testReport(level))
		if !strings.HasPrefix(s, want) {
			t.Errorf("%s: %q", level, s)
		}
		if !strings.Contains(s, "Mean Risk: 0.50") || !strings.Contains(s, "95% CI: [0.32, 0.68]") {
			t.Errorf("summary = %q", s)
		}
	}

	r := testReport(model.RiskHigh)
	r.Simulation.Truncated = true
	r.Simulation.Input.Days = 60
	if !strings.Contains(Summary(r), "Warning: 60.00 days requested") {
		t.Errorf("summary = %q", Summary(r))
	}
}

func TestPlots(t *testing.T) {
	plots, err := Plots(testReport(model.RiskMedium))
	if err != nil {
		t.Fatal(err)
	}
	if len(plots) != 3 {
		t.Fatalf("plots = %d", len(plots))
	}
	if plots[2].Title.Text != "Spoilage Risk Distribution" {
		t.Errorf("title = %s", plots[2].Title.Text)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testReport(model.RiskMedium)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("输出不是 PNG")
	}
}
