package report

import (
	"fmt"
	"image/color"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"grainsim/model"
)

const (
	figWidth  = 12 * vg.Inch
	figHeight = 4 * vg.Inch

	histogramBins = 30
)

var (
	red    = color.RGBA{R: 220, A: 255}
	blue   = color.RGBA{B: 220, A: 255}
	purple = color.RGBA{R: 128, B: 128, A: 180}
	black  = color.RGBA{A: 255}
)

// 温度、水分沿高度的分布和风险分布直方图
func Plots(r *model.Report) ([]*plot.Plot, error) {
	f := r.Simulation.Field
	temperature, err := profilePlot("Temperature Profile (°C)", f.Position, f.Temperature, red)
	if err != nil {
		return nil, err
	}
	moisture, err := profilePlot("Moisture Profile (%)", f.Position, f.Moisture, blue)
	if err != nil {
		return nil, err
	}
	risk, err := riskPlot(r.Risk)
	if err != nil {
		return nil, err
	}
	return []*plot.Plot{temperature, moisture, risk}, nil
}

func profilePlot(title string, x, y []float64, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Height (m)"
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	l, err := plotter.NewLine(xy)
	if err != nil {
		return nil, err
	}
	l.Color = c
	p.Add(l)
	return p, nil
}

func riskPlot(r *model.RiskResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Spoilage Risk Distribution"
	p.X.Label.Text = "Risk"
	h, err := plotter.NewHist(plotter.Values(r.Samples), histogramBins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = purple
	p.Add(h)

	// 竖线的高度取直方图的最大值
	top := p.Y.Max
	marks := []struct {
		name   string
		x      float64
		c      color.Color
		dashes []vg.Length
	}{
		{"Mean", r.Mean, black, []vg.Length{vg.Points(4), vg.Points(2)}},
		{"5% CI", r.Low, red, []vg.Length{vg.Points(1), vg.Points(2)}},
		{"95% CI", r.High, red, []vg.Length{vg.Points(1), vg.Points(2)}},
	}
	for _, m := range marks {
		l, err := plotter.NewLine(plotter.XYs{{X: m.x, Y: 0}, {X: m.x, Y: top}})
		if err != nil {
			return nil, err
		}
		l.Color = m.c
		l.Dashes = m.dashes
		p.Add(l)
		p.Legend.Add(m.name, l)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// WritePNG 把三幅图横向排列写成一张 PNG
func WritePNG(w io.Writer, r *model.Report) error {
	plots, err := Plots(r)
	if err != nil {
		return err
	}
	img := vgimg.New(figWidth, figHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for j, p := range plots {
		p.Draw(canvases[0][j])
	}
	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(w)
	return err
}

func SavePNG(path string, r *model.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot %s: %w", path, err)
	}
	if err := WritePNG(file, r); err != nil {
		file.Close()
		return fmt.Errorf("draw plot %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.WithField("path", path).Info("图像已保存")
	return nil
}
