package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	gridColor    = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	instantColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	averageColor = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	alarmColor   = color.RGBA{R: 255, G: 60, B: 60, A: 255}
)

// chartRenderer renders the chart widget.
type chartRenderer struct {
	chart *Chart

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

func (r *chartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

func (r *chartRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.chart.BaseWidget.Refresh()
	}
}

func (r *chartRenderer) Refresh() {
	r.chart.mu.RLock()
	points := append([]Point(nil), r.chart.display...)
	total := r.chart.total
	target := r.chart.target
	alarm := r.chart.alarm
	yMax := r.chart.yMax
	xMin := r.chart.xMin
	xMax := r.chart.xMax
	r.chart.mu.RUnlock()

	size := r.chart.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	const (
		marginLeft   = 50
		marginRight  = 20
		marginTop    = 20
		marginBottom = 30
	)
	plot := plotArea{
		x: marginLeft, y: marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBottom,
		yMax: yMax, xMin: xMin, xMax: xMax,
	}

	r.drawGrid(plot)
	r.drawLine(plot, points, func(p Point) float32 { return p.Instant }, instantColor, 1.5)
	r.drawLine(plot, points, func(p Point) float32 { return p.Average }, averageColor, 2.5)
	r.drawTotal(plot, total, target, alarm)
}

// plotArea maps data coordinates to widget coordinates.
type plotArea struct {
	x, y, w, h float32
	yMax       float32
	xMin, xMax time.Time
}

func (p plotArea) pos(t time.Time, v float32) fyne.Position {
	span := p.xMax.Sub(p.xMin).Seconds()
	var fx float32
	if span > 0 {
		fx = float32(t.Sub(p.xMin).Seconds() / span)
	}
	return fyne.NewPos(p.x+fx*p.w, p.y+p.h-v/p.yMax*p.h)
}

func (r *chartRenderer) drawGrid(p plotArea) {
	const hLines, vLines = 5, 6
	for i := range hLines + 1 {
		y := p.y + float32(i)*p.h/hLines
		r.add(gridLine(p.x, y, p.x+p.w, y))

		value := p.yMax - float32(i)*p.yMax/hLines
		text := canvas.NewText(fmt.Sprintf("%.1f", value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.add(text)
	}
	for i := range vLines + 1 {
		x := p.x + float32(i)*p.w/vLines
		r.add(gridLine(x, p.y, x, p.y+p.h))

		offset := time.Duration(i) * p.xMax.Sub(p.xMin) / vLines
		text := canvas.NewText(formatOffset(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
		r.add(text)
	}
}

func (r *chartRenderer) drawLine(p plotArea, points []Point, value func(Point) float32, c color.Color, width float32) {
	for i := 1; i < len(points); i++ {
		line := canvas.NewLine(c)
		line.Position1 = p.pos(points[i-1].Time, value(points[i-1]))
		line.Position2 = p.pos(points[i].Time, value(points[i]))
		line.StrokeWidth = width
		r.add(line)
	}
}

func (r *chartRenderer) drawTotal(p plotArea, total float32, target uint32, alarm bool) {
	c := color.Color(labelColor)
	if alarm {
		c = alarmColor
	}
	text := canvas.NewText(fmt.Sprintf("Total %.0f / %d", total, target), c)
	text.TextSize = 12
	text.Move(fyne.NewPos(p.x+10, p.y+5))
	r.add(text)
}

func (r *chartRenderer) add(o fyne.CanvasObject) {
	r.objects = append(r.objects, o)
}

func (r *chartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *chartRenderer) Destroy() {}

func gridLine(x1, y1, x2, y2 float32) *canvas.Line {
	line := canvas.NewLine(gridColor)
	line.Position1 = fyne.NewPos(x1, y1)
	line.Position2 = fyne.NewPos(x2, y2)
	line.StrokeWidth = 1
	return line
}

func formatOffset(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
