// Package scope is a fyne widget plotting the recent dose rate.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/uvdose/pkg/dose"
	"github.com/itohio/uvdose/pkg/sample"
)

// Point is one plotted sampling tick.
type Point struct {
	Time    time.Time
	Instant float32
	Average float32
}

// Chart plots instant and smoothed intensity over a sliding window.
type Chart struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu      sync.RWMutex
	points  []Point
	display []Point
	total   float32
	target  uint32
	alarm   bool

	// Auto-scaling
	yMax       float32
	xMin, xMax time.Time

	maxDisplayPoints int

	refresh func()
}

// New creates a chart showing the last window of frames.
func New(window time.Duration) *Chart {
	c := &Chart{
		window:           window,
		display:          make([]Point, 0, 500),
		maxDisplayPoints: 500,
		yMax:             1,
	}
	c.refresh = func() { fyne.Do(c.Refresh) }
	c.ExtendBaseWidget(c)
	return c
}

// Push adds a frame. It is safe to call from any goroutine. Frames with a
// sensor fault carry no reading and are skipped.
func (c *Chart) Push(f dose.Frame) {
	if f.Fault != nil {
		return
	}

	c.mu.Lock()
	c.points = append(c.points, Point{Time: f.Time, Instant: f.Instant, Average: f.Average})
	c.total = f.Total
	c.target = f.Target
	c.alarm = f.Alarm
	c.trim(f.Time)
	c.display = sample.Downsample(c.display, c.points, c.maxDisplayPoints)
	c.updateAutoScale()
	c.mu.Unlock()

	c.refresh()
}

// Clear drops all history.
func (c *Chart) Clear() {
	c.mu.Lock()
	c.points = c.points[:0]
	c.display = c.display[:0]
	c.updateAutoScale()
	c.mu.Unlock()

	c.refresh()
}

// Points returns a copy of the plotted points.
func (c *Chart) Points() []Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Point(nil), c.display...)
}

// Scale returns the current vertical range top and time range.
func (c *Chart) Scale() (yMax float32, xMin, xMax time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.yMax, c.xMin, c.xMax
}

// trim drops points older than the window.
func (c *Chart) trim(now time.Time) {
	if c.window <= 0 {
		return
	}
	cutoff := now.Add(-c.window)
	i := 0
	for i < len(c.points) && c.points[i].Time.Before(cutoff) {
		i++
	}
	if i > 0 {
		c.points = append(c.points[:0], c.points[i:]...)
	}
}

// updateAutoScale calculates the axes from the displayed points. Intensity
// is never negative so the Y axis starts at zero.
func (c *Chart) updateAutoScale() {
	if len(c.display) == 0 {
		c.yMax = 1
		c.xMin = time.Time{}
		c.xMax = c.xMin.Add(c.window)
		return
	}

	var top float32
	for _, p := range c.display {
		top = max(top, p.Instant, p.Average)
	}
	if top <= 0 {
		top = 1
	}
	c.yMax = top * 1.1

	c.xMin = c.display[0].Time
	c.xMax = c.display[len(c.display)-1].Time
	if c.xMax.Sub(c.xMin) < c.window {
		c.xMax = c.xMin.Add(c.window)
	}
}

// CreateRenderer creates the widget renderer.
func (c *Chart) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &chartRenderer{
		chart:   c,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
