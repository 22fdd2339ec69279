package screen

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// oledRenderer renders the OLED widget.
type oledRenderer struct {
	oled *OLED

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize is the panel at 3x.
func (r *oledRenderer) MinSize() fyne.Size {
	return fyne.NewSize(Width*3, Height*3)
}

// Layout arranges the widget components.
func (r *oledRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.oled.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the presented frame.
func (r *oledRenderer) Refresh() {
	ops := r.oled.Frame()

	size := r.oled.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	scale := min(size.Width/Width, size.Height/Height)
	offX := (size.Width - Width*scale) / 2
	offY := (size.Height - Height*scale) / 2

	r.objects = r.objects[:1]
	for _, op := range ops {
		switch op.Kind {
		case OpText:
			t := canvas.NewText(op.Text, op.Color)
			t.TextStyle = fyne.TextStyle{Monospace: true}
			t.TextSize = 8 * scale
			t.Move(fyne.NewPos(offX+float32(op.X0)*scale, offY+float32(op.Y0)*scale))
			r.objects = append(r.objects, t)
		case OpRect:
			rect := canvas.NewRectangle(op.Color)
			rect.Move(fyne.NewPos(offX+float32(op.X0)*scale, offY+float32(op.Y0)*scale))
			rect.Resize(fyne.NewSize(float32(op.X1-op.X0+1)*scale, float32(op.Y1-op.Y0+1)*scale))
			r.objects = append(r.objects, rect)
		}
	}
}

// Objects returns all canvas objects.
func (r *oledRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *oledRenderer) Destroy() {}
