//go:build rp2040

package main

import (
	"image/color"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/itohio/uvdose/pkg/dose"
)

// baseline moves a top-left text position to the font baseline.
const baseline = 7

// oled draws dose frames on an SSD1306.
type oled struct {
	dev *ssd1306.Device
}

var _ dose.Display = (*oled)(nil)

func (o *oled) Clear() {
	o.dev.ClearBuffer()
}

func (o *oled) DrawText(text string, x, y int16, c color.RGBA) {
	tinyfont.WriteLine(o.dev, &proggy.TinySZ8pt7b, x, y+baseline, text, c)
}

func (o *oled) FillRect(x0, y0, x1, y1 int16, c color.RGBA) {
	tinydraw.FilledRectangle(o.dev, x0, y0, x1-x0+1, y1-y0+1, c)
}

func (o *oled) Present() error {
	return o.dev.Display()
}
