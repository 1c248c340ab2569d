package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// glyphWidth is the advance of the debug font in pixels.
const glyphWidth = 6

// Checkbox toggles a boolean. Its label is drawn to the right of the box and
// is part of the clickable area.
type Checkbox struct {
	Label   string
	Value   bool
	X, Y    float64
	Size    float64
	clicked bool

	CheckColor color.RGBA
	HoverColor color.RGBA
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label:      label,
		Value:      value,
		X:          x,
		Y:          y,
		Size:       16,
		CheckColor: color.RGBA{R: 100, G: 200, B: 100, A: 255},
		HoverColor: color.RGBA{R: 70, G: 80, B: 95, A: 255},
	}
}

// Update toggles the value on a press inside the box or its label. Holding
// the button down does not toggle again.
func (c *Checkbox) Update() {
	mx, my := ebiten.CursorPosition()
	c.press(float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

func (c *Checkbox) press(x, y float64, pressed bool) {
	if c.isOver(x, y) && pressed {
		if !c.clicked {
			c.Value = !c.Value
		}
		c.clicked = true
	} else {
		c.clicked = false
	}
}

// width spans the box and, when there is one, the label after it.
func (c *Checkbox) width() float64 {
	if c.Label == "" {
		return c.Size
	}
	return c.Size + 8 + float64(glyphWidth*len(c.Label))
}

func (c *Checkbox) isOver(x, y float64) bool {
	return x >= c.X && x <= c.X+c.width() && y >= c.Y && y <= c.Y+c.Size
}

// Draw renders the box, its check mark and the label.
func (c *Checkbox) Draw(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	if c.isOver(float64(mx), float64(my)) {
		vector.FillRect(screen,
			float32(c.X-2), float32(c.Y-2),
			float32(c.width()+4), float32(c.Size+4),
			c.HoverColor, true)
	}

	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			c.CheckColor,
			true)
	}

	if c.Label != "" {
		ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+8), int(c.Y))
	}
}
