package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelHeight   = 15.0
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
	// setY moves the widget to follow the panel scroll.
	setY(y float64)
}

// GetHeight returns the slider height plus the label space.
func (s *Slider) GetHeight() float64 { return s.H + 25 }
func (s *Slider) setY(y float64)     { s.Y = y }

// GetHeight returns the box size plus a small margin.
func (c *Checkbox) GetHeight() float64 { return c.Size + 5 }
func (c *Checkbox) setY(y float64)     { c.Y = y }

// GetHeight returns the button height plus a small margin.
func (b *Button) GetHeight() float64 { return b.Height + 5 }
func (b *Button) setY(y float64)     { b.Y = y - labelHeight }

// UIPanel manages a collection of UI widgets in a scrollable panel
type UIPanel struct {
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions
	Title         string
	Widgets       []UIWidget
	Labels        []string // Labels for widgets, empty for widgets that draw their own
	ScrollOffset  float64  // Current scroll position

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
}

// PanelSection groups consecutive widgets under a header.
type PanelSection struct {
	Title      string
	StartIndex int // Widget index where this section starts
	EndIndex   int // Widget index where this section ends (exclusive)
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64, title string) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection adds a section header
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, PanelSection{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   len(p.Widgets),
	})
}

// EndSection closes the current section
func (p *UIPanel) EndSection() {
	if len(p.sections) > 0 {
		p.sections[len(p.sections)-1].EndIndex = len(p.Widgets)
	}
}

// AddSlider adds a slider widget to the panel
func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	slider := NewSlider(p.X+10, p.Y+p.nextYOffset()+20, p.Width-20, label, min, max, value)
	p.add(slider, label)
	return slider
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	checkbox := NewCheckbox(p.X+10, p.Y+p.nextYOffset()+20, label, value)
	p.add(checkbox, "")
	return checkbox
}

// AddButton adds a full width button to the panel
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	button := NewButton(p.X+10, p.Y+p.nextYOffset()+20, p.Width-20, 24, label, onClick)
	p.add(button, "")
	return button
}

func (p *UIPanel) add(w UIWidget, label string) {
	p.Widgets = append(p.Widgets, w)
	p.Labels = append(p.Labels, label)
}

// nextYOffset is the offset of the next widget from the top of the panel.
func (p *UIPanel) nextYOffset() float64 {
	offset := float64(len(p.sections)) * sectionHeight
	for _, widget := range p.Widgets {
		offset += widget.GetHeight()
	}
	return offset
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		p.scroll(dy)
	}
	for _, widget := range p.Widgets {
		widget.Update()
	}
}

func (p *UIPanel) scroll(dy float64) {
	p.ScrollOffset -= dy * 20
	maxScroll := max(p.ContentHeight()-p.Height+40, 0)
	p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	currentY := p.Y + titleHeight - p.ScrollOffset
	for _, section := range p.sections {
		if p.visible(currentY) {
			vector.FillRect(screen,
				float32(p.X+5), float32(currentY),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, section.Title, int(p.X+10), int(currentY+5))
		}
		currentY += sectionHeight

		for i := section.StartIndex; i < section.EndIndex && i < len(p.Widgets); i++ {
			widget := p.Widgets[i]
			widget.setY(currentY + labelHeight)
			if p.visible(currentY) {
				if p.Labels[i] != "" {
					ebitenutil.DebugPrintAt(screen, p.Labels[i], int(p.X+10), int(currentY))
				}
				widget.Draw(screen)
			}
			currentY += widget.GetHeight()
		}
	}
}

func (p *UIPanel) visible(y float64) bool {
	return y >= p.Y-titleHeight && y <= p.Y+p.Height
}

// ContentHeight is the height needed to show every section and widget.
func (p *UIPanel) ContentHeight() float64 {
	return titleHeight + p.nextYOffset()
}
