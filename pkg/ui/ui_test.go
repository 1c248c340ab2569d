package ui

import (
	"testing"

	"go.viam.com/test"
)

func TestSlider(t *testing.T) {
	s := NewSlider(100, 0, 200, "speed", 0, 50, 80)
	test.That(t, s.Value, test.ShouldEqual, 50.0)
	test.That(t, s.Ratio(), test.ShouldEqual, 1.0)

	test.That(t, s.valueAt(100), test.ShouldEqual, 0.0)
	test.That(t, s.valueAt(200), test.ShouldEqual, 25.0)
	test.That(t, s.valueAt(-50), test.ShouldEqual, 0.0)
	test.That(t, s.valueAt(1000), test.ShouldEqual, 50.0)

	s.set(25)
	test.That(t, s.Changed(), test.ShouldBeTrue)
	test.That(t, s.Ratio(), test.ShouldEqual, 0.5)

	empty := NewSlider(0, 0, 100, "fixed", 3, 3, 3)
	test.That(t, empty.Ratio(), test.ShouldEqual, 0.0)
}

func TestCheckbox_TogglesOncePerPress(t *testing.T) {
	c := NewCheckbox(0, 0, "pause", false)
	c.press(5, 5, true)
	test.That(t, c.Value, test.ShouldBeTrue)
	c.press(5, 5, true)
	test.That(t, c.Value, test.ShouldBeTrue)
	c.press(5, 5, false)
	c.press(5, 5, true)
	test.That(t, c.Value, test.ShouldBeFalse)
	c.press(50, 50, true)
	test.That(t, c.Value, test.ShouldBeFalse)
}

func TestCheckbox_LabelIsClickable(t *testing.T) {
	c := NewCheckbox(10, 10, "pause", false)
	labelX := c.X + c.Size + 8 + 2*glyphWidth
	test.That(t, c.isOver(labelX, 15), test.ShouldBeTrue)
	c.press(labelX, 15, true)
	test.That(t, c.Value, test.ShouldBeTrue)

	c.press(c.X+c.width()+1, 15, true)
	test.That(t, c.Value, test.ShouldBeTrue)

	bare := NewCheckbox(10, 10, "", false)
	test.That(t, bare.width(), test.ShouldEqual, bare.Size)
	test.That(t, bare.isOver(labelX, 15), test.ShouldBeFalse)
}

func TestButton_ClicksOncePerPress(t *testing.T) {
	clicks := 0
	b := NewButton(10, 10, 100, 20, "Regenerate", func() { clicks++ })
	b.press(20, 20, true)
	b.press(20, 20, true)
	test.That(t, clicks, test.ShouldEqual, 1)
	b.press(20, 20, false)
	b.press(20, 20, true)
	test.That(t, clicks, test.ShouldEqual, 2)
	b.press(500, 20, true)
	test.That(t, clicks, test.ShouldEqual, 2)
}

func TestUIPanel_Layout(t *testing.T) {
	p := NewUIPanel(10, 10, 280, 100, "Flocking")
	p.AddSection("Ranges")
	first := p.AddSlider("Separation", 0, 50, 8)
	second := p.AddSlider("Alignment", 0, 50, 20)
	p.EndSection()
	p.AddSection("Simulation")
	pause := p.AddCheckbox("Pause", false)
	p.AddButton("Regenerate", nil)
	p.EndSection()

	test.That(t, len(p.Widgets), test.ShouldEqual, 4)
	test.That(t, p.Labels[2], test.ShouldEqual, "")
	test.That(t, p.Labels[3], test.ShouldEqual, "")
	test.That(t, pause.Label, test.ShouldEqual, "Pause")
	test.That(t, second.Y-first.Y, test.ShouldEqual, first.GetHeight())
	test.That(t, pause.Y, test.ShouldBeGreaterThan, second.Y)

	want := titleHeight + 2*sectionHeight + 2*first.GetHeight() + pause.GetHeight() + p.Widgets[3].GetHeight()
	test.That(t, p.ContentHeight(), test.ShouldEqual, want)

	p.scroll(-100)
	test.That(t, p.ScrollOffset, test.ShouldEqual, p.ContentHeight()-p.Height+40)
	p.scroll(1000)
	test.That(t, p.ScrollOffset, test.ShouldEqual, 0.0)
}
