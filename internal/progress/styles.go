package progress

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LineWidth is the column at which step lines are truncated.
const LineWidth = 80

const (
	Red    = "red"
	Green  = "green"
	Yellow = "yellow"
	Blue   = "blue"
	Purple = "purple"
	Cyan   = "cyan"
)

// Palette maps style names to SGR foreground codes. It has no setters.
type Palette struct {
	codes map[string]int
}

// DefaultPalette returns the standard six-colour palette.
func DefaultPalette() Palette {
	return Palette{codes: map[string]int{
		Red:    31,
		Green:  32,
		Yellow: 33,
		Blue:   34,
		Purple: 35,
		Cyan:   36,
	}}
}

// Code returns the SGR code for name.
func (p Palette) Code(name string) (int, bool) {
	c, ok := p.codes[name]
	return c, ok
}

// Style returns a foreground style for name; unknown names are unstyled.
func (p Palette) Style(name string) lipgloss.Style {
	code, ok := p.codes[name]
	if !ok {
		return lipgloss.NewStyle()
	}
	// SGR 31-36 are the basic ANSI colours 1-6.
	return lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(code - 30)))
}

// Formatter renders step notices.
type Formatter struct {
	Palette Palette
	Width   int
}

// DefaultFormatter uses DefaultPalette and LineWidth.
func DefaultFormatter() Formatter {
	return Formatter{Palette: DefaultPalette(), Width: LineWidth}
}

func (f Formatter) Running(name string) string {
	return f.render(Yellow, "🔄 "+name)
}

func (f Formatter) Done(name string) string {
	return f.render(Green, "✅ "+name)
}

func (f Formatter) Failed(name string, err error) string {
	msg := "❌ " + name
	if err != nil {
		msg += ": " + strings.Join(strings.Fields(err.Error()), " ")
	}
	return f.render(Red, msg)
}

// Frame renders a spinner frame in front of a running step.
func (f Formatter) Frame(frame, name string) string {
	return f.render(Cyan, frame) + " " + f.render(Yellow, name)
}

func (f Formatter) render(style, s string) string {
	st := f.Palette.Style(style)
	if f.Width > 0 {
		st = st.MaxWidth(f.Width)
	}
	return st.Render(s)
}
