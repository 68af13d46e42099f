package sim

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/lavapanel/internal/bar"
)

var (
	styleButton  = tcell.StyleDefault.Reverse(true)
	styleHovered = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	stylePressed = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow).Bold(true)
	styleSpacer  = tcell.StyleDefault.Dim(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHelp    = tcell.StyleDefault.Dim(true)
)

const helpText = "click/wheel on the bar | t: touch | r: reload | q: quit"

func (s *Simulator) draw() {
	s.screen.Clear()
	if b, ok := s.bar(); ok {
		for _, p := range b.Placements() {
			s.drawPlacement(p)
		}
	}

	_, height := s.screen.Size()
	mode := "pointer"
	if s.tr.Touch() {
		mode = "touch"
	}
	status := fmt.Sprintf("[%s] %s", mode, s.Status())
	s.text(0, height-2, status, styleStatus)
	s.text(0, height-1, helpText, styleHelp)
	s.screen.Show()
}

// drawPlacement fills the cells covered by one item.
func (s *Simulator) drawPlacement(p bar.Placement) {
	vertical := s.engine.Config().Layout.Vertical
	cw, ch := s.opts.CellWidth, s.opts.CellHeight
	across := float64(s.engine.Config().Layout.IconSize)

	var x0, y0, x1, y1 int
	if vertical {
		x0, x1 = 0, ceilDiv(across, cw)
		y0, y1 = int(float64(p.Offset)/ch), ceilDiv(float64(p.Offset+p.Length), ch)
	} else {
		x0, x1 = int(float64(p.Offset)/cw), ceilDiv(float64(p.Offset+p.Length), cw)
		y0, y1 = 0, ceilDiv(across, ch)
	}

	style := styleSpacer
	fill := '·'
	if p.Item.IsButton() {
		style, fill = styleButton, ' '
		if in, ok := s.engine.Store().Instance(p.Instance); ok {
			switch {
			case in.Pressed():
				style = stylePressed
			case in.Hovered():
				style = styleHovered
			}
		}
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.screen.SetContent(x, y, fill, nil, style)
		}
	}
	if p.Item.IsButton() {
		s.text(x0, y0, strconv.Itoa(int(p.Item.ID)), style)
	}
}

func (s *Simulator) text(x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func ceilDiv(v, cell float64) int {
	n := int(v / cell)
	if float64(n)*cell < v {
		n++
	}
	return n
}
