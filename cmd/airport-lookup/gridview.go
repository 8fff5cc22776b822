package main

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// GridView is a custom tview primitive that draws the 3x3 degree cells
// searched for the current query, with every candidate airport plotted.
type GridView struct {
	*tview.Box

	mu     sync.RWMutex
	result *SearchResult
}

// NewGridView creates an empty grid view.
func NewGridView() *GridView {
	gv := &GridView{Box: tview.NewBox()}
	gv.SetBorder(true).SetTitle(" Search Cells ")
	return gv
}

// SetResult replaces the plotted result.
func (gv *GridView) SetResult(r SearchResult) {
	gv.mu.Lock()
	defer gv.mu.Unlock()
	gv.result = &r
}

// Draw renders the grid using tcell
func (gv *GridView) Draw(screen tcell.Screen) {
	gv.Box.DrawForSubclass(screen, gv)

	x, y, width, height := gv.GetInnerRect()
	if width < 6 || height < 6 {
		return
	}

	gridStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	centerStyle := tcell.StyleDefault.Foreground(tcell.ColorLightBlue)
	airportStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	nearestStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	queryStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	gv.mu.RLock()
	defer gv.mu.RUnlock()

	if gv.result == nil {
		drawText(screen, x+1, y, "Enter a position to search", gridStyle)
		return
	}
	r := gv.result

	// Cell boundaries, 1° apart
	for i := 0; i <= 3; i++ {
		col := x + min(i*width/3, width-1)
		row := y + min(i*height/3, height-1)
		drawLine(screen, col, y, col, y+height-1, '│', gridStyle)
		drawLine(screen, x, row, x+width-1, row, '─', gridStyle)
	}

	// Highlight the query's own cell and label the corners
	drawText(screen, x+width/3+1, y+height/3+1, fmt.Sprintf("%d°,%d°", r.Cell.Lat, r.Cell.Lon), centerStyle)
	drawText(screen, x+1, y+1, fmt.Sprintf("%d°,%d°", r.Cell.Lat+1, r.Cell.Lon-1), gridStyle)

	for _, c := range r.Neighbors {
		pt, ok := project(c.Airport.Location, r.Cell, width, height)
		if !ok {
			continue
		}

		style := airportStyle
		if r.Nearest != nil && c.Airport.Identifier == r.Nearest.Airport.Identifier {
			style = nearestStyle
			if qp, ok := project(r.Query, r.Cell, width, height); ok {
				drawLine(screen, x+qp.X, y+qp.Y, x+pt.X, y+pt.Y, '·', nearestStyle)
			}
		}
		screen.SetContent(x+pt.X, y+pt.Y, '✈', nil, style)
		drawText(screen, x+pt.X+2, y+pt.Y, c.Airport.Identifier, style)
	}

	if qp, ok := project(r.Query, r.Cell, width, height); ok {
		screen.SetContent(x+qp.X, y+qp.Y, '+', nil, queryStyle)
	}
}

// drawLine draws a line using Bresenham's algorithm
func drawLine(screen tcell.Screen, x0, y0, x1, y1 int, char rune, style tcell.Style) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		screen.SetContent(x0, y0, char, nil, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
