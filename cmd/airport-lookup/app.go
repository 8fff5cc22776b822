package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/coordinates"
)

// App is the interactive airport lookup.
type App struct {
	index  *airports.Index
	source string

	// UI components
	tviewApp   *tview.Application
	form       *tview.Form
	details    *tview.TextView
	neighbors  *tview.Table
	grid       *GridView
	logs       *tview.TextView
	rootLayout *tview.Flex
}

// NewApp creates the application, optionally running an initial query.
func NewApp(index *airports.Index, source string, start coordinates.GeoPoint) *App {
	a := &App{index: index, source: source}
	a.setupUI(start)
	return a
}

// setupUI initializes the user interface
func (a *App) setupUI(start coordinates.GeoPoint) {
	a.tviewApp = tview.NewApplication()

	latText, lonText := "", ""
	if start.Valid() {
		latText = strconv.FormatFloat(start.Latitude, 'f', -1, 64)
		lonText = strconv.FormatFloat(start.Longitude, 'f', -1, 64)
	}

	a.form = tview.NewForm().
		AddInputField("Latitude", latText, 14, nil, nil).
		AddInputField("Longitude", lonText, 14, nil, nil).
		AddButton("Search", a.runSearch).
		AddButton("Quit", a.Stop)
	a.form.SetBorder(true).SetTitle(" Position ")

	a.details = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.details.SetBorder(true).SetTitle(" Nearest Airport ")

	a.neighbors = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)
	a.neighbors.SetBorder(true).SetTitle(" Candidates ")

	a.logs = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(100)
	a.logs.SetBorder(true).SetTitle(" Logs ")

	a.grid = NewGridView()

	// Left column: form, details, log
	sidebar := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.form, 9, 0, true).
		AddItem(a.details, 0, 2, false).
		AddItem(a.logs, 0, 1, false)

	// Right column: grid over candidate table
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.grid, 0, 3, false).
		AddItem(a.neighbors, 0, 2, false)

	a.rootLayout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(sidebar, 0, 2, true).
		AddItem(right, 0, 3, false)

	a.tviewApp.SetRoot(a.rootLayout, true)
	a.tviewApp.SetInputCapture(a.handleKeyboard)

	a.addLog("INFO", fmt.Sprintf("Loaded %d airports in %d cells from %s", a.index.Len(), a.index.Cells(), a.source))
	if start.Valid() {
		a.show(search(a.index, start))
	}
}

// handleKeyboard handles global keys; everything else goes to the form.
func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		a.Stop()
		return nil
	case tcell.KeyCtrlS:
		a.runSearch()
		return nil
	}
	return event
}

// runSearch reads the form and shows the result.
func (a *App) runSearch() {
	latText := a.form.GetFormItemByLabel("Latitude").(*tview.InputField).GetText()
	lonText := a.form.GetFormItemByLabel("Longitude").(*tview.InputField).GetText()

	p, err := parsePoint(latText, lonText)
	if err != nil {
		a.addLog("WARN", err.Error())
		return
	}

	a.show(search(a.index, p))
}

// show updates every panel with r.
func (a *App) show(r SearchResult) {
	a.details.SetText(describe(r))
	a.grid.SetResult(r)
	a.fillNeighbors(r)

	if r.Nearest != nil {
		a.addLog("INFO", fmt.Sprintf("%s → %s (%.1f nm)", r.Query, r.Nearest.Airport.Identifier, r.Nearest.DistanceNM))
	} else {
		a.addLog("WARN", fmt.Sprintf("%s → no airport nearby", r.Query))
	}
}

func (a *App) fillNeighbors(r SearchResult) {
	a.neighbors.Clear()

	headers := []string{"AIRPORT", "DIST NM", "BRG", "ELEV FT", "CELL"}
	for col, h := range headers {
		a.neighbors.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	for i, c := range r.Neighbors {
		color := tcell.ColorWhite
		if r.Nearest != nil && c.Airport.Identifier == r.Nearest.Airport.Identifier {
			color = tcell.ColorGreen
		}
		cell := "adjacent"
		if c.SameCell {
			cell = "same"
		}

		row := []string{
			c.Airport.Identifier,
			fmt.Sprintf("%.1f", c.DistanceNM),
			fmt.Sprintf("%03.0f°", c.BearingDeg),
			strconv.Itoa(c.Airport.Elevation),
			cell,
		}
		for col, text := range row {
			a.neighbors.SetCell(i+1, col, tview.NewTableCell(text).SetTextColor(color))
		}
	}
}

// addLog adds a log message to the log panel
func (a *App) addLog(level, message string) {
	timestamp := time.Now().Format("15:04:05")
	var color string
	switch level {
	case "ERROR":
		color = "red"
	case "WARN":
		color = "yellow"
	default:
		color = "white"
	}

	fmt.Fprintf(a.logs, "[gray]%s[-] [%s]%-5s[-] %s\n", timestamp, color, level, message)
	a.logs.ScrollToEnd()
}

// Run starts the application
func (a *App) Run() error {
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	a.tviewApp.Stop()
}
