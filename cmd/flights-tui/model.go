package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// Rows reserved for header, detail pane and help line.
const chromeHeight = 14

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	rowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	partialStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	detailStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

type model struct {
	flights []tracking.Flight
	index   *airports.Index // nil when no airport list is available
	source  string

	visible  []int // indexes into flights after filtering
	selected int   // position in visible
	offset   int   // first visible row on screen
	height   int

	filter       string
	inputMode    bool
	inputBuffer  string
	completeOnly bool
}

func newModel(flights []tracking.Flight, index *airports.Index, source string) model {
	m := model{
		flights: flights,
		index:   index,
		source:  source,
		height:  40,
	}
	m.applyFilter()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

// applyFilter recomputes the visible rows and keeps the selection in range.
func (m *model) applyFilter() {
	m.visible = nil
	needle := strings.ToUpper(m.filter)
	for i, f := range m.flights {
		if needle != "" && !strings.Contains(strings.ToUpper(f.AircraftIdentifier), needle) {
			continue
		}
		if m.completeOnly && !(f.HasDeparture() && f.HasArrival()) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	m.selected = min(m.selected, max(len(m.visible)-1, 0))
	m.scroll()
}

func (m *model) pageSize() int {
	return max(m.height-chromeHeight, 3)
}

// scroll keeps the selected row on screen.
func (m *model) scroll() {
	page := m.pageSize()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+page {
		m.offset = m.selected - page + 1
	}
	m.offset = max(m.offset, 0)
}

func (m *model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.visible)-1)
	m.scroll()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.scroll()

	case tea.KeyMsg:
		// Filter entry
		if m.inputMode {
			switch msg.String() {
			case "enter":
				m.filter = strings.TrimSpace(m.inputBuffer)
				m.inputMode = false
				m.selected = 0
				m.applyFilter()
			case "esc":
				m.inputMode = false
				m.inputBuffer = ""
			case "backspace":
				if len(m.inputBuffer) > 0 {
					m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
				}
			default:
				if len(msg.String()) == 1 {
					m.inputBuffer += msg.String()
				}
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.pageSize())
		case "pgdown", " ":
			m.move(m.pageSize())
		case "home", "g":
			m.move(-len(m.visible))
		case "end", "G":
			m.move(len(m.visible))
		case "/":
			m.inputMode = true
			m.inputBuffer = m.filter
		case "c":
			m.completeOnly = !m.completeOnly
			m.applyFilter()
		case "esc":
			m.filter = ""
			m.completeOnly = false
			m.applyFilter()
		}
	}

	return m, nil
}

// current returns the selected flight, if any.
func (m model) current() (tracking.Flight, bool) {
	if len(m.visible) == 0 {
		return tracking.Flight{}, false
	}
	return m.flights[m.visible[m.selected]], true
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("ADS-B FLIGHT BROWSER"))
	s.WriteString("  ")
	s.WriteString(helpStyle.Render(m.source))
	s.WriteString("\n\n")

	if m.inputMode {
		s.WriteString(promptStyle.Render("Filter by aircraft identifier:"))
		s.WriteString("\n")
		s.WriteString(inputStyle.Render("> " + m.inputBuffer + "_"))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("ENTER: Apply  ESC: Cancel"))
		return s.String()
	}

	s.WriteString(m.renderSummary())
	s.WriteString("\n\n")
	s.WriteString(m.renderTable())
	s.WriteString("\n")
	s.WriteString(m.renderDetail())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: Move  PgUp/PgDn: Page  /: Filter  c: Complete only  ESC: Clear  q: Quit"))

	return s.String()
}

func (m model) renderSummary() string {
	aircraft := make(map[string]struct{})
	complete := 0
	for _, i := range m.visible {
		f := m.flights[i]
		aircraft[f.AircraftIdentifier] = struct{}{}
		if f.HasDeparture() && f.HasArrival() {
			complete++
		}
	}

	line := fmt.Sprintf("Flights: %d/%d  Aircraft: %d  Complete: %d  Partial: %d",
		len(m.visible), len(m.flights), len(aircraft), complete, len(m.visible)-complete)
	if m.filter != "" {
		line += fmt.Sprintf("  Filter: %q", m.filter)
	}
	if m.completeOnly {
		line += "  [complete only]"
	}
	return headerStyle.Render(line)
}

func (m model) renderTable() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("  %-10s %-8s %-20s %-8s %-20s %s",
		"AIRCRAFT", "FROM", "DEPARTED", "TO", "ARRIVED", "DURATION")))
	s.WriteString("\n")

	if len(m.visible) == 0 {
		s.WriteString(partialStyle.Render("  No flights"))
		s.WriteString("\n")
		return s.String()
	}

	end := min(m.offset+m.pageSize(), len(m.visible))
	for row := m.offset; row < end; row++ {
		f := m.flights[m.visible[row]]
		line := fmt.Sprintf("%-10s %-8s %-20s %-8s %-20s %s",
			f.AircraftIdentifier,
			orDash(f.DepartureAirport), formatTime(f.DepartureTime),
			orDash(f.ArrivalAirport), formatTime(f.ArrivalTime),
			formatDuration(f))

		switch {
		case row == m.selected:
			s.WriteString(selectedStyle.Render("▶ " + line))
		case f.HasDeparture() && f.HasArrival():
			s.WriteString(rowStyle.Render("  " + line))
		default:
			s.WriteString(partialStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}
	return s.String()
}

func (m model) renderDetail() string {
	f, ok := m.current()
	if !ok {
		return ""
	}

	lines := []string{
		headerStyle.Render("Flight of " + f.AircraftIdentifier),
		"Departure: " + m.describeEndpoint(f.DepartureAirport, f.DepartureTime),
		"Arrival:   " + m.describeEndpoint(f.ArrivalAirport, f.ArrivalTime),
		"Duration:  " + formatDuration(f),
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}

// describeEndpoint renders one end of a flight, with airport details when known.
func (m model) describeEndpoint(airport *string, at *time.Time) string {
	if airport == nil && at == nil {
		return "not observed"
	}

	desc := formatTime(at)
	if airport == nil {
		return desc + " at unknown airport"
	}
	desc += " at " + *airport
	if m.index != nil {
		if a, ok := m.index.Lookup(*airport); ok {
			desc += fmt.Sprintf(" %s, elev %d ft", a.Location, a.Elevation)
		}
	}
	return desc
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatDuration(f tracking.Flight) string {
	if f.DepartureTime == nil || f.ArrivalTime == nil {
		return "-"
	}
	return f.ArrivalTime.Sub(*f.DepartureTime).Round(time.Minute).String()
}
