// Package tui is a terminal explorer for a receipt scene. Terminal cells
// are mapped onto a virtual screen of cellW x cellH units per cell, so the
// scene sees ordinary screen coordinates.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/nav"
	"github.com/audth517/Japan-Receipt-Map/pkg/render"
	"github.com/audth517/Japan-Receipt-Map/pkg/scene"
	"github.com/audth517/Japan-Receipt-Map/pkg/stats"
)

const (
	cellW = 8.0
	cellH = 16.0

	headerRows = 2
	footerRows = 2
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	pointStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	hoverStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
)

type tickMsg time.Time

type press struct {
	x, y int
	at   time.Time
}

// Model is the bubbletea model. It owns its scene; nothing else may touch
// it while the program runs.
type Model struct {
	scene  *scene.State
	cfg    *config.SceneConfig
	width  int
	height int

	pending *press
	window  time.Duration
	tickHz  int
	now     func() time.Time
}

// New wraps a scene.
func New(st *scene.State) *Model {
	cfg := st.Config()
	return &Model{
		scene:  st,
		cfg:    cfg,
		window: time.Duration(cfg.Interaction.DoubleClickMS) * time.Millisecond,
		tickHz: cfg.Server.TickHz,
		now:    time.Now,
	}
}

// Run starts a full-screen program with mouse motion reporting.
func Run(st *scene.State) error {
	p := tea.NewProgram(New(st), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m *Model) tick() tea.Cmd {
	hz := m.tickHz
	if hz <= 0 {
		hz = 60
	}
	return tea.Tick(time.Second/time.Duration(hz), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd { return m.tick() }

// toScreen maps a terminal cell to the centre of its virtual screen area.
func toScreen(cx, cy int) (float64, float64) {
	return (float64(cx) + 0.5) * cellW, (float64(cy-headerRows) + 0.5) * cellH
}

func (m *Model) mapRows() int {
	return max(1, m.height-headerRows-footerRows)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scene.Resize(float64(max(1, m.width))*cellW, float64(m.mapRows())*cellH)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			// Same as clicking empty background.
			m.pending = nil
			m.scene.Click(math.Inf(-1), math.Inf(-1))
		}

	case tea.MouseMsg:
		m.mouse(msg)

	case tickMsg:
		m.flush(time.Time(msg))
		m.scene.Tick()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	if msg.Y < headerRows || msg.Y >= headerRows+m.mapRows() {
		return
	}
	sx, sy := toScreen(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.scene.PointerMove(sx, sy)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.scene.PointerMove(sx, sy)
		now := m.now()
		if p := m.pending; p != nil && p.x == msg.X && p.y == msg.Y && now.Sub(p.at) <= m.window {
			m.pending = nil
			m.scene.DoubleClick(sx, sy)
			return
		}
		m.flush(now.Add(m.window + 1))
		m.pending = &press{x: msg.X, y: msg.Y, at: now}
	}
}

// flush turns a pending press into a click once the double-click window
// has passed.
func (m *Model) flush(now time.Time) {
	p := m.pending
	if p == nil || now.Sub(p.at) <= m.window {
		return
	}
	m.pending = nil
	m.scene.Click(toScreen(p.x, p.y))
}

type cell struct {
	r     rune
	style *lipgloss.Style
}

type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, r rune, s *lipgloss.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r, s}
}

func (c *canvas) text(x, y int, s string, st *lipgloss.Style) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, st)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			st := row[x].style
			end := x
			var run strings.Builder
			for end < len(row) && row[end].style == st {
				run.WriteRune(row[end].r)
				end++
			}
			if st == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(st.Render(run.String()))
			}
			x = end
		}
	}
	return b.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

func (m *Model) drawMap(snap *scene.Snapshot) *canvas {
	c := newCanvas(max(1, m.width), m.mapRows())
	v := snap.View
	toCell := func(x, y float64) (int, int) {
		return int(math.Floor((x*v.Scale + v.OffsetX) / cellW)), int(math.Floor((y*v.Scale + v.OffsetY) / cellH))
	}

	for _, reg := range snap.Regions {
		st := &borderStyle
		if reg.Focused {
			st = &focusStyle
		} else if snap.Fade > 0.5 {
			st = &dimStyle
		}
		x0, y0 := toCell(reg.Rect.X, reg.Rect.Y)
		x1, y1 := toCell(reg.Rect.X+reg.Rect.W, reg.Rect.Y+reg.Rect.H)
		x1, y1 = max(x0+1, x1-1), max(y0+1, y1-1)
		for x := x0 + 1; x < x1; x++ {
			c.set(x, y0, '─', st)
			c.set(x, y1, '─', st)
		}
		for y := y0 + 1; y < y1; y++ {
			c.set(x0, y, '│', st)
			c.set(x1, y, '│', st)
		}
		c.set(x0, y0, '┌', st)
		c.set(x1, y0, '┐', st)
		c.set(x0, y1, '└', st)
		c.set(x1, y1, '┘', st)
		c.text(x0+2, y0, " "+reg.Name+" ", st)
	}

	styles := map[string]*lipgloss.Style{}
	styleFor := func(code string) *lipgloss.Style {
		if s, ok := styles[code]; ok {
			return s
		}
		s := lipgloss.NewStyle().Foreground(hexColor(m.cfg.CategoryColor(code)))
		styles[code] = &s
		return &s
	}

	for i := range snap.Points {
		p := &snap.Points[i]
		r, st := '○', &pointStyle
		switch {
		case snap.Nav.Mode == nav.ModeOverview:
		case snap.Nav.Mode == nav.ModeRegion && snap.InFocus(p):
		case snap.Nav.Mode != nav.ModeRegion && snap.Highlighted(p):
			r, st = '●', styleFor(p.Category)
		default:
			r, st = '·', &dimStyle
		}
		if p.Thumb != nil {
			x0, y0 := toCell(p.Thumb.X, p.Thumb.Y)
			x1, y1 := toCell(p.Thumb.X+p.Thumb.W, p.Thumb.Y+p.Thumb.H)
			for y := y0; y <= max(y0, y1-1); y++ {
				for x := x0; x <= max(x0, x1-1); x++ {
					c.set(x, y, '▪', st)
				}
			}
			continue
		}
		x, y := toCell(p.X, p.Y)
		c.set(x, y, r, st)
	}

	if h := snap.Hovered; h != nil {
		x, y := toCell(h.X, h.Y)
		c.set(x, y, '◉', &hoverStyle)
	}
	if s := snap.Selected; s != nil {
		x, y := toCell(s.X, s.Y)
		c.set(x, y, '◆', styleFor(s.Category))
	}
	return c
}

// status is the footer line: hovered point, then the focused area totals.
func status(snap *scene.Snapshot) string {
	var parts []string
	if h := snap.Hovered; h != nil {
		l1, l2 := render.Describe(h)
		parts = append(parts, l1+"  "+l2)
	}
	sum := snap.Summary
	if sum == nil {
		return strings.Join(parts, "   ")
	}
	st := snap.Nav
	switch st.Mode {
	case nav.ModeOverview:
		parts = append(parts, fmt.Sprintf("%d receipts  %s", sum.Placed, stats.FormatYen(sum.TotalSpend)))
	case nav.ModeRegion:
		if r := sum.Region(st.Region); r != nil {
			parts = append(parts, fmt.Sprintf("%s: %d receipts  %s", r.Name, r.Count, stats.FormatYen(r.Spend)))
		}
	default:
		if c := sum.City(st.Region, st.City); c != nil {
			cats := make([]string, 0, len(c.Categories))
			for _, b := range c.Categories {
				cats = append(cats, fmt.Sprintf("%s %d", b.Name, b.Count))
			}
			parts = append(parts, fmt.Sprintf("%s: %s  [%s]", c.Name, stats.FormatYen(c.Spend), strings.Join(cats, ", ")))
		}
	}
	return strings.Join(parts, "   ")
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	snap := m.scene.Snapshot()
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Japan Receipts"),
		dimStyle.Render(render.Hint(snap.Nav)))
	footer := lipgloss.JoinVertical(lipgloss.Left,
		status(snap),
		dimStyle.Render("double-click: details  esc: back  q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.drawMap(snap).String(), footer)
}
