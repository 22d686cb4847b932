package tui

import (
	"image"
	"math"
	"math/rand"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audth517/Japan-Receipt-Map/pkg/assets"
	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/nav"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
	"github.com/audth517/Japan-Receipt-Map/pkg/scene"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newModel(t *testing.T) (*Model, *clock) {
	t.Helper()
	cfg := config.Default()
	cfg.PriceScale.OutMin = 30
	cfg.PriceScale.OutMax = 40
	cfg.PriceScale.Midpoint = 35
	b := &assets.Bundle{
		Receipts: []receipt.Receipt{
			{ID: "r1", Region: "Kyushu", City: "Fukuoka", Category: "RC", Price: receipt.P(800)},
		},
		Masks: map[string]map[string]image.Image{},
	}
	st, err := scene.New(cfg, b, 960, 576, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	m := New(st)
	clk := &clock{t: time.Unix(1000, 0)}
	m.now = clk.now
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, clk
}

// cellOf returns the terminal cell under a point.
func cellOf(m *Model, id string) (int, int) {
	p := m.scene.Point(id)
	sx, sy := m.scene.Camera().WorldToScreen(p.X, p.Y)
	return int(math.Floor(sx / cellW)), int(math.Floor(sy/cellH)) + headerRows
}

func pressAt(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestResizeMapsCellsToScreen(t *testing.T) {
	m, _ := newModel(t)
	assert.Equal(t, 960.0, m.scene.Viewport().W)
	assert.Equal(t, 36*cellH, m.scene.Viewport().H)
}

func TestClickResolvesAfterWindow(t *testing.T) {
	m, clk := newModel(t)
	x, y := cellOf(m, "r1")

	m.Update(pressAt(x, y))
	assert.Equal(t, nav.ModeOverview, m.scene.Nav().Mode, "click waits for the double-click window")

	clk.t = clk.t.Add(100 * time.Millisecond)
	m.Update(tickMsg(clk.t))
	assert.Equal(t, nav.ModeOverview, m.scene.Nav().Mode)

	clk.t = clk.t.Add(time.Second)
	m.Update(tickMsg(clk.t))
	assert.Equal(t, nav.ModeRegion, m.scene.Nav().Mode)
	assert.Equal(t, "Kyushu", m.scene.Nav().Region)
}

func TestDoubleClickSelectsWithoutNavigating(t *testing.T) {
	m, clk := newModel(t)
	x, y := cellOf(m, "r1")

	m.Update(pressAt(x, y))
	clk.t = clk.t.Add(150 * time.Millisecond)
	m.Update(pressAt(x, y))

	st := m.scene.Nav()
	assert.Equal(t, nav.ModeOverview, st.Mode)
	assert.Equal(t, "r1", st.Selected)

	clk.t = clk.t.Add(time.Second)
	m.Update(tickMsg(clk.t))
	assert.Equal(t, nav.ModeOverview, m.scene.Nav().Mode, "no click left pending")
}

func TestSlowSecondPressIsTwoClicks(t *testing.T) {
	m, clk := newModel(t)
	x, y := cellOf(m, "r1")

	m.Update(pressAt(x, y))
	clk.t = clk.t.Add(time.Second)
	m.Update(pressAt(x, y))
	assert.Equal(t, nav.ModeRegion, m.scene.Nav().Mode, "first press flushed as a click")
	assert.Empty(t, m.scene.Nav().Selected)
}

func TestEscapeGoesBack(t *testing.T) {
	m, clk := newModel(t)
	x, y := cellOf(m, "r1")
	m.Update(pressAt(x, y))
	clk.t = clk.t.Add(time.Second)
	m.Update(tickMsg(clk.t))
	require.Equal(t, nav.ModeRegion, m.scene.Nav().Mode)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, nav.ModeOverview, m.scene.Nav().Mode)
}

func TestHoverAndView(t *testing.T) {
	m, _ := newModel(t)
	x, y := cellOf(m, "r1")
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion})
	require.NotNil(t, m.scene.Hovered())

	out := m.View()
	assert.Contains(t, out, "Japan Receipts")
	assert.Contains(t, out, "Kyushu")
	assert.Contains(t, out, "r1 [RC] (¥800)")
	assert.Contains(t, out, "1 receipts")
}

func TestPressOutsideMapIgnored(t *testing.T) {
	m, clk := newModel(t)
	m.Update(pressAt(5, 0))
	clk.t = clk.t.Add(time.Second)
	m.Update(tickMsg(clk.t))
	assert.Nil(t, m.pending)
	assert.Equal(t, nav.ModeOverview, m.scene.Nav().Mode)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
