// Package render draws an arena episode in an ebiten window and steps it
// from the keyboard.
package render

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"gridarena/internal/arena"
)

const (
	cellSize = 48
	margin   = 24
	hudSpace = 72
)

var (
	backgroundColor = color.RGBA{24, 26, 30, 255}
	gridLineColor   = color.RGBA{60, 64, 70, 255}
	maskColor       = color.RGBA{0, 0, 0, 140}

	// Agent fill per encoding; encodings beyond the palette reuse the last.
	encodingColors = []color.RGBA{
		{214, 69, 65, 255},   // encoding 1
		{65, 131, 215, 255},  // encoding 2
		{120, 120, 120, 255}, // encoding 3
		{38, 166, 91, 255},
		{245, 171, 53, 255},
	}
)

// Game is the ebiten front end for one simulator.
type Game struct {
	sim     *arena.Simulator
	policy  *arena.HeuristicPolicy
	mapping arena.AttackMapping

	// focusID selects the agent whose visibility mask is overlaid.
	focusID string
	status  string
	err     error
}

// New creates a viewer over a freshly reset simulator.
func New(sim *arena.Simulator, policy *arena.HeuristicPolicy, mapping arena.AttackMapping, focusID string) (*Game, error) {
	if err := sim.Reset(); err != nil {
		return nil, err
	}
	return &Game{sim: sim, policy: policy, mapping: mapping, focusID: focusID, status: "space: step  r: reset  c: copy report"}, nil
}

// Update advances the simulation on keypresses.
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if err := arena.ScriptedStep(g.sim, g.policy, g.mapping); err != nil {
			g.err = err
			return err
		}
		g.status = fmt.Sprintf("tick %d", g.sim.Tick())
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.sim.Reset(); err != nil {
			g.err = err
			return err
		}
		g.status = "episode reset"
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if err := clipboard.WriteAll(g.sim.Report().Summary() + "\n" + g.sim.Log().Dump()); err != nil {
			g.status = "clipboard: " + err.Error()
		} else {
			g.status = "report copied to clipboard"
		}
	}
	return nil
}

// Draw renders the grid, the agents and the focused agent's mask overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	grid := g.sim.Grid()

	for r := 0; r <= grid.Rows(); r++ {
		y := float32(margin + r*cellSize)
		vector.StrokeLine(screen, margin, y, float32(margin+grid.Cols()*cellSize), y, 1, gridLineColor, false)
	}
	for c := 0; c <= grid.Cols(); c++ {
		x := float32(margin + c*cellSize)
		vector.StrokeLine(screen, x, margin, x, float32(margin+grid.Rows()*cellSize), 1, gridLineColor, false)
	}

	for _, id := range sortedAgentIDs(g.sim) {
		a := g.sim.Agent(id)
		if !a.Placed {
			continue
		}
		fill := encodingColors[min(a.Encoding-1, len(encodingColors)-1)]
		x := float32(margin + a.Position.Col*cellSize)
		y := float32(margin + a.Position.Row*cellSize)
		vector.DrawFilledRect(screen, x+4, y+4, cellSize-8, cellSize-8, fill, false)
		if a.Has(arena.CapHealth) {
			vector.DrawFilledRect(screen, x+4, y+cellSize-8, (cellSize-8)*float32(a.Health), 3, color.RGBA{235, 235, 235, 255}, false)
		}
	}

	g.drawMaskOverlay(screen)
	g.drawHUD(screen)
}

func (g *Game) drawMaskOverlay(screen *ebiten.Image) {
	focus := g.sim.Agent(g.focusID)
	if focus == nil || !focus.Placed || !focus.Active {
		return
	}
	obs, err := g.sim.Observe(g.focusID)
	if err != nil {
		return
	}
	window, ok := obs["grid"].([][]int)
	if !ok {
		return
	}
	r := focus.ViewRange
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			if window[dr+r][dc+r] != arena.CellMasked {
				continue
			}
			cell := focus.Position.Add(arena.Displacement{DRow: dr, DCol: dc})
			if !g.sim.Grid().InBounds(cell) {
				continue
			}
			x := float32(margin + cell.Col*cellSize)
			y := float32(margin + cell.Row*cellSize)
			vector.DrawFilledRect(screen, x, y, cellSize, cellSize, maskColor, false)
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	report := g.sim.Report()
	line := fmt.Sprintf("tick %d  attacks %d  hits %d  kills %d   %s",
		g.sim.Tick(), report.AttackAttempts, report.AttackHits, report.Kills, g.status)
	y := margin + g.sim.Grid().Rows()*cellSize + 28
	text.Draw(screen, line, basicfont.Face7x13, margin, y, color.White)
	if g.err != nil {
		text.Draw(screen, g.err.Error(), basicfont.Face7x13, margin, y+16, color.RGBA{235, 90, 90, 255})
	}
}

// Layout sizes the window to the grid plus HUD space.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	grid := g.sim.Grid()
	return margin*2 + grid.Cols()*cellSize, margin*2 + grid.Rows()*cellSize + hudSpace
}

// sortedAgentIDs keeps the draw order stable so contested cells don't flicker.
func sortedAgentIDs(s *arena.Simulator) []string {
	ids := make([]string, 0, len(s.Agents()))
	for id := range s.Agents() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
