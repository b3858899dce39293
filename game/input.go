package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reef/components"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if g.hud != nil {
		g.hud.SetPaused(g.paused)
		g.hud.SetSpeed(g.stepsPerUpdate)
	}

	// Left click drops an entity of the HUD-selected species. Clicks on
	// the HUD panel belong to the HUD, not the tank.
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		mouse := rl.GetMousePosition()
		if g.hud == nil || !g.hud.ContainsPoint(mouse.X, mouse.Y) {
			g.spawnAtCursor(mouse.X, mouse.Y)
		}
	}
}

// spawnAtCursor creates an entity of the selected species at the mouse
// position, scaled from screen to world space.
func (g *Game) spawnAtCursor(mx, my float32) {
	species := components.SpeciesFry
	if g.hud != nil {
		species = g.hud.SelectedSpecies()
	}

	sx := g.eco.Bounds.Width / float32(g.cfg.Screen.Width)
	sy := g.eco.Bounds.Height / float32(g.cfg.Screen.Height)

	g.eco.Spawn(species, mx*sx, my*sy)
}
