// Package ui provides the in-game control panel.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
)

// spawnable lists the species the user can drop into the tank.
var spawnable = []components.Species{
	components.SpeciesFry,
	components.SpeciesRegularKrill,
	components.SpeciesTuna,
	components.SpeciesGiantSquid,
	components.SpeciesDetritus,
}

// Populations holds the per-group counts shown in the readout.
type Populations struct {
	Fry     int
	TrueFry int
	Krill   int
	Tuna    int
	Squid   int
	Eggs    int
}

// Actions reports HUD interactions back to the game loop.
type Actions struct {
	PauseToggled bool
	Speed        int
}

// HUD is the raygui control panel: pause, speed, spawn species selection
// and a live population readout.
type HUD struct {
	cfg   *config.Config
	panel rl.Rectangle

	paused       bool
	speed        int
	speciesIndex int32

	pops Populations
}

// NewHUD creates the control panel anchored to the top-left corner.
func NewHUD(cfg *config.Config) *HUD {
	return &HUD{
		cfg:   cfg,
		panel: rl.Rectangle{X: 8, Y: 8, Width: 190, Height: 300},
		speed: 1,
	}
}

// ContainsPoint reports whether a screen point falls on the panel.
func (h *HUD) ContainsPoint(x, y float32) bool {
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, h.panel)
}

// SelectedSpecies returns the species the spawn buttons currently select.
func (h *HUD) SelectedSpecies() components.Species {
	return spawnable[h.speciesIndex]
}

// SetPaused mirrors the game's pause state into the panel.
func (h *HUD) SetPaused(paused bool) {
	h.paused = paused
}

// SetSpeed mirrors the steps-per-update setting into the panel.
func (h *HUD) SetSpeed(speed int) {
	h.speed = speed
}

// SetPopulations updates the readout counts.
func (h *HUD) SetPopulations(pops Populations) {
	h.pops = pops
}

// Draw renders the panel and returns any user actions.
func (h *HUD) Draw() Actions {
	actions := Actions{Speed: h.speed}

	gui.Panel(h.panel, "reef")

	y := h.panel.Y + 28

	label := "pause"
	if h.paused {
		label = "resume"
	}
	if gui.Button(rl.Rectangle{X: h.panel.X + 8, Y: y, Width: 80, Height: 22}, label) {
		actions.PauseToggled = true
	}
	y += 30

	speed := gui.SliderBar(
		rl.Rectangle{X: h.panel.X + 46, Y: y, Width: 110, Height: 18},
		"speed", fmt.Sprintf("%dx", h.speed),
		float32(h.speed), 1, 10,
	)
	actions.Speed = int(speed + 0.5)
	y += 28

	gui.Label(rl.Rectangle{X: h.panel.X + 8, Y: y, Width: 170, Height: 18}, "spawn on click:")
	y += 22

	for i, s := range spawnable {
		selected := h.speciesIndex == int32(i)
		name := s.String()
		if selected {
			name = "> " + name
		}
		if gui.Button(rl.Rectangle{X: h.panel.X + 8, Y: y, Width: 120, Height: 18}, name) {
			h.speciesIndex = int32(i)
		}
		y += 22
	}

	y += 6
	gui.Label(rl.Rectangle{X: h.panel.X + 8, Y: y, Width: 170, Height: 18},
		fmt.Sprintf("fry %d  juv %d", h.pops.Fry, h.pops.TrueFry))
	y += 18
	gui.Label(rl.Rectangle{X: h.panel.X + 8, Y: y, Width: 170, Height: 18},
		fmt.Sprintf("krill %d  eggs %d", h.pops.Krill, h.pops.Eggs))
	y += 18
	gui.Label(rl.Rectangle{X: h.panel.X + 8, Y: y, Width: 170, Height: 18},
		fmt.Sprintf("tuna %d  squid %d", h.pops.Tuna, h.pops.Squid))

	return actions
}
