package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/ui"
)

// Species palette. Depth tinting darkens these toward the floor.
var (
	colorFry      = rl.Color{R: 255, G: 150, B: 80, A: 255}
	colorTrueFry  = rl.Color{R: 255, G: 190, B: 130, A: 255}
	colorKrill    = rl.Color{R: 235, G: 120, B: 120, A: 255}
	colorPale     = rl.Color{R: 235, G: 190, B: 190, A: 255}
	colorMom      = rl.Color{R: 215, G: 80, B: 110, A: 255}
	colorTuna     = rl.Color{R: 90, G: 130, B: 200, A: 255}
	colorSquid    = rl.Color{R: 160, G: 80, B: 170, A: 255}
	colorEgg      = rl.Color{R: 255, G: 230, B: 180, A: 220}
	colorFertEgg  = rl.Color{R: 255, G: 200, B: 120, A: 230}
	colorSperm    = rl.Color{R: 240, G: 240, B: 240, A: 160}
	colorDetritus = rl.Color{R: 150, G: 140, B: 110, A: 200}
)

// renderState holds the draw-only query filters.
type renderState struct {
	boids ecs.Filter4[components.Position, components.Velocity, components.Body, components.Boid]
	tuna  ecs.Filter4[components.Position, components.Velocity, components.Body, components.Tuna]
	squid ecs.Filter4[components.Position, components.Velocity, components.Body, components.Squid]
	eggs  ecs.Filter2[components.Position, components.Egg]
	sperm ecs.Filter2[components.Position, components.Sperm]
	fert  ecs.Filter2[components.Position, components.FertilizedEgg]
	det   ecs.Filter2[components.Position, components.Detritus]
}

// newRenderState creates the render filters over the world.
func newRenderState(w *ecs.World) *renderState {
	return &renderState{
		boids: *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Boid](w),
		tuna:  *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Tuna](w),
		squid: *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Squid](w),
		eggs:  *ecs.NewFilter2[components.Position, components.Egg](w),
		sperm: *ecs.NewFilter2[components.Position, components.Sperm](w),
		fert:  *ecs.NewFilter2[components.Position, components.FertilizedEgg](w),
		det:   *ecs.NewFilter2[components.Position, components.Detritus](w),
	}
}

// Draw renders one frame: water gradient, entities, particles and HUD.
func (g *Game) Draw() {
	if g.render == nil {
		g.render = newRenderState(g.world)
	}

	sx := float32(g.cfg.Screen.Width) / g.eco.Bounds.Width
	sy := float32(g.cfg.Screen.Height) / g.eco.Bounds.Height

	rl.BeginDrawing()

	// Water column: lit near the surface, near-black in the abyss.
	rl.DrawRectangleGradientV(0, 0, int32(g.cfg.Screen.Width), int32(g.cfg.Screen.Height),
		rl.Color{R: 18, G: 60, B: 95, A: 255},
		rl.Color{R: 2, G: 8, B: 18, A: 255})

	g.drawDrifters(sx, sy)
	g.drawBoids(sx, sy)
	g.drawTuna(sx, sy)
	g.drawSquid(sx, sy)

	if g.effects != nil {
		g.effects.Update()
		g.effects.Draw()
	}

	if g.hud != nil {
		g.hud.SetPopulations(ui.Populations{
			Fry: g.eco.Count(components.SpeciesFry),
			TrueFry: g.eco.Count(components.SpeciesTrueFry1) +
				g.eco.Count(components.SpeciesTrueFry2),
			Krill: g.eco.Count(components.SpeciesRegularKrill) +
				g.eco.Count(components.SpeciesPaleKrill) +
				g.eco.Count(components.SpeciesMomKrill),
			Tuna:  g.eco.Count(components.SpeciesTuna),
			Squid: g.eco.Count(components.SpeciesGiantSquid),
			Eggs: g.eco.Count(components.SpeciesFishEgg) +
				g.eco.Count(components.SpeciesFertilizedEgg),
		})
		actions := g.hud.Draw()
		if actions.PauseToggled {
			g.paused = !g.paused
		}
		if actions.Speed >= 1 && actions.Speed <= 10 {
			g.stepsPerUpdate = actions.Speed
		}
	}

	rl.EndDrawing()
}

// depthTint darkens a color with depth so deep entities fade into the
// gloom.
func (g *Game) depthTint(c rl.Color, y float32) rl.Color {
	depth := y / g.eco.Bounds.Height
	f := 1 - depth*0.55
	c.R = uint8(float32(c.R) * f)
	c.G = uint8(float32(c.G) * f)
	c.B = uint8(float32(c.B) * f)
	return c
}

// drawDrifters renders eggs, sperm, fertilized eggs and detritus.
func (g *Game) drawDrifters(sx, sy float32) {
	eggQuery := g.render.eggs.Query()
	for eggQuery.Next() {
		pos, _ := eggQuery.Get()
		rl.DrawCircleV(rl.Vector2{X: pos.X * sx, Y: pos.Y * sy}, 2.5, g.depthTint(colorEgg, pos.Y))
	}

	fertQuery := g.render.fert.Query()
	for fertQuery.Next() {
		pos, _ := fertQuery.Get()
		c := g.depthTint(colorFertEgg, pos.Y)
		rl.DrawCircleV(rl.Vector2{X: pos.X * sx, Y: pos.Y * sy}, 3, c)
		rl.DrawCircleLines(int32(pos.X*sx), int32(pos.Y*sy), 4.5, rl.Fade(c, 0.5))
	}

	spermQuery := g.render.sperm.Query()
	for spermQuery.Next() {
		pos, _ := spermQuery.Get()
		rl.DrawCircleV(rl.Vector2{X: pos.X * sx, Y: pos.Y * sy}, 1.5, colorSperm)
	}

	detQuery := g.render.det.Query()
	for detQuery.Next() {
		pos, _ := detQuery.Get()
		rl.DrawCircleV(rl.Vector2{X: pos.X * sx, Y: pos.Y * sy}, 2, g.depthTint(colorDetritus, pos.Y))
	}
}

// drawBoids renders fry, TrueFry and krill as heading-oriented triangles.
func (g *Game) drawBoids(sx, sy float32) {
	query := g.render.boids.Query()
	for query.Next() {
		pos, vel, body, boid := query.Get()

		var c rl.Color
		switch boid.Species {
		case components.SpeciesFry:
			c = colorFry
		case components.SpeciesTrueFry1, components.SpeciesTrueFry2:
			c = colorTrueFry
		case components.SpeciesPaleKrill:
			c = colorPale
		case components.SpeciesMomKrill:
			c = colorMom
		default:
			c = colorKrill
		}
		c = g.depthTint(c, pos.Y)

		x := pos.X * sx
		y := pos.Y * sy
		r := body.Radius * sx

		heading := float32(math.Atan2(float64(vel.Y), float64(vel.X)))
		cosH := float32(math.Cos(float64(heading)))
		sinH := float32(math.Sin(float64(heading)))

		nose := rl.Vector2{X: x + cosH*r*1.4, Y: y + sinH*r*1.4}
		left := rl.Vector2{X: x - cosH*r + sinH*r*0.7, Y: y - sinH*r - cosH*r*0.7}
		right := rl.Vector2{X: x - cosH*r - sinH*r*0.7, Y: y - sinH*r + cosH*r*0.7}
		rl.DrawTriangle(nose, left, right, c)
	}
}

// drawTuna renders tuna as elongated bodies with a tail notch.
func (g *Game) drawTuna(sx, sy float32) {
	query := g.render.tuna.Query()
	for query.Next() {
		pos, vel, body, tuna := query.Get()

		c := g.depthTint(colorTuna, pos.Y)
		if tuna.State == components.TunaAttacking {
			c = rl.Color{R: 200, G: 90, B: 90, A: 255}
		}

		x := pos.X * sx
		y := pos.Y * sy
		r := body.Radius * sx

		heading := float32(math.Atan2(float64(vel.Y), float64(vel.X)))
		cosH := float32(math.Cos(float64(heading)))
		sinH := float32(math.Sin(float64(heading)))

		nose := rl.Vector2{X: x + cosH*r*1.6, Y: y + sinH*r*1.6}
		left := rl.Vector2{X: x - cosH*r + sinH*r*0.5, Y: y - sinH*r - cosH*r*0.5}
		right := rl.Vector2{X: x - cosH*r - sinH*r*0.5, Y: y - sinH*r + cosH*r*0.5}
		rl.DrawTriangle(nose, left, right, c)

		tail := rl.Vector2{X: x - cosH*r*1.5, Y: y - sinH*r*1.5}
		rl.DrawLineEx(rl.Vector2{X: x - cosH*r, Y: y - sinH*r}, tail, 2, c)
	}
}

// drawSquid renders the squid with mantle state and bioluminescence.
func (g *Game) drawSquid(sx, sy float32) {
	query := g.render.squid.Query()
	for query.Next() {
		pos, _, body, squid := query.Get()

		x := pos.X * sx
		y := pos.Y * sy
		r := body.Radius * sx * 0.5

		// Contracted mantle during a jet burst
		mantleW := r
		if squid.MantleContracted {
			mantleW = r * 0.7
		}

		c := g.depthTint(colorSquid, pos.Y)

		// Bioluminescent halo, blinking at full intensity
		if squid.GlowIntensity > 0 && (squid.GlowIntensity < 1 || squid.BlinkOn) {
			glow := rl.Fade(rl.Color{R: 120, G: 220, B: 255, A: 255}, 0.25*squid.GlowIntensity)
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, r*2.2, glow)
		}

		// Mantle plus trailing tentacles
		rl.DrawEllipse(int32(x), int32(y), mantleW, r*1.5, c)
		tentDir := float32(1)
		if squid.FacingRight {
			tentDir = -1
		}
		for i := 0; i < 4; i++ {
			off := (float32(i) - 1.5) * mantleW * 0.4
			end := rl.Vector2{X: x + tentDir*r*1.8, Y: y + r + off*0.4}
			rl.DrawLineEx(rl.Vector2{X: x + off, Y: y + r}, end, 2, rl.Fade(c, 0.8))
		}
	}
}
