package main

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/backend/cpspace"
	"github.com/milk9111/stride/builtin"
	"github.com/milk9111/stride/config"
	"github.com/milk9111/stride/helpers"
)

const (
	screenWidth  = 960
	screenHeight = 540

	playerWidth  = 24
	playerHeight = 40
	playerGroup  = 1
)

// playerConfig is the demo's tuning asset, hot-reloaded from player.yaml.
type playerConfig struct {
	Speed             float64                 `yaml:"speed"`
	JumpHeight        float64                 `yaml:"jump_height"`
	DashDistance      float64                 `yaml:"dash_distance"`
	CrouchFloatOffset float64                 `yaml:"crouch_float_offset"`
	Walk              builtin.WalkConfig      `yaml:"walk"`
	Jump              builtin.JumpConfig      `yaml:"jump"`
	Dash              builtin.DashConfig      `yaml:"dash"`
	Crouch            builtin.CrouchConfig    `yaml:"crouch"`
	Knockback         builtin.KnockbackConfig `yaml:"knockback"`
}

// rect is a static obstacle in world coordinates, y pointing up from the
// bottom-left corner.
type rect struct {
	x, y, w, h float64
}

type Game struct {
	space      *cp.Space
	character  *cpspace.Character
	controller *stride.Controller
	enforcer   *helpers.CrouchEnforcer
	registry   *config.Registry
	watcher    *config.Watcher
	input      Input
	cfg        playerConfig
	facing     float64
	rects      []rect
}

func NewGame(configDir string) (*Game, error) {
	registry := config.NewRegistry(configDir)
	if err := registry.LoadAll(); err != nil {
		return nil, err
	}
	watcher, err := config.NewWatcher(configDir)
	if err != nil {
		return nil, err
	}

	g := &Game{
		space:      cp.NewSpace(),
		controller: stride.NewController(),
		registry:   registry,
		watcher:    watcher,
		facing:     1,
	}
	g.space.Iterations = 20
	g.space.SetGravity(cp.Vector{X: 0, Y: -500})

	g.rects = []rect{
		{0, 0, screenWidth, 40},     // floor
		{300, 120, 140, 16},         // platform
		{520, 200, 140, 16},         // higher platform
		{700, 110, 220, 200},        // tunnel ceiling block, crouch to pass under
	}
	for _, r := range g.rects {
		bb := cp.BB{L: r.x, B: r.y, R: r.x + r.w, T: r.y + r.h}
		shape := cp.NewBox2(g.space.StaticBody, bb, 0)
		shape.SetFriction(0)
		g.space.AddShape(shape)
	}

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: 120, Y: 160})
	g.space.AddBody(body)
	shape := cp.NewBox(body, playerWidth, playerHeight, 0)
	shape.SetFriction(0)
	shape.SetFilter(cp.NewShapeFilter(playerGroup, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	g.space.AddShape(shape)

	g.character = cpspace.NewCharacter(body)
	g.character.Filter = cp.NewShapeFilter(playerGroup, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)
	g.enforcer = helpers.NewCrouchEnforcer(mgl64.Vec3{0, playerHeight / 2, 0})
	g.character.ExtraSensors = append(g.character.ExtraSensors, g.enforcer.Sensor())

	if err := g.pullConfig(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Close() error {
	return g.watcher.Close()
}

func (g *Game) pullConfig() error {
	if err := g.registry.Pull("player", &g.cfg); err != nil {
		if errors.Is(err, config.ErrNotPulledYet) {
			return nil
		}
		return err
	}
	return nil
}

func (g *Game) drainWatcher() {
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if err := g.registry.Reload(path); err != nil {
				log.Printf("demo: reload %s: %v", path, err)
				continue
			}
			if err := g.pullConfig(); err != nil {
				log.Printf("demo: pull config: %v", err)
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("demo: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.drainWatcher()
	g.input.Update()
	if g.input.MoveX != 0 {
		g.facing = g.input.MoveX
	}

	const dt = 1.0 / 60

	g.character.Step(g.space, dt, g.controller, func(c *stride.Controller) {
		c.FeedBasis(&builtin.Walk{
			DesiredVelocity: mgl64.Vec3{g.input.MoveX * g.cfg.Speed, 0, 0},
			Config:          g.cfg.Walk,
		})
		if g.input.JumpHeld {
			c.FeedAction(&builtin.Jump{Height: g.cfg.JumpHeight, Config: g.cfg.Jump})
		}
		if g.input.DashPressed {
			c.FeedAction(&builtin.Dash{
				Displacement: mgl64.Vec3{g.facing * g.cfg.DashDistance, 0, 0},
				Config:       g.cfg.Dash,
			})
		}
		if g.input.CrouchHeld {
			c.FeedAction(g.enforcer.Enforcing(&builtin.Crouch{
				FloatOffset: g.cfg.CrouchFloatOffset,
				Config:      g.cfg.Crouch,
			}))
		}
		if g.input.KnockbackPressed {
			c.FeedActionInterrupt(&builtin.Knockback{
				Shove:  mgl64.Vec3{-g.facing * 260, 140, 0},
				Config: g.cfg.Knockback,
			})
		}
		g.enforcer.Update(c, &g.character.Sensor)
	})

	g.space.Step(dt)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	for _, r := range g.rects {
		x, y := worldToScreen(r.x, r.y+r.h)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(r.w), float32(r.h), colornames.Slategray, false)
	}

	pos := g.character.Body.Position()
	height := float64(playerHeight)
	if g.controller.ActionName() == "crouch" {
		height += g.cfg.CrouchFloatOffset
	}
	px, py := worldToScreen(pos.X-playerWidth/2, pos.Y+height/2)
	vector.DrawFilledRect(screen, float32(px), float32(py), playerWidth, float32(height), colornames.Orange, false)

	airborne, err := g.controller.IsAirborne()
	airborneText := fmt.Sprintf("%v", airborne)
	if err != nil {
		airborneText = err.Error()
	}
	ebitenutil.DebugPrintAt(screen, "move: A/D  jump: Space  dash: Shift  crouch: S  knockback: K", 10, 10)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("action: %q  airborne: %s", g.controller.ActionName(), airborneText), 10, 26)
	if enforcing := g.enforcer.CurrentlyEnforcing(); enforcing {
		ebitenutil.DebugPrintAt(screen, "crouch enforced: ceiling overhead", 10, 42)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func worldToScreen(x, y float64) (float64, float64) {
	return x, screenHeight - y
}
