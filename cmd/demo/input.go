package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input holds the current input state for the demo character.
type Input struct {
	// MoveX is -1 for left, 0 for none, +1 for right.
	MoveX float64
	// JumpHeld is true while the jump key is held down.
	JumpHeld bool
	// DashPressed is true on the frame the dash key is pressed.
	DashPressed bool
	// CrouchHeld is true while the crouch key is held down.
	CrouchHeld bool
	// KnockbackPressed is true on the frame the knockback test key is
	// pressed.
	KnockbackPressed bool
}

// Update polls the keyboard.
func (i *Input) Update() {
	var moveX float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		moveX += 1
	}
	i.MoveX = moveX

	i.JumpHeld = ebiten.IsKeyPressed(ebiten.KeySpace)
	i.DashPressed = inpututil.IsKeyJustPressed(ebiten.KeyShiftLeft)
	i.CrouchHeld = ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown)
	i.KnockbackPressed = inpututil.IsKeyJustPressed(ebiten.KeyK)
}
