package strata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

func testViewport() Rect {
	return Rect{Width: 640, Height: 480}
}

// --- View-projection ---

func TestViewProjectionCentersCamera(t *testing.T) {
	c := NewCamera(testViewport())
	c.X, c.Y = 100, 200
	c.MarkDirty()

	// The camera's world position maps to the center of clip space.
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{100, 200, 0, 1})
	assertNear(t, "clip.x", clip.X(), 0)
	assertNear(t, "clip.y", clip.Y(), 0)
}

func TestViewProjectionEdges(t *testing.T) {
	c := NewCamera(testViewport())

	// Camera at origin, zoom 1: world (-320, -240) is the top-left of the
	// viewport, clip (-1, +1) (clip Y grows upward).
	vp := c.ViewProjection()
	tl := vp.Mul4x1(mgl32.Vec4{-320, -240, 0, 1})
	assertNear(t, "tl clip.x", tl.X(), -1)
	assertNear(t, "tl clip.y", tl.Y(), 1)

	br := vp.Mul4x1(mgl32.Vec4{320, 240, 0, 1})
	assertNear(t, "br clip.x", br.X(), 1)
	assertNear(t, "br clip.y", br.Y(), -1)
}

func TestViewProjectionZoom(t *testing.T) {
	c := NewCamera(testViewport())
	c.Zoom = 2
	c.MarkDirty()

	// At zoom 2, world (160, 0) reaches the right viewport edge.
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{160, 0, 0, 1})
	assertNear(t, "zoomed clip.x", clip.X(), 1)
}

// --- World/screen conversion ---

func TestWorldToScreenCenter(t *testing.T) {
	c := NewCamera(testViewport())
	c.X, c.Y = 50, 60
	c.MarkDirty()

	sx, sy := c.WorldToScreen(50, 60)
	assertNear(t, "sx", sx, 320)
	assertNear(t, "sy", sy, 240)
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	c := NewCamera(testViewport())
	c.X, c.Y = 123, -45
	c.Zoom = 1.5
	c.Rotation = 0.3
	c.MarkDirty()

	wx, wy := float32(200), float32(-80)
	sx, sy := c.WorldToScreen(wx, wy)
	bx, by := c.ScreenToWorld(sx, sy)
	if diff := bx - wx; diff < -1e-3 || diff > 1e-3 {
		t.Errorf("roundtrip x = %v, want %v", bx, wx)
	}
	if diff := by - wy; diff < -1e-3 || diff > 1e-3 {
		t.Errorf("roundtrip y = %v, want %v", by, wy)
	}
}

// --- Visible bounds ---

func TestVisibleBoundsZoom(t *testing.T) {
	c := NewCamera(testViewport())
	c.Zoom = 2
	c.MarkDirty()

	b := c.VisibleBounds()
	assertNear(t, "width", b.Width, 320)
	assertNear(t, "height", b.Height, 240)
	assertNear(t, "x", b.X, -160)
	assertNear(t, "y", b.Y, -120)
}

func TestVisibleChunksClamped(t *testing.T) {
	m := newTestMap() // 2x2 chunks of 4x4 tiles at 32px = 128px chunks
	c := NewCamera(Rect{Width: 640, Height: 480})
	c.X, c.Y = 0, 0 // top-left far off the map's upper-left
	c.MarkDirty()

	minChunk, maxChunk := c.VisibleChunks(m)
	if minChunk != (Vec2i{X: 0, Y: 0}) {
		t.Errorf("minChunk = %+v, want (0,0)", minChunk)
	}
	if maxChunk != (Vec2i{X: 1, Y: 1}) {
		t.Errorf("maxChunk = %+v, want (1,1)", maxChunk)
	}
}

func TestVisibleChunksSubset(t *testing.T) {
	// 8x8 chunks of 4x4 tiles at 32px = 128px per chunk.
	m := NewTilemap(8, 8, 4, 4, 32, 32, NewGridAtlas(32, 32, 4, 4))
	c := NewCamera(Rect{Width: 256, Height: 256})
	c.X, c.Y = 320, 320 // centered in chunk (2,2)
	c.MarkDirty()

	minChunk, maxChunk := c.VisibleChunks(m)
	if minChunk != (Vec2i{X: 1, Y: 1}) {
		t.Errorf("minChunk = %+v, want (1,1)", minChunk)
	}
	if maxChunk != (Vec2i{X: 3, Y: 3}) {
		t.Errorf("maxChunk = %+v, want (3,3)", maxChunk)
	}
}

// --- Follow / scroll ---

func TestFollowLerp(t *testing.T) {
	c := NewCamera(testViewport())
	c.Follow(100, 0, 0.5)

	c.Update(1.0 / 60)
	assertNear(t, "first step", c.X, 50)
	c.Update(1.0 / 60)
	assertNear(t, "second step", c.X, 75)

	c.Unfollow()
	c.Update(1.0 / 60)
	assertNear(t, "after unfollow", c.X, 75)
}

func TestScrollToCompletes(t *testing.T) {
	c := NewCamera(testViewport())
	c.ScrollTo(100, 200, 1.0, ease.Linear)

	c.Update(0.5)
	assertNear(t, "midway x", c.X, 50)
	assertNear(t, "midway y", c.Y, 100)

	c.Update(0.6) // overshoot the duration
	assertNear(t, "final x", c.X, 100)
	assertNear(t, "final y", c.Y, 200)

	if c.scrollTween != nil {
		t.Error("scroll tween should be released on completion")
	}
}

func TestScrollToTileTargetsTileCenter(t *testing.T) {
	m := newTestMap()
	c := NewCamera(testViewport())
	c.ScrollToTile(m, 3, 5, 1.0, ease.Linear)

	c.Update(2.0)
	assertNear(t, "tile center x", c.X, 3*32+16)
	assertNear(t, "tile center y", c.Y, 5*32+16)
}

// --- Bounds clamping ---

func TestBoundsClamping(t *testing.T) {
	c := NewCamera(testViewport())
	c.SetBounds(Rect{X: 0, Y: 0, Width: 2000, Height: 2000})
	c.X, c.Y = -500, -500

	c.Update(1.0 / 60)
	assertNear(t, "clamped x", c.X, 320)
	assertNear(t, "clamped y", c.Y, 240)
}

func TestBoundsSmallerThanViewCenters(t *testing.T) {
	c := NewCamera(testViewport())
	c.SetBounds(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	c.X, c.Y = 999, 999

	c.Update(1.0 / 60)
	assertNear(t, "centered x", c.X, 50)
	assertNear(t, "centered y", c.Y, 50)
}

func TestClearBounds(t *testing.T) {
	c := NewCamera(testViewport())
	c.SetBounds(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	c.ClearBounds()
	c.X = -500

	c.Update(1.0 / 60)
	assertNear(t, "unclamped", c.X, -500)
}

// --- Dirty caching ---

func TestViewProjectionCachedUntilMoved(t *testing.T) {
	c := NewCamera(testViewport())
	first := c.ViewProjection()

	// No movement: Update must not invalidate the cache.
	c.Update(1.0 / 60)
	if c.dirty {
		t.Error("camera dirty after no-op update")
	}

	// Direct field writes require MarkDirty, matching the setter-free API.
	c.X = 10
	c.MarkDirty()
	second := c.ViewProjection()
	if first == second {
		t.Error("view-projection unchanged after camera moved")
	}
}
