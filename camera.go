package strata

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// cameraDepthRange is the near/far extent of the orthographic projection.
// Wide enough for any tile Z order a map will realistically use.
const cameraDepthRange = 65535

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is an orthographic 2D camera. It produces the view-projection
// matrix bound as QuadUniforms.ViewProjection and the world-space visible
// bounds used for chunk culling.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float32
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float32
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float32
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	followX    float32
	followY    float32
	followLerp float32
	following  bool

	viewProjection mgl32.Mat4
	invView        mgl32.Mat4
	dirty          bool

	scrollTween *scrollAnim
}

// NewCamera creates a camera with default values and the given viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// Follow makes the camera track a world-space point with the given lerp
// factor. A lerp of 1.0 snaps immediately; lower values give smoother
// following. Call SetFollowTarget each frame to update the tracked point.
func (c *Camera) Follow(x, y, lerp float32) {
	c.followX = x
	c.followY = y
	c.followLerp = lerp
	c.following = true
}

// SetFollowTarget updates the tracked point without changing the lerp.
func (c *Camera) SetFollowTarget(x, y float32) {
	c.followX = x
	c.followY = y
}

// Unfollow stops tracking.
func (c *Camera) Unfollow() {
	c.following = false
}

// ScrollTo animates the camera to the given world position over duration
// seconds.
func (c *Camera) ScrollTo(x, y float32, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(c.X, x, duration, easeFn),
		tweenY: gween.New(c.Y, y, duration, easeFn),
	}
}

// ScrollToTile scrolls to the center of the given global tile coordinate.
func (c *Camera) ScrollToTile(m *Tilemap, tileX, tileY int, duration float32, easeFn ease.TweenFunc) {
	tw := float32(m.TileWidth())
	th := float32(m.TileHeight())
	c.ScrollTo(float32(tileX)*tw+tw/2, float32(tileY)*th+th/2, duration, easeFn)
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// Update advances follow, scroll, and bounds clamping. dt is in seconds.
func (c *Camera) Update(dt float32) {
	prevX, prevY := c.X, c.Y
	prevZoom, prevRot := c.Zoom, c.Rotation

	if c.following {
		c.X += (c.followX - c.X) * c.followLerp
		c.Y += (c.followY - c.Y) * c.followLerp
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = val
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = val
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom || c.Rotation != prevRot {
		c.dirty = true
	}
}

// clampToBounds restricts camera position so the visible area stays within
// Bounds. If the bounds are smaller than the visible area, the camera
// centers on them.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = clamp32(c.X, minX, maxX)
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = clamp32(c.Y, minY, maxY)
	}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MarkDirty forces a recomputation of the view-projection matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// viewMatrix builds the world-to-screen matrix:
//
//	Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
//
// where cx, cy is the viewport center.
func (c *Camera) viewMatrix() mgl32.Mat4 {
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2

	view := mgl32.Translate3D(cx, cy, 0)
	view = view.Mul4(mgl32.Scale3D(c.Zoom, c.Zoom, 1))
	if c.Rotation != 0 {
		view = view.Mul4(mgl32.HomogRotate3DZ(-c.Rotation))
	}
	return view.Mul4(mgl32.Translate3D(-c.X, -c.Y, 0))
}

// compute recomputes the cached view-projection and inverse view matrices if
// dirty.
func (c *Camera) compute() {
	if !c.dirty {
		return
	}
	c.dirty = false

	view := c.viewMatrix()
	proj := mgl32.Ortho(
		c.Viewport.X, c.Viewport.X+c.Viewport.Width,
		c.Viewport.Y+c.Viewport.Height, c.Viewport.Y,
		-cameraDepthRange, cameraDepthRange,
	)
	c.viewProjection = proj.Mul4(view)
	c.invView = view.Inv()
}

// ViewProjection returns the combined view-projection matrix for binding as
// QuadUniforms.ViewProjection.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.compute()
	return c.viewProjection
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	c.compute()
	p := c.viewMatrix().Mul4x1(mgl32.Vec4{wx, wy, 0, 1})
	return p.X(), p.Y()
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	c.compute()
	p := c.invView.Mul4x1(mgl32.Vec4{sx, sy, 0, 1})
	return p.X(), p.Y()
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's
// visible area in world space.
func (c *Camera) VisibleBounds() Rect {
	c.compute()

	vx := c.Viewport.X
	vy := c.Viewport.Y
	vr := vx + c.Viewport.Width
	vb := vy + c.Viewport.Height

	corners := [4]mgl32.Vec4{
		c.invView.Mul4x1(mgl32.Vec4{vx, vy, 0, 1}),
		c.invView.Mul4x1(mgl32.Vec4{vr, vy, 0, 1}),
		c.invView.Mul4x1(mgl32.Vec4{vr, vb, 0, 1}),
		c.invView.Mul4x1(mgl32.Vec4{vx, vb, 0, 1}),
	}

	minX, minY := corners[0].X(), corners[0].Y()
	maxX, maxY := minX, minY
	for _, p := range corners[1:] {
		minX = min(minX, p.X())
		minY = min(minY, p.Y())
		maxX = max(maxX, p.X())
		maxY = max(maxY, p.Y())
	}

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// VisibleChunks returns the inclusive chunk coordinate range intersecting
// the camera's visible bounds, clamped to the map dimensions.
func (c *Camera) VisibleChunks(m *Tilemap) (minChunk, maxChunk Vec2i) {
	b := c.VisibleBounds()
	cw := float64(m.chunkWidth * m.tileWidth)
	ch := float64(m.chunkHeight * m.tileHeight)

	minChunk = Vec2i{
		X: int(math.Floor(float64(b.X) / cw)),
		Y: int(math.Floor(float64(b.Y) / ch)),
	}
	maxChunk = Vec2i{
		X: int(math.Floor(float64(b.X+b.Width) / cw)),
		Y: int(math.Floor(float64(b.Y+b.Height) / ch)),
	}

	minChunk.X = max(minChunk.X, 0)
	minChunk.Y = max(minChunk.Y, 0)
	maxChunk.X = min(maxChunk.X, m.widthChunks-1)
	maxChunk.Y = min(maxChunk.Y, m.heightChunks-1)
	return minChunk, maxChunk
}
