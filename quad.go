package strata

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Flip flag bits carried in RawTile.Flags and QuadVertex.Flags.
const (
	FlipHorizontal uint32 = 1 << 0 // mirror about the vertical axis through the rect midpoint
	FlipVertical   uint32 = 1 << 1 // mirror about the horizontal axis through the rect midpoint
)

// AtlasRect is a sub-rectangle of an atlas texture in pixel coordinates.
// Begin is the upper-left corner, End the bottom-right (Y grows downward).
// A valid rect has End.X >= Begin.X and End.Y >= Begin.Y.
type AtlasRect struct {
	Begin mgl32.Vec2
	End   mgl32.Vec2
}

// Dimensions returns the rect's pixel size (End - Begin).
func (r AtlasRect) Dimensions() mgl32.Vec2 {
	return r.End.Sub(r.Begin)
}

// Midpoint returns the rect's center point, the pivot for flip mirroring.
func (r AtlasRect) Midpoint() mgl32.Vec2 {
	return r.Begin.Add(r.End).Mul(0.5)
}

// QuadUniforms holds the per-draw constants for vertex transformation.
// All fields are read-only for the duration of a draw.
type QuadUniforms struct {
	// ViewProjection is the camera's combined view-projection matrix.
	ViewProjection mgl32.Mat4
	// ChunkTransform is the model matrix placing this chunk's quads in world space.
	ChunkTransform mgl32.Mat4
	// AtlasSize is the atlas texture's pixel dimensions, used to normalize
	// pixel-space corners into [0,1] texture coordinates.
	AtlasSize mgl32.Vec2
}

// QuadConfig selects the optional stages of the quad vertex transform.
// Flip support and UV inset are independent toggles; the two classic
// configurations are FlipQuadConfig and InsetQuadConfig.
type QuadConfig struct {
	// ApplyFlip enables per-tile flip flags. When false, Flags is ignored.
	ApplyFlip bool
	// UVInset is added to each atlas-space corner before normalization,
	// shrinking the sampled area away from neighboring atlas entries.
	UVInset mgl32.Vec2
}

// FlipQuadConfig consumes flip flags and applies no UV inset.
var FlipQuadConfig = QuadConfig{ApplyFlip: true}

// InsetQuadConfig ignores flip flags and insets UVs by 1/100 pixel.
var InsetQuadConfig = QuadConfig{UVInset: mgl32.Vec2{0.01, 0.01}}

// QuadVertex is the per-vertex input record for one corner of a tile quad.
type QuadVertex struct {
	// Position is the quad-local corner position before scaling; only X and Y
	// are used. (0,0) is the upper-left corner, (1,1) the bottom-right.
	Position mgl32.Vec3
	// TileIndex indexes the atlas rect table after truncation to integer.
	// Must be in range; no bounds check is performed.
	TileIndex float32
	// Flags holds the flip bits (FlipHorizontal, FlipVertical). Only the low
	// two bits are meaningful; consumed only when QuadConfig.ApplyFlip is set.
	Flags uint32
	// Color is the vertex tint, passed through unmodified.
	Color mgl32.Vec4
}

// QuadOutput is the result of transforming one quad vertex: the values handed
// to the rasterization/sampling stage.
type QuadOutput struct {
	UV           mgl32.Vec2
	Color        mgl32.Vec4
	ClipPosition mgl32.Vec4
}

// CornerForVertex maps a quad-local vertex index to its canonical atlas-space
// corner. The fixed order is upper-left, lower-left, lower-right, upper-right:
//
//	0: Begin
//	1: (Begin.X, End.Y)
//	2: End
//	3: (End.X, Begin.Y)
//
// i is taken mod 4, so a running vertex counter may be passed directly.
func CornerForVertex(rect AtlasRect, i int) mgl32.Vec2 {
	switch ((i % 4) + 4) % 4 {
	case 0:
		return rect.Begin
	case 1:
		return mgl32.Vec2{rect.Begin.X(), rect.End.Y()}
	case 2:
		return rect.End
	default:
		return mgl32.Vec2{rect.End.X(), rect.Begin.Y()}
	}
}

// flipCorner mirrors an atlas-space corner about the rect midpoint according
// to the flip flags. Mirroring about the midpoint (rather than the tile
// origin) flips the sprite in place without displacing it. The two axes are
// independent, so application order does not matter.
func flipCorner(corner mgl32.Vec2, rect AtlasRect, flags uint32) mgl32.Vec2 {
	mid := rect.Midpoint()
	p := corner.Sub(mid)
	if flags&FlipVertical != 0 {
		p[1] = -p[1]
	}
	if flags&FlipHorizontal != 0 {
		p[0] = -p[0]
	}
	return p.Add(mid)
}

// ceil32 is a per-component float32 ceiling.
func ceil32(x float32) float32 {
	return float32(math.Ceil(float64(x)))
}

// TransformQuadVertex transforms one vertex of a tile quad, producing the
// normalized UV, pass-through color, and pixel-snapped clip-space position.
//
// vertexIndex is the vertex's position within the quad (0..3, taken mod 4, so
// a monotonically increasing vertex counter may be passed directly).
//
// The vertex position is snapped with a per-axis ceiling before the chunk and
// camera transforms are applied. Snapping in local space keeps orthographic
// tile grids pixel-aligned without jitter; the ceiling (not rounding) is part
// of the contract and differs from rounding for negative coordinates.
//
// The tile index is not bounds checked: an out-of-range index is a caller
// contract violation, and validation belongs to the batching stage that
// produced the vertex.
func TransformQuadVertex(cfg QuadConfig, u QuadUniforms, rects []AtlasRect, v QuadVertex, vertexIndex int) QuadOutput {
	rect := rects[int(v.TileIndex)]
	dims := rect.Dimensions()
	world := mgl32.Vec2{v.Position.X() * dims.X(), v.Position.Y() * dims.Y()}

	corner := CornerForVertex(rect, vertexIndex)
	if cfg.ApplyFlip {
		corner = flipCorner(corner, rect, v.Flags)
	}
	corner = corner.Add(cfg.UVInset)

	snapped := mgl32.Vec4{ceil32(world.X()), ceil32(world.Y()), 0, 1}
	clip := u.ViewProjection.Mul4(u.ChunkTransform).Mul4x1(snapped)

	return QuadOutput{
		UV:           mgl32.Vec2{corner.X() / u.AtlasSize.X(), corner.Y() / u.AtlasSize.Y()},
		Color:        v.Color,
		ClipPosition: clip,
	}
}

// TransformQuad transforms all four vertices of a tile quad in corner order.
func TransformQuad(cfg QuadConfig, u QuadUniforms, rects []AtlasRect, v [4]QuadVertex) [4]QuadOutput {
	var out [4]QuadOutput
	for i := range v {
		out[i] = TransformQuadVertex(cfg, u, rects, v[i], i)
	}
	return out
}
