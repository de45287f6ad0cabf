package strata

import "github.com/go-gl/mathgl/mgl32"

// Tile is one cell of a tilemap: a sprite index into the atlas table, a grid
// position, a draw-order layer, a tint, and optional flip state.
type Tile struct {
	// Point is the tile's grid coordinate within its chunk.
	Point Vec2i
	// ZOrder layers tiles within a chunk; higher draws above.
	ZOrder int
	// SpriteIndex selects the atlas rect. Negative means the slot is empty.
	SpriteIndex int
	// Tint multiplies the sampled color. White means no change.
	Tint mgl32.Vec4
	// FlippedH mirrors the sprite horizontally about its own center.
	FlippedH bool
	// FlippedV mirrors the sprite vertically about its own center.
	FlippedV bool
}

// NewTile creates a tile at a grid point with the given sprite index and a
// white tint.
func NewTile(point Vec2i, spriteIndex int) Tile {
	return Tile{Point: point, SpriteIndex: spriteIndex, Tint: ColorWhite}
}

// NewTileZ creates a tile with an explicit Z order.
func NewTileZ(point Vec2i, spriteIndex, zOrder int) Tile {
	return Tile{Point: point, SpriteIndex: spriteIndex, ZOrder: zOrder, Tint: ColorWhite}
}

// Flags packs the tile's flip state into the upload bit encoding
// (FlipHorizontal, FlipVertical).
func (t Tile) Flags() uint32 {
	var flags uint32
	if t.FlippedH {
		flags |= FlipHorizontal
	}
	if t.FlippedV {
		flags |= FlipVertical
	}
	return flags
}

// Raw converts the tile to its upload form.
func (t Tile) Raw() RawTile {
	return RawTile{
		Index: uint32(t.SpriteIndex),
		Flags: t.Flags(),
		Color: t.Tint,
	}
}

// RawTile is the flat upload form of a tile: index, flag bits, and color.
// Bit 0 of Flags is horizontal flip, bit 1 vertical flip; other bits are
// reserved and ignored.
type RawTile struct {
	Index uint32
	Flags uint32
	Color mgl32.Vec4
}

// FlippedH reports whether the horizontal flip bit is set.
func (r RawTile) FlippedH() bool {
	return r.Flags&FlipHorizontal != 0
}

// FlippedV reports whether the vertical flip bit is set.
func (r RawTile) FlippedV() bool {
	return r.Flags&FlipVertical != 0
}

// TileBuilder assembles a Tile through method chaining. The zero builder
// produces an empty-point, index-0, white tile.
type TileBuilder struct {
	tile Tile
}

// NewTileBuilder returns a builder with default values.
func NewTileBuilder() *TileBuilder {
	return &TileBuilder{tile: Tile{Tint: ColorWhite}}
}

// Point sets the tile's grid coordinate.
func (b *TileBuilder) Point(p Vec2i) *TileBuilder {
	b.tile.Point = p
	return b
}

// ZOrder sets the tile's draw-order layer.
func (b *TileBuilder) ZOrder(z int) *TileBuilder {
	b.tile.ZOrder = z
	return b
}

// SpriteIndex sets the tile's atlas rect index.
func (b *TileBuilder) SpriteIndex(i int) *TileBuilder {
	b.tile.SpriteIndex = i
	return b
}

// Tint sets the tile's color.
func (b *TileBuilder) Tint(c mgl32.Vec4) *TileBuilder {
	b.tile.Tint = c
	return b
}

// FlipH sets the horizontal flip state.
func (b *TileBuilder) FlipH(flipped bool) *TileBuilder {
	b.tile.FlippedH = flipped
	return b
}

// FlipV sets the vertical flip state.
func (b *TileBuilder) FlipV(flipped bool) *TileBuilder {
	b.tile.FlippedV = flipped
	return b
}

// Finish returns the assembled tile.
func (b *TileBuilder) Finish() Tile {
	return b.tile
}
