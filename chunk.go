package strata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// maxQuadsPerDraw is the maximum number of tile quads per draw command.
// Limited by the uint16 index buffer: 65535 / 4 vertices per quad = 16383.
const maxQuadsPerDraw = 16383

// ErrMeshTooLarge is returned when a chunk holds more occupied tiles than a
// single uint16-indexed mesh can address.
var ErrMeshTooLarge = errors.New("strata: chunk exceeds quad budget for a single mesh")

// quadLocal holds the quad-local corner positions fed to the vertex
// transform, in the canonical corner order: upper-left, lower-left,
// lower-right, upper-right.
var quadLocal = [4]mgl32.Vec3{
	{0, 0, 0},
	{0, 1, 0},
	{1, 1, 0},
	{1, 0, 0},
}

// Chunk is a fixed-dimension dense grid of tiles. A slot with a negative
// sprite index is empty and emits no geometry.
type Chunk struct {
	width, height int // grid dimensions in tiles
	tiles         []Tile
	dirty         bool
}

// NewChunk creates an empty chunk of the given tile dimensions.
func NewChunk(width, height int) *Chunk {
	tiles := make([]Tile, width*height)
	for i := range tiles {
		tiles[i].SpriteIndex = -1
	}
	return &Chunk{width: width, height: height, tiles: tiles, dirty: true}
}

// Width returns the chunk's width in tiles.
func (c *Chunk) Width() int { return c.width }

// Height returns the chunk's height in tiles.
func (c *Chunk) Height() int { return c.height }

// SetTile places a tile at the given grid slot. Out-of-range coordinates are
// ignored. The tile's Point is overwritten with the slot coordinate.
func (c *Chunk) SetTile(col, row int, t Tile) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return
	}
	t.Point = Vec2i{X: col, Y: row}
	c.tiles[row*c.width+col] = t
	c.dirty = true
}

// ClearTile empties the given grid slot.
func (c *Chunk) ClearTile(col, row int) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return
	}
	c.tiles[row*c.width+col] = Tile{Point: Vec2i{X: col, Y: row}, SpriteIndex: -1}
	c.dirty = true
}

// Tile returns the tile at the given slot and whether the slot is occupied.
func (c *Chunk) Tile(col, row int) (Tile, bool) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return Tile{}, false
	}
	t := c.tiles[row*c.width+col]
	return t, t.SpriteIndex >= 0
}

// Dirty reports whether the chunk changed since the last ClearDirty.
func (c *Chunk) Dirty() bool { return c.dirty }

// ClearDirty marks the chunk's geometry as up to date.
func (c *Chunk) ClearDirty() { c.dirty = false }

// TileCount returns the number of occupied slots.
func (c *Chunk) TileCount() int {
	n := 0
	for i := range c.tiles {
		if c.tiles[i].SpriteIndex >= 0 {
			n++
		}
	}
	return n
}

// ChunkMesh is the transformed geometry for one chunk: four QuadOutput
// vertices per quad plus a two-triangle index topology.
type ChunkMesh struct {
	Vertices []QuadOutput
	Indices  []uint16
	Quads    int
}

// ChunkTransformFor returns the model matrix placing chunk (chunkX, chunkY)
// in world space, given the chunk dimensions in tiles and tile dimensions in
// pixels.
func ChunkTransformFor(chunkX, chunkY, chunkW, chunkH, tileW, tileH int) mgl32.Mat4 {
	return mgl32.Translate3D(
		float32(chunkX*chunkW*tileW),
		float32(chunkY*chunkH*tileH),
		0,
	)
}

// BuildMesh transforms every occupied tile into quad geometry. Tiles are
// emitted in ascending Z order (stable within a layer, row-major), so later
// quads overdraw earlier ones. tileW and tileH are the grid spacing in
// pixels; each tile quad itself is sized by its atlas rect.
//
// The per-tile placement rides the model matrix: each tile's quad is built
// from unit-quad corners and positioned by composing the chunk transform with
// the tile's grid translation, keeping the per-vertex transform itself free
// of any per-tile state.
//
// At most maxQuadsPerDraw occupied tiles fit in one mesh; the uint16 index
// buffer cannot address vertices past that, so a fuller chunk returns
// ErrMeshTooLarge rather than wrapping indices.
func (c *Chunk) BuildMesh(cfg QuadConfig, u QuadUniforms, atlas *AtlasTable, tileW, tileH int) (*ChunkMesh, error) {
	return c.buildMesh(cfg, u, atlas, tileW, tileH, nil)
}

// buildMesh is BuildMesh with an optional sprite index resolver, used by the
// tilemap to route animated tiles to their current frame.
func (c *Chunk) buildMesh(cfg QuadConfig, u QuadUniforms, atlas *AtlasTable, tileW, tileH int, resolve func(int) int) (*ChunkMesh, error) {
	occupied := make([]int, 0, len(c.tiles))
	for i := range c.tiles {
		if c.tiles[i].SpriteIndex >= 0 {
			occupied = append(occupied, i)
		}
	}
	if len(occupied) > maxQuadsPerDraw {
		return nil, fmt.Errorf("%d tiles: %w", len(occupied), ErrMeshTooLarge)
	}
	sort.SliceStable(occupied, func(a, b int) bool {
		return c.tiles[occupied[a]].ZOrder < c.tiles[occupied[b]].ZOrder
	})

	mesh := &ChunkMesh{
		Vertices: make([]QuadOutput, 0, len(occupied)*4),
		Indices:  make([]uint16, 0, len(occupied)*6),
	}
	rects := atlas.Rects()

	for _, idx := range occupied {
		t := c.tiles[idx]
		if resolve != nil {
			t.SpriteIndex = resolve(t.SpriteIndex)
		}
		raw := t.Raw()

		tileU := u
		tileU.ChunkTransform = u.ChunkTransform.Mul4(mgl32.Translate3D(
			float32(t.Point.X*tileW),
			float32(t.Point.Y*tileH),
			0,
		))

		base := uint16(mesh.Quads * 4)
		for i := 0; i < 4; i++ {
			v := QuadVertex{
				Position:  quadLocal[i],
				TileIndex: float32(raw.Index),
				Flags:     raw.Flags,
				Color:     raw.Color,
			}
			mesh.Vertices = append(mesh.Vertices, TransformQuadVertex(cfg, tileU, rects, v, i))
		}
		// Two triangles per quad: (UL, LL, LR) and (UL, LR, UR).
		mesh.Indices = append(mesh.Indices,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
		mesh.Quads++
	}

	return mesh, nil
}
