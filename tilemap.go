package strata

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrOutOfBounds is returned when a tile or chunk coordinate falls outside
// the tilemap's dimensions.
var ErrOutOfBounds = errors.New("strata: out of bounds")

// ErrNoChunk is returned when an operation targets a chunk coordinate that
// has no chunk.
var ErrNoChunk = errors.New("strata: no chunk at coordinate")

// MapEventKind identifies what happened to a chunk.
type MapEventKind uint8

const (
	ChunkCreated  MapEventKind = iota // a chunk was added to the map
	ChunkModified                     // tiles in a chunk changed
	ChunkRemoved                      // a chunk was removed from the map
)

// MapEvent records a chunk mutation. Events are queued on the map and
// drained by the rendering side to decide which chunk meshes to rebuild,
// create, or drop.
type MapEvent struct {
	Kind  MapEventKind
	Index int // chunk index: chunkY*WidthChunks + chunkX
}

// Tilemap is a chunk-indexed tile grid. The map is dimensioned in chunks;
// each chunk is a dense grid of tiles; each tile references a rect in the
// shared atlas table.
type Tilemap struct {
	widthChunks  int
	heightChunks int
	chunkWidth   int // tiles per chunk, horizontally
	chunkHeight  int // tiles per chunk, vertically
	tileWidth    int // pixels
	tileHeight   int // pixels

	chunks   map[int]*Chunk
	atlas    *AtlasTable
	events   []MapEvent
	animator *Animator
}

// NewTilemap creates an empty tilemap of widthChunks × heightChunks chunks,
// each chunkW × chunkH tiles of tileW × tileH pixels, sharing the given
// atlas table.
func NewTilemap(widthChunks, heightChunks, chunkW, chunkH, tileW, tileH int, atlas *AtlasTable) *Tilemap {
	return &Tilemap{
		widthChunks:  widthChunks,
		heightChunks: heightChunks,
		chunkWidth:   chunkW,
		chunkHeight:  chunkH,
		tileWidth:    tileW,
		tileHeight:   tileH,
		chunks:       make(map[int]*Chunk),
		atlas:        atlas,
	}
}

// Atlas returns the map's shared atlas table.
func (m *Tilemap) Atlas() *AtlasTable { return m.atlas }

// SetAnimator attaches an animator whose sequences are resolved during mesh
// building. A nil animator disables animation resolution.
func (m *Tilemap) SetAnimator(a *Animator) { m.animator = a }

// WidthChunks returns the map width in chunks.
func (m *Tilemap) WidthChunks() int { return m.widthChunks }

// HeightChunks returns the map height in chunks.
func (m *Tilemap) HeightChunks() int { return m.heightChunks }

// TileWidth returns the tile width in pixels.
func (m *Tilemap) TileWidth() int { return m.tileWidth }

// TileHeight returns the tile height in pixels.
func (m *Tilemap) TileHeight() int { return m.tileHeight }

// chunkIndex flattens a chunk coordinate into the event/handle index space.
func (m *Tilemap) chunkIndex(chunkX, chunkY int) int {
	return chunkY*m.widthChunks + chunkX
}

// checkChunkCoord validates a chunk coordinate against the map dimensions.
func (m *Tilemap) checkChunkCoord(chunkX, chunkY int) error {
	if chunkX < 0 || chunkX >= m.widthChunks || chunkY < 0 || chunkY >= m.heightChunks {
		return fmt.Errorf("chunk (%d, %d): %w", chunkX, chunkY, ErrOutOfBounds)
	}
	return nil
}

// AddChunk creates an empty chunk at the given chunk coordinate and queues a
// ChunkCreated event. Adding over an existing chunk replaces it.
func (m *Tilemap) AddChunk(chunkX, chunkY int) (*Chunk, error) {
	if err := m.checkChunkCoord(chunkX, chunkY); err != nil {
		return nil, err
	}
	c := NewChunk(m.chunkWidth, m.chunkHeight)
	idx := m.chunkIndex(chunkX, chunkY)
	m.chunks[idx] = c
	m.events = append(m.events, MapEvent{Kind: ChunkCreated, Index: idx})
	return c, nil
}

// RemoveChunk drops the chunk at the given coordinate and queues a
// ChunkRemoved event. All tile data in the chunk is discarded.
func (m *Tilemap) RemoveChunk(chunkX, chunkY int) error {
	if err := m.checkChunkCoord(chunkX, chunkY); err != nil {
		return err
	}
	idx := m.chunkIndex(chunkX, chunkY)
	if _, ok := m.chunks[idx]; !ok {
		return fmt.Errorf("chunk (%d, %d): %w", chunkX, chunkY, ErrNoChunk)
	}
	delete(m.chunks, idx)
	m.events = append(m.events, MapEvent{Kind: ChunkRemoved, Index: idx})
	return nil
}

// ChunkAt returns the chunk at the given chunk coordinate, or nil.
func (m *Tilemap) ChunkAt(chunkX, chunkY int) *Chunk {
	if m.checkChunkCoord(chunkX, chunkY) != nil {
		return nil
	}
	return m.chunks[m.chunkIndex(chunkX, chunkY)]
}

// ContainsChunk reports whether a chunk exists at the given coordinate.
func (m *Tilemap) ContainsChunk(chunkX, chunkY int) bool {
	return m.ChunkAt(chunkX, chunkY) != nil
}

// TileToChunkCoord converts a global tile coordinate to the coordinate of
// the chunk containing it.
func (m *Tilemap) TileToChunkCoord(p Vec2i) Vec2i {
	return Vec2i{
		X: floorDiv(p.X, m.chunkWidth),
		Y: floorDiv(p.Y, m.chunkHeight),
	}
}

// CenterTileCoord returns the tile coordinate at the center of the map.
func (m *Tilemap) CenterTileCoord() Vec2i {
	return Vec2i{
		X: m.widthChunks * m.chunkWidth / 2,
		Y: m.heightChunks * m.chunkHeight / 2,
	}
}

// TranslationToTileCoord converts a world-space translation into the global
// tile coordinate it falls in. Fractional translations floor, so a point
// just left of the origin lands in tile -1, not tile 0.
func (m *Tilemap) TranslationToTileCoord(translation mgl32.Vec3) Vec2i {
	return Vec2i{
		X: int(math.Floor(float64(translation.X()) / float64(m.tileWidth))),
		Y: int(math.Floor(float64(translation.Y()) / float64(m.tileHeight))),
	}
}

// SetTile places a tile at a global tile coordinate, routing it into the
// containing chunk, and queues a single ChunkModified event. The chunk must
// already exist.
func (m *Tilemap) SetTile(x, y int, t Tile) error {
	if x < 0 || x >= m.widthChunks*m.chunkWidth || y < 0 || y >= m.heightChunks*m.chunkHeight {
		return fmt.Errorf("tile (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	cc := m.TileToChunkCoord(Vec2i{X: x, Y: y})
	idx := m.chunkIndex(cc.X, cc.Y)
	chunk, ok := m.chunks[idx]
	if !ok {
		return fmt.Errorf("tile (%d, %d): %w", x, y, ErrNoChunk)
	}
	chunk.SetTile(x-cc.X*m.chunkWidth, y-cc.Y*m.chunkHeight, t)
	m.events = append(m.events, MapEvent{Kind: ChunkModified, Index: idx})
	return nil
}

// SetTiles places many tiles, each at its Tile.Point taken as a global tile
// coordinate. Tiles are grouped per chunk so each touched chunk queues
// exactly one ChunkModified event.
func (m *Tilemap) SetTiles(tiles []Tile) error {
	touched := make(map[int][]Tile)
	for _, t := range tiles {
		x, y := t.Point.X, t.Point.Y
		if x < 0 || x >= m.widthChunks*m.chunkWidth || y < 0 || y >= m.heightChunks*m.chunkHeight {
			return fmt.Errorf("tile (%d, %d): %w", x, y, ErrOutOfBounds)
		}
		cc := m.TileToChunkCoord(t.Point)
		idx := m.chunkIndex(cc.X, cc.Y)
		if _, ok := m.chunks[idx]; !ok {
			return fmt.Errorf("tile (%d, %d): %w", x, y, ErrNoChunk)
		}
		touched[idx] = append(touched[idx], t)
	}

	for idx, group := range touched {
		chunk := m.chunks[idx]
		chunkX := idx % m.widthChunks
		chunkY := idx / m.widthChunks
		for _, t := range group {
			chunk.SetTile(t.Point.X-chunkX*m.chunkWidth, t.Point.Y-chunkY*m.chunkHeight, t)
		}
		m.events = append(m.events, MapEvent{Kind: ChunkModified, Index: idx})
	}
	return nil
}

// DrainEvents returns all queued map events and clears the queue.
func (m *Tilemap) DrainEvents() []MapEvent {
	ev := m.events
	m.events = nil
	return ev
}

// ChunkTransform returns the model matrix placing the given chunk in world
// space.
func (m *Tilemap) ChunkTransform(chunkX, chunkY int) mgl32.Mat4 {
	return ChunkTransformFor(chunkX, chunkY, m.chunkWidth, m.chunkHeight, m.tileWidth, m.tileHeight)
}

// BuildChunkMesh transforms the chunk at the given coordinate into geometry
// using the camera's view-projection matrix.
func (m *Tilemap) BuildChunkMesh(cfg QuadConfig, viewProjection mgl32.Mat4, chunkX, chunkY int) (*ChunkMesh, error) {
	if err := m.checkChunkCoord(chunkX, chunkY); err != nil {
		return nil, err
	}
	chunk := m.chunks[m.chunkIndex(chunkX, chunkY)]
	if chunk == nil {
		return nil, fmt.Errorf("chunk (%d, %d): %w", chunkX, chunkY, ErrNoChunk)
	}
	u := QuadUniforms{
		ViewProjection: viewProjection,
		ChunkTransform: m.ChunkTransform(chunkX, chunkY),
		AtlasSize:      m.atlas.Size(),
	}
	var resolve func(int) int
	if m.animator != nil {
		resolve = m.animator.FrameFor
	}
	mesh, err := chunk.buildMesh(cfg, u, m.atlas, m.tileWidth, m.tileHeight, resolve)
	if err != nil {
		return nil, fmt.Errorf("chunk (%d, %d): %w", chunkX, chunkY, err)
	}
	chunk.ClearDirty()
	return mesh, nil
}

// floorDiv divides rounding toward negative infinity, so negative
// coordinates map to the correct chunk.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
