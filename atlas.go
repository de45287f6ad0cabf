package strata

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// AtlasTable is an ordered table of atlas rectangles plus the atlas texture's
// pixel dimensions. It is the shared, read-only lookup buffer for a draw
// batch: many quad transforms may read it concurrently without coordination.
//
// The atlas size lives in the same value as the rect table rather than being
// bound separately, so a table is self-contained for UV normalization.
type AtlasTable struct {
	// Pages contains the atlas page images, when the table is used for
	// rendering. Geometry-only callers may leave it nil.
	Pages []*ebiten.Image

	rects []AtlasRect
	size  mgl32.Vec2
}

// NewAtlasTable builds a table from explicit rects and atlas dimensions.
// Degenerate rects (End < Begin on either axis) are rejected.
func NewAtlasTable(rects []AtlasRect, atlasW, atlasH int) (*AtlasTable, error) {
	for i, r := range rects {
		if r.End.X() < r.Begin.X() || r.End.Y() < r.Begin.Y() {
			return nil, fmt.Errorf("strata: atlas rect %d is degenerate (begin %v, end %v)", i, r.Begin, r.End)
		}
	}
	return &AtlasTable{
		rects: rects,
		size:  mgl32.Vec2{float32(atlasW), float32(atlasH)},
	}, nil
}

// NewGridAtlas builds a table for a uniform sprite sheet: columns × rows
// cells of tileW × tileH pixels, indexed row-major from the top-left.
func NewGridAtlas(tileW, tileH, columns, rows int) *AtlasTable {
	rects := make([]AtlasRect, 0, columns*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			begin := mgl32.Vec2{float32(col * tileW), float32(row * tileH)}
			rects = append(rects, AtlasRect{
				Begin: begin,
				End:   begin.Add(mgl32.Vec2{float32(tileW), float32(tileH)}),
			})
		}
	}
	return &AtlasTable{
		rects: rects,
		size:  mgl32.Vec2{float32(columns * tileW), float32(rows * tileH)},
	}
}

// Rects returns the ordered rect slice for direct indexing in the quad
// transform hot path. The slice must be treated as read-only.
func (a *AtlasTable) Rects() []AtlasRect {
	return a.rects
}

// Rect returns the rect at index i. Unlike the raw Rects slice, this is
// bounds checked: out-of-range indices log a warning (debug mode) and return
// a zero rect rather than panicking.
func (a *AtlasTable) Rect(i int) AtlasRect {
	if i < 0 || i >= len(a.rects) {
		debugf("atlas rect index %d out of range (table has %d)", i, len(a.rects))
		return AtlasRect{}
	}
	return a.rects[i]
}

// Size returns the atlas pixel dimensions.
func (a *AtlasTable) Size() mgl32.Vec2 {
	return a.size
}

// Len returns the number of rects in the table.
func (a *AtlasTable) Len() int {
	return len(a.rects)
}

// --- TexturePacker JSON loading ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame jsonRect `json:"frame"`
}

// LoadAtlasTable parses TexturePacker hash-format JSON (a single "frames"
// object) into an AtlasTable. Frames are ordered by name so indices are
// deterministic across loads; atlasW and atlasH are the page dimensions.
func LoadAtlasTable(jsonData []byte, atlasW, atlasH int) (*AtlasTable, error) {
	var doc struct {
		Frames map[string]jsonFrame `json:"frames"`
	}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("strata: failed to parse atlas JSON: %w", err)
	}
	if doc.Frames == nil {
		return nil, fmt.Errorf("strata: atlas JSON has no \"frames\" key")
	}

	names := make([]string, 0, len(doc.Frames))
	for name := range doc.Frames {
		names = append(names, name)
	}
	sort.Strings(names)

	rects := make([]AtlasRect, 0, len(names))
	for _, name := range names {
		f := doc.Frames[name].Frame
		if f.W < 0 || f.H < 0 {
			return nil, fmt.Errorf("strata: atlas frame %q has negative size (%dx%d)", name, f.W, f.H)
		}
		begin := mgl32.Vec2{float32(f.X), float32(f.Y)}
		rects = append(rects, AtlasRect{
			Begin: begin,
			End:   begin.Add(mgl32.Vec2{float32(f.W), float32(f.H)}),
		})
	}

	return &AtlasTable{
		rects: rects,
		size:  mgl32.Vec2{float32(atlasW), float32(atlasH)},
	}, nil
}
