package strata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Clip to screen ---

func TestScreenFromClipCorners(t *testing.T) {
	viewport := Rect{Width: 640, Height: 480}

	sx, sy := ScreenFromClip(mgl32.Vec4{-1, 1, 0, 1}, viewport)
	assertNear(t, "tl sx", sx, 0)
	assertNear(t, "tl sy", sy, 0)

	sx, sy = ScreenFromClip(mgl32.Vec4{1, -1, 0, 1}, viewport)
	assertNear(t, "br sx", sx, 640)
	assertNear(t, "br sy", sy, 480)

	sx, sy = ScreenFromClip(mgl32.Vec4{0, 0, 0, 1}, viewport)
	assertNear(t, "center sx", sx, 320)
	assertNear(t, "center sy", sy, 240)
}

func TestScreenFromClipOffsetViewport(t *testing.T) {
	viewport := Rect{X: 100, Y: 50, Width: 200, Height: 100}
	sx, sy := ScreenFromClip(mgl32.Vec4{0, 0, 0, 1}, viewport)
	assertNear(t, "offset sx", sx, 200)
	assertNear(t, "offset sy", sy, 100)
}

func TestScreenFromClipRoundtripsCamera(t *testing.T) {
	// Camera projection followed by ScreenFromClip must agree with
	// WorldToScreen for any world point.
	c := NewCamera(Rect{Width: 640, Height: 480})
	c.X, c.Y = 37, -12
	c.Zoom = 1.5
	c.MarkDirty()

	vp := c.ViewProjection()
	for _, w := range []mgl32.Vec2{{0, 0}, {100, 50}, {-64, 300}} {
		clip := vp.Mul4x1(mgl32.Vec4{w.X(), w.Y(), 0, 1})
		sx, sy := ScreenFromClip(clip, c.Viewport)
		wantX, wantY := c.WorldToScreen(w.X(), w.Y())
		if d := sx - wantX; d < -1e-2 || d > 1e-2 {
			t.Errorf("sx = %v, want %v (world %v)", sx, wantX, w)
		}
		if d := sy - wantY; d < -1e-2 || d > 1e-2 {
			t.Errorf("sy = %v, want %v (world %v)", sy, wantY, w)
		}
	}
}

// --- Vertex conversion ---

func buildTestMesh(t *testing.T) (*ChunkMesh, *AtlasTable) {
	t.Helper()
	atlas := NewGridAtlas(32, 32, 4, 4)
	c := NewChunk(1, 1)
	tile := NewTile(Vec2i{}, 5)
	tile.Tint = mgl32.Vec4{1, 0.5, 0.25, 0.5}
	c.SetTile(0, 0, tile)

	u := QuadUniforms{
		ViewProjection: mgl32.Ortho(0, 640, 480, 0, -1, 1),
		ChunkTransform: mgl32.Ident4(),
		AtlasSize:      atlas.Size(),
	}
	mesh, err := c.BuildMesh(FlipQuadConfig, u, atlas, 32, 32)
	if err != nil {
		t.Fatalf("BuildMesh: %v", err)
	}
	return mesh, atlas
}

func TestMeshToVerticesPremultipliesColor(t *testing.T) {
	mesh, atlas := buildTestMesh(t)
	verts := MeshToVertices(mesh, atlas.Size(), Rect{Width: 640, Height: 480}, nil)
	if len(verts) != 4 {
		t.Fatalf("verts = %d, want 4", len(verts))
	}

	v := verts[0]
	assertNear(t, "ColorR", v.ColorR, 1*0.5)
	assertNear(t, "ColorG", v.ColorG, 0.5*0.5)
	assertNear(t, "ColorB", v.ColorB, 0.25*0.5)
	assertNear(t, "ColorA", v.ColorA, 0.5)
}

func TestMeshToVerticesSourcePixels(t *testing.T) {
	mesh, atlas := buildTestMesh(t)
	verts := MeshToVertices(mesh, atlas.Size(), Rect{Width: 640, Height: 480}, nil)

	// Sprite 5 in a 4x4 grid of 32px tiles: row 1, col 1 -> rect (32,32)-(64,64).
	assertNear(t, "SrcX UL", verts[0].SrcX, 32)
	assertNear(t, "SrcY UL", verts[0].SrcY, 32)
	assertNear(t, "SrcX LR", verts[2].SrcX, 64)
	assertNear(t, "SrcY LR", verts[2].SrcY, 64)
}

func TestMeshToVerticesScreenPositions(t *testing.T) {
	mesh, atlas := buildTestMesh(t)
	verts := MeshToVertices(mesh, atlas.Size(), Rect{Width: 640, Height: 480}, nil)

	// The ortho projection covered exactly the viewport, so the quad lands
	// at its world position in screen pixels.
	assertNear(t, "DstX UL", verts[0].DstX, 0)
	assertNear(t, "DstY UL", verts[0].DstY, 0)
	assertNear(t, "DstX LR", verts[2].DstX, 32)
	assertNear(t, "DstY LR", verts[2].DstY, 32)
}

func TestMeshToVerticesAppends(t *testing.T) {
	mesh, atlas := buildTestMesh(t)
	seed := make([]ebiten.Vertex, 2)
	verts := MeshToVertices(mesh, atlas.Size(), Rect{Width: 640, Height: 480}, seed)
	if len(verts) != 6 {
		t.Errorf("appended length = %d, want 6", len(verts))
	}
}

// --- Command emission ---

func TestEmitChunkSingleCommand(t *testing.T) {
	mesh, atlas := buildTestMesh(t)
	cmds := EmitChunk(mesh, atlas, Rect{Width: 640, Height: 480}, 0, BlendNormal)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	cmd := cmds[0]
	if len(cmd.Vertices) != 4 || len(cmd.Indices) != 6 {
		t.Errorf("vertices/indices = %d/%d, want 4/6", len(cmd.Vertices), len(cmd.Indices))
	}
	// Atlas has no pages attached: command carries a nil image, which Draw
	// skips.
	if cmd.Page != nil {
		t.Error("expected nil page for pageless atlas")
	}
}

func TestEmitChunkEmptyMesh(t *testing.T) {
	atlas := NewGridAtlas(32, 32, 4, 4)
	mesh, err := NewChunk(2, 2).BuildMesh(FlipQuadConfig, QuadUniforms{
		ViewProjection: mgl32.Ident4(),
		ChunkTransform: mgl32.Ident4(),
		AtlasSize:      atlas.Size(),
	}, atlas, 32, 32)
	if err != nil {
		t.Fatalf("BuildMesh: %v", err)
	}

	if cmds := EmitChunk(mesh, atlas, Rect{Width: 640, Height: 480}, 0, BlendNormal); cmds != nil {
		t.Errorf("commands = %+v, want nil for empty mesh", cmds)
	}
}

func TestEmitChunkBatchIndicesRebased(t *testing.T) {
	// Build a mesh exceeding one draw's quad budget and verify the second
	// command's indices restart at zero.
	atlas := NewGridAtlas(1, 1, 1, 1)
	mesh := &ChunkMesh{Quads: maxQuadsPerDraw + 2}
	mesh.Vertices = make([]QuadOutput, mesh.Quads*4)
	for i := range mesh.Vertices {
		mesh.Vertices[i].ClipPosition = mgl32.Vec4{0, 0, 0, 1}
	}

	cmds := EmitChunk(mesh, atlas, Rect{Width: 640, Height: 480}, 0, BlendNormal)
	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2", len(cmds))
	}
	if len(cmds[0].Vertices) != maxQuadsPerDraw*4 {
		t.Errorf("first batch vertices = %d, want %d", len(cmds[0].Vertices), maxQuadsPerDraw*4)
	}
	if len(cmds[1].Vertices) != 8 {
		t.Errorf("second batch vertices = %d, want 8", len(cmds[1].Vertices))
	}
	if cmds[1].Indices[0] != 0 {
		t.Errorf("second batch first index = %d, want 0", cmds[1].Indices[0])
	}
	last := cmds[0].Indices[len(cmds[0].Indices)-1]
	if last != uint16(maxQuadsPerDraw*4-1) {
		t.Errorf("first batch last index = %d, want %d", last, maxQuadsPerDraw*4-1)
	}
}

// --- Blend modes ---

func TestBlendModeMapping(t *testing.T) {
	if BlendNormal.EbitenBlend() != ebiten.BlendSourceOver {
		t.Error("BlendNormal should map to source-over")
	}
	if BlendAdd.EbitenBlend() != ebiten.BlendLighter {
		t.Error("BlendAdd should map to lighter")
	}
	if BlendMultiply.EbitenBlend() == ebiten.BlendSourceOver {
		t.Error("BlendMultiply should not map to source-over")
	}
}
