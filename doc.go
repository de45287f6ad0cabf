// Package strata generates tile and sprite quad geometry for chunked
// tilemaps rendered with [Ebitengine].
//
// Strata is the vertex stage of a tilemap renderer, run on the CPU: given a
// tile's atlas rect index, optional flip flags, and a tint, it produces the
// pixel-snapped clip-space position, normalized UV, and pass-through color
// for each corner of the tile's quad. Around that core it provides the atlas
// rect table, chunked tile storage with change events, an orthographic
// camera, and conversion of the transformed geometry into
// [ebiten.DrawTriangles] vertex streams.
//
// # Quick start
//
//	atlas := strata.NewGridAtlas(32, 32, 8, 8)
//	m := strata.NewTilemap(4, 4, 16, 16, 32, 32, atlas)
//	chunk, _ := m.AddChunk(0, 0)
//	chunk.SetTile(3, 5, strata.NewTile(strata.Vec2i{X: 3, Y: 5}, 7))
//
//	cam := strata.NewCamera(strata.Rect{Width: 640, Height: 480})
//	mesh, _ := m.BuildChunkMesh(strata.InsetQuadConfig, cam.ViewProjection(), 0, 0)
//	cmds := strata.EmitChunk(mesh, atlas, cam.Viewport, 0, strata.BlendNormal)
//	// in your ebiten.Game Draw: strata.Draw(screen, cmds)
//
// # Flip and inset variants
//
// The per-vertex transform has two independent toggles, combined in a
// [QuadConfig]: per-tile flip flags (mirroring a sprite about its own
// midpoint without displacing it) and a small UV inset that keeps texture
// filtering from bleeding in neighboring atlas entries. [FlipQuadConfig] and
// [InsetQuadConfig] are the two classic points in that space.
//
// [Ebitengine]: https://ebitengine.org
package strata
