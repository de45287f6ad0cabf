package strata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// BlendMode selects a compositing operation for a tile layer.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// RenderCommand is a single DrawTriangles instruction for a chunk's geometry.
type RenderCommand struct {
	Vertices []ebiten.Vertex
	Indices  []uint16
	Page     *ebiten.Image
	Blend    BlendMode
}

// ScreenFromClip converts a clip-space position to screen pixels within the
// given viewport. Clip X maps [-1,1] to [left,right]; clip Y maps [-1,1] to
// [bottom,top] (screen Y grows downward).
func ScreenFromClip(clip mgl32.Vec4, viewport Rect) (sx, sy float32) {
	w := clip.W()
	if w == 0 {
		w = 1
	}
	nx := clip.X() / w
	ny := clip.Y() / w
	sx = viewport.X + (nx+1)/2*viewport.Width
	sy = viewport.Y + (1-ny)/2*viewport.Height
	return sx, sy
}

// MeshToVertices converts a chunk mesh's quad outputs into ebiten vertices,
// appending to dst and returning it. Clip positions become screen pixels via
// the viewport; normalized UVs become atlas pixel source coordinates; colors
// are premultiplied at submission, per the renderer's contract.
func MeshToVertices(mesh *ChunkMesh, atlasSize mgl32.Vec2, viewport Rect, dst []ebiten.Vertex) []ebiten.Vertex {
	for i := range mesh.Vertices {
		out := &mesh.Vertices[i]
		sx, sy := ScreenFromClip(out.ClipPosition, viewport)
		a := out.Color.W()
		dst = append(dst, ebiten.Vertex{
			DstX:   sx,
			DstY:   sy,
			SrcX:   out.UV.X() * atlasSize.X(),
			SrcY:   out.UV.Y() * atlasSize.Y(),
			ColorR: out.Color.X() * a,
			ColorG: out.Color.Y() * a,
			ColorB: out.Color.Z() * a,
			ColorA: a,
		})
	}
	return dst
}

// EmitChunk converts a chunk mesh into render commands against the given
// atlas page, splitting at maxQuadsPerDraw so index counts never exceed the
// uint16 budget.
func EmitChunk(mesh *ChunkMesh, atlas *AtlasTable, viewport Rect, page int, blend BlendMode) []RenderCommand {
	if mesh.Quads == 0 {
		return nil
	}

	var img *ebiten.Image
	if page >= 0 && page < len(atlas.Pages) {
		img = atlas.Pages[page]
	} else {
		debugf("atlas page %d out of range (atlas has %d)", page, len(atlas.Pages))
	}

	verts := MeshToVertices(mesh, atlas.Size(), viewport, make([]ebiten.Vertex, 0, len(mesh.Vertices)))

	var commands []RenderCommand
	for offset := 0; offset < mesh.Quads; offset += maxQuadsPerDraw {
		end := min(offset+maxQuadsPerDraw, mesh.Quads)
		batch := end - offset

		// Index values are relative to the batch's first vertex.
		indices := make([]uint16, 0, batch*6)
		for q := 0; q < batch; q++ {
			base := uint16(q * 4)
			indices = append(indices,
				base+0, base+1, base+2,
				base+0, base+2, base+3,
			)
		}

		commands = append(commands, RenderCommand{
			Vertices: verts[offset*4 : end*4],
			Indices:  indices,
			Page:     img,
			Blend:    blend,
		})
	}
	return commands
}

// Draw submits render commands to the destination image.
func Draw(dst *ebiten.Image, commands []RenderCommand) {
	for i := range commands {
		cmd := &commands[i]
		if cmd.Page == nil {
			continue
		}
		opts := &ebiten.DrawTrianglesOptions{Blend: cmd.Blend.EbitenBlend()}
		dst.DrawTriangles(cmd.Vertices, cmd.Indices, cmd.Page, opts)
	}
}
