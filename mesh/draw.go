package mesh

import (
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
)

// This is for debugging purposes only

const dbgDrawPadding = 20

// dbgDraw renders the mesh to a PNG and prints it in the terminal (iTerm
// only). Triangles failing the given quality bound are filled red; edges with
// a single incident triangle (boundary) are drawn brighter.
func (c *Connectivity) dbgDraw(scale, qualityBound float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range c.Coords {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	width := int(scale*(maxX-minX)) + dbgDrawPadding*2
	height := int(scale*(maxY-minY)) + dbgDrawPadding*2
	ctx := gg.NewContext(width, height)
	ctx.SetRGB(0, 0, 0)
	ctx.DrawRectangle(0, 0, float64(width), float64(height))
	ctx.Fill()

	// Flip the context so the origin is at the bottom left
	ctx.Translate(0, float64(height))
	ctx.Scale(1, -1)
	ctx.Translate(dbgDrawPadding, dbgDrawPadding)
	ctx.Scale(scale, scale)
	ctx.Translate(-minX, -minY)

	for t := 0; t < c.NTriangle(); t++ {
		a, b, p := c.TriangleCoords(t)
		ctx.MoveTo(a.X, a.Y)
		ctx.LineTo(b.X, b.Y)
		ctx.LineTo(p.X, p.Y)
		ctx.ClosePath()
		if c.Quality != nil && c.Quality[t] > qualityBound {
			ctx.SetRGB(0.6, 0, 0)
			ctx.FillPreserve()
		}
		ctx.SetRGB(0, 0.7, 0.7)
		ctx.SetLineWidth(1)
		ctx.Stroke()
	}

	// Overdraw boundary edges brighter.
	ctx.SetRGB(1, 1, 0)
	ctx.SetLineWidth(2)
	for e := 0; e < c.NEdge(); e++ {
		if c.EdgeTri[e][1] != NoTriangle {
			continue
		}
		t := c.EdgeTri[e][0]
		if t == NoTriangle {
			continue
		}
		i := c.EdgeSlot(t, e)
		from := c.VertexCoord(c.TriVert[t][i])
		to := c.VertexCoord(c.TriVert[t][(i+1)%3])
		ctx.DrawLine(from.X, from.Y, to.X, to.Y)
		ctx.Stroke()
	}

	ctx.SavePNG("/tmp/adaptmesh.png")
	imgcat.CatFile("/tmp/adaptmesh.png", os.Stdout)
}
