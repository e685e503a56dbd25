package main

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/osuushi/adaptmesh"
)

// Demo of mesh adaptation. Input on stdin should be newline separated points
// in the form "x y". The points are triangulated over their bounding box,
// then triangles with poor quality are refined until the mesh settles.
func main() {
	points := readPoints(os.Stdin)
	if len(points) == 0 {
		log.Fatal("no points on stdin")
	}
	fmt.Printf("Read %d points\n", len(points))

	m, err := adaptmesh.New(points, boundingDomain(points), adaptmesh.DefaultOptions())
	if err != nil {
		log.Fatalf("triangulation failed: %v", err)
	}
	report(m)

	// One refinement round over the worst triangles.
	conn := m.Conn()
	want := make([]bool, conn.NTriangle())
	for t := range want {
		want[t] = conn.Quality[t] > 1.5
	}
	inserted, err := m.RequestRefine(want)
	if err != nil {
		log.Fatalf("refinement failed: %v", err)
	}
	fmt.Printf("Inserted %d vertices\n", inserted)
	report(m)
}

func report(m *adaptmesh.Mesh) {
	conn := m.Conn()
	worst := 0.0
	for _, q := range conn.Quality {
		worst = math.Max(worst, q)
	}
	fmt.Printf("%d vertices, %d triangles, %d edges, worst quality %.3f\n",
		conn.NVertex(), conn.NTriangle(), conn.NEdge(), worst)
}

func boundingDomain(points []adaptmesh.Point) adaptmesh.Domain {
	d := adaptmesh.Domain{Min: points[0], Max: points[0]}
	for _, p := range points {
		d.Min.X = math.Min(d.Min.X, p.X)
		d.Min.Y = math.Min(d.Min.Y, p.Y)
		d.Max.X = math.Max(d.Max.X, p.X)
		d.Max.Y = math.Max(d.Max.Y, p.Y)
	}
	return d
}

func readPoints(in *os.File) []adaptmesh.Point {
	points := []adaptmesh.Point{}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		points = append(points, parsePoint(line))
	}
	return points
}

func parsePoint(line string) adaptmesh.Point {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		log.Fatalf("malformed point line %q", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		log.Fatalf("invalid x value %q: %v", parts[0], err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		log.Fatalf("invalid y value %q: %v", parts[1], err)
	}
	return adaptmesh.Point{X: x, Y: y}
}
