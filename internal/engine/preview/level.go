package preview

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the special behaviour of a surface, as numbered in the manifest.
type Kind int

const (
	KindNormal Kind = iota
	KindSpawn
	KindWall
	KindWater
	KindSnow
	KindBase
)

// Surface is one manifest entry.
type Surface struct {
	Name string
	Kind Kind
}

// Tile is one level cell: an index into the manifest and a rotation in
// counterclockwise quarter turns.
type Tile struct {
	Surface  int
	Rotation int
}

// parseManifest reads "name kind friction speed" lines. Only name and kind
// matter for drawing, and a line that doesn't have them is kept as a normal
// surface so tile indices stay aligned.
func parseManifest(text string) []Surface {
	var out []Surface
	for _, line := range splitLines(text) {
		fields := strings.Fields(line)
		s := Surface{Kind: KindNormal}
		if len(fields) > 0 {
			s.Name = fields[0]
		}
		if len(fields) > 1 {
			if k, err := strconv.Atoi(fields[1]); err == nil && k >= int(KindNormal) && k <= int(KindBase) {
				s.Kind = Kind(k)
			}
		}
		out = append(out, s)
	}
	return out
}

// parseLevel reads rows of space separated numbers, each surface*4 + rotation.
func parseLevel(text string) ([][]Tile, error) {
	var rows [][]Tile
	for i, line := range splitLines(text) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		row := make([]Tile, len(fields))
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("level line %d: bad tile %q", i+1, f)
			}
			row[j] = Tile{Surface: v / 4, Rotation: v % 4}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("level is empty")
	}
	return rows, nil
}

// splitLines splits on LF or CRLF and drops a trailing empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
