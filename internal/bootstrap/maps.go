package bootstrap

import (
	"math/rand"
	"strings"
)

// curatedMaps is the subset of maps that play well with the current bots.
var curatedMaps = []string{
	"Atrium",
	"Bunkers (2)",
	"Castle Islands (2)",
	"Castle Islands (4)",
	"Delta",
	"Desert Eagle",
	"Park",
	"Roads",
	"Snow",
	"Spots (8)",
	"extra/Damned Rockets (2)",
	"extra/Ice ring",
	"extra/IceWorld",
	"extra/I see you (2)",
	"extra/Nile",
	"extra/twisted (2)",
	"extra/Yellow and Green",
	"extra2/Mini Islands (4)",
}

// Maps returns the curated map names used for random selection.
func Maps() []string {
	out := make([]string, len(curatedMaps))
	copy(out, curatedMaps)
	return out
}

// MapPath turns a map name into its resource path: ".map" is appended and
// "maps/" prepended unless already present.
func MapPath(name string) string {
	if !strings.HasSuffix(name, ".map") {
		name += ".map"
	}
	if !strings.HasPrefix(name, "maps/") {
		name = "maps/" + name
	}
	return name
}

// SelectMap returns the resource path of the explicit map, or of a map chosen
// uniformly from the curated list when explicit is empty.
//
// rng is independent of the simulation seed so fixing d_seed doesn't also
// fix the map.
func SelectMap(explicit string, rng *rand.Rand) string {
	name := strings.TrimSpace(explicit)
	if name == "" {
		name = curatedMaps[rng.Intn(len(curatedMaps))]
	}
	return MapPath(name)
}
