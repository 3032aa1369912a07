package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/go-sightline/geom"
	"github.com/achilleasa/go-sightline/nav"
	"github.com/achilleasa/go-sightline/types"
	"github.com/urfave/cli"
)

// Probe runs a single broad-phase query against an index and logs the
// candidate object ids. Exactly one of --ray, --point or --box selects the
// query kind.
func Probe(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("probe: expected an index file argument")
	}

	m, err := nav.Load(ctx.Args().First(), nil)
	if err != nil {
		logger.Error(err)
		return err
	}

	switch {
	case ctx.String("ray") != "":
		origin, dir, err := parseVec3Pair(ctx.String("ray"))
		if err != nil {
			return fmt.Errorf("probe: invalid --ray value: %s", err)
		}
		ids := m.RayCandidates(origin, dir, float32(ctx.Float64("max-dist")), ctx.Bool("first"), false)
		logger.Noticef("%d candidates along ray: %v", len(ids), ids)
	case ctx.String("point") != "":
		p, err := parseVec3(ctx.String("point"))
		if err != nil {
			return fmt.Errorf("probe: invalid --point value: %s", err)
		}
		ids := m.ObjectsAt(p)
		logger.Noticef("%d candidates at point: %v", len(ids), ids)
	case ctx.String("box") != "":
		min, max, err := parseVec3Pair(ctx.String("box"))
		if err != nil {
			return fmt.Errorf("probe: invalid --box value: %s", err)
		}
		out := make([]uint32, clampBoxLimit(ctx.Int("limit")))
		count, found := m.ObjectsInBox(geom.AABB{Min: min, Max: max}, out)
		truncated := ""
		if found && count == len(out) {
			truncated = " (buffer full, result may be truncated)"
		}
		logger.Noticef("%d candidates in box%s: %v", count, truncated, out[:count])
	default:
		return fmt.Errorf("probe: one of --ray, --point or --box is required")
	}
	return nil
}

// parseVec3 parses "x,y,z" into a vector.
func parseVec3(s string) (types.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 3 comma-separated components; got %q", s)
	}

	var v types.Vec3
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return types.Vec3{}, fmt.Errorf("component %d of %q is not a number", i, s)
		}
		v[i] = float32(val)
	}
	return v, nil
}

// parseVec3Pair parses "x,y,z:x,y,z" into two vectors.
func parseVec3Pair(s string) (types.Vec3, types.Vec3, error) {
	halves := strings.Split(s, ":")
	if len(halves) != 2 {
		return types.Vec3{}, types.Vec3{}, fmt.Errorf("expected two colon-separated vectors; got %q", s)
	}

	first, err := parseVec3(halves[0])
	if err != nil {
		return types.Vec3{}, types.Vec3{}, err
	}
	second, err := parseVec3(halves[1])
	if err != nil {
		return types.Vec3{}, types.Vec3{}, err
	}
	return first, second, nil
}
