package cmd

import (
	"fmt"

	"github.com/achilleasa/go-sightline/nav"
	"github.com/urfave/cli"
)

// Inspect loads an index, logs its headline figures and renders the full
// statistics table.
func Inspect(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("inspect: expected an index file argument")
	}

	m, err := nav.Load(ctx.Args().First(), nil)
	if err != nil {
		logger.Error(err)
		return err
	}

	b := m.Bounds()
	remapMode := "pass-through ids"
	if m.UsesRemap() {
		remapMode = "remapped ids"
	}
	logger.Noticef(`index "%s": %d primitives, %s`, m.Name(), m.PrimitiveCount(), remapMode)
	logger.Noticef("bounds: min %.3f %.3f %.3f / max %.3f %.3f %.3f",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	logger.Noticef("index statistics\n%s", m.Stats())
	return nil
}
