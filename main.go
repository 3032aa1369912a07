package main

import (
	"os"

	"github.com/achilleasa/go-sightline/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-sightline"
	app.Usage = "load and query pre-built spatial indexes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "inspect",
			Usage: "print statistics for an index file",
			Description: `
Load an index from a local path or http/https URL, verify its structure and
print its bounds together with node and object statistics.`,
			ArgsUsage: "index_file",
			Action:    cmd.Inspect,
		},
		{
			Name:  "probe",
			Usage: "run a single query against an index file",
			Description: `
Run one broad-phase query against an index and print the candidate object
ids. The query is selected with one of --ray, --point or --box.`,
			ArgsUsage: "index_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "ray",
					Usage: `cast a ray: "ox,oy,oz:dx,dy,dz"`,
				},
				cli.Float64Flag{
					Name:  "max-dist",
					Value: 1000,
					Usage: "maximum ray distance",
				},
				cli.BoolFlag{
					Name:  "first",
					Usage: "stop the ray walk at the first candidate",
				},
				cli.StringFlag{
					Name:  "point",
					Usage: `occupancy lookup: "x,y,z"`,
				},
				cli.StringFlag{
					Name:  "box",
					Usage: `box overlap lookup: "x,y,z:x,y,z"`,
				},
				cli.IntFlag{
					Name:  "limit",
					Value: 256,
					Usage: "maximum box results",
				},
			},
			Action: cmd.Probe,
		},
		{
			Name:  "serve",
			Usage: "answer queries over http",
			Description: `
Serve broad-phase queries against an index over an http JSON API, with
Prometheus metrics exposed on /metrics.`,
			ArgsUsage: "index_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "addr",
					Value: ":8080",
					Usage: "listen address",
				},
			},
			Action: cmd.Serve,
		},
	}

	app.Run(os.Args)
}
