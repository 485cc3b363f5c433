package operations

import (
	"time"

	"github.com/evergreen-ci/flightpath/planner"
	"github.com/evergreen-ci/flightpath/util"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

type generatedRoute struct {
	Scenario string             `json:"scenario"`
	Method   string             `json:"method"`
	Seed     int64              `json:"seed"`
	Route    []planner.Waypoint `json:"route"`
	Summary  planner.Summary    `json:"summary"`
}

// Generate returns the ./flightpath generate command, which produces
// routes locally and writes them to a file without requiring a database.
func Generate() cli.Command {
	return cli.Command{
		Name:  "generate",
		Usage: "generate routes locally and write them to a file",
		Flags: routeFlags(addOutputPath(
			cli.IntFlag{
				Name:  countFlagName,
				Usage: "number of routes to generate",
				Value: 1,
			})...),
		Action: func(c *cli.Context) error {
			method := c.String(methodFlagName)
			factory := planner.RouteFactoryFromMethod(method)
			if factory == nil {
				return errors.Errorf("invalid route method '%s'", method)
			}

			scenario := c.String(scenarioFlagName)
			seed := c.Int64(seedFlagName)
			samples := c.Int(samplesFlagName)
			obstacles := c.Int(obstaclesFlagName)
			count := c.Int(countFlagName)
			if count < 1 {
				return errors.New("must generate at least one route")
			}

			startAt := time.Now()
			routes := make([]generatedRoute, 0, count)
			for i := 0; i < count; i++ {
				routeSeed := seed + int64(i)
				g := planner.NewGenerator(routeSeed)
				start, end := g.RandomRoutePair(planner.DefaultBounds().MaxX / 2)

				route, err := factory.Generate(g, planner.RouteOptions{
					Start:     start,
					End:       end,
					Samples:   samples,
					Obstacles: g.SampleObstacles(obstacles, start, end),
				})
				if err != nil {
					return errors.Wrapf(err, "problem generating route %d", i)
				}

				routes = append(routes, generatedRoute{
					Scenario: scenario,
					Method:   method,
					Seed:     routeSeed,
					Route:    route,
					Summary:  planner.Summarize(route),
				})
			}

			output := c.String(outputFlagName)
			if err := util.WriteJSON(output, routes); err != nil {
				return errors.WithStack(err)
			}

			grip.Info(message.Fields{
				"message":       "generated routes",
				"count":         count,
				"method":        method,
				"scenario":      scenario,
				"output":        output,
				"duration_secs": time.Since(startAt).Seconds(),
			})
			return nil
		},
	}
}
