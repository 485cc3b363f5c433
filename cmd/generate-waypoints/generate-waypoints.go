package main

import (
	"os"
	"time"

	"github.com/evergreen-ci/flightpath/planner"
	"github.com/mongodb/ftdc"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

const (
	ten      = 10
	hundred  = ten * ten
	thousand = ten * hundred

	// things that really should be command line args
	outputFn        = "waypoint_samples.ftdc"
	totalRoutes     = thousand
	samplesPerRoute = hundred
	bucketSize      = ten * thousand

	// the compressed columnar format only carries integral values,
	// so coordinates are stored at millimeter resolution.
	coordinateScale = thousand
)

type waypointSample struct {
	Timestamp time.Time `bson:"ts"`
	Route     int64     `bson:"route"`
	Sample    int64     `bson:"sample"`
	X         int64     `bson:"x"`
	Y         int64     `bson:"y"`
	Z         int64     `bson:"z"`
}

func main() {
	sample := waypointSample{}
	startAt := time.Now()
	file, err := os.Create(outputFn)
	grip.EmergencyFatal(err)

	collector := ftdc.NewStreamingCollector(bucketSize, file)
	defer func() {
		stat, err := os.Stat(outputFn)
		grip.EmergencyFatal(err)

		grip.Info(message.Fields{
			"dur_secs":    time.Since(startAt).Seconds(),
			"bucket_size": bucketSize,
			"routes":      totalRoutes,
			"size_bytes":  stat.Size(),
		})
	}()
	defer func() { grip.EmergencyFatal(file.Close()) }()
	defer func() { ftdc.FlushCollector(collector, file) }()

	grip.Info(message.Fields{
		"n":            0,
		"routes":       totalRoutes,
		"bucket":       bucketSize,
		"info.metrics": collector.Info().MetricsCount,
		"info.samples": collector.Info().SampleCount,
	})

	methods := planner.DefaultRouteMethods()
	ts := time.Now()
	for i := int64(0); i < totalRoutes; i++ {
		g := planner.NewGenerator(i)
		start, end := g.RandomRoutePair(planner.DefaultBounds().MaxX / 2)

		factory := planner.RouteFactoryFromMethod(methods[i%int64(len(methods))])
		route, err := factory.Generate(g, planner.RouteOptions{
			Start:   start,
			End:     end,
			Samples: samplesPerRoute,
		})
		grip.EmergencyFatal(err)

		for idx, wp := range route {
			ts = ts.Add(100 * time.Millisecond)
			sample.Timestamp = ts
			sample.Route = i
			sample.Sample = int64(idx)
			sample.X = int64(wp.X * coordinateScale)
			sample.Y = int64(wp.Y * coordinateScale)
			sample.Z = int64(wp.Z * coordinateScale)

			grip.EmergencyFatal(collector.Add(sample))
		}

		grip.InfoWhen(i%hundred == 0 && i > 0,
			message.Fields{
				"n":            i,
				"info.metrics": collector.Info().MetricsCount,
				"info.samples": collector.Info().SampleCount,
			})
	}
}
