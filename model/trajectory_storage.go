package model

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/evergreen-ci/flightpath/planner"
	"github.com/evergreen-ci/pail"
	"github.com/mongodb/ftdc"
	"github.com/pkg/errors"
)

const (
	routeFTDCPath = "route.ftdc"
	routeJSONPath = "route.json"

	// FTDC stores integer samples, so coordinates are scaled to
	// millimeters on write and back on read.
	routeCoordinateScale = 1000
)

type routePoint struct {
	N int64 `bson:"n"`
	X int64 `bson:"x"`
	Y int64 `bson:"y"`
	Z int64 `bson:"z"`
}

// UploadRoute writes the sampled waypoints to the trajectory bucket as an
// FTDC timeseries artifact and a JSON artifact, and appends the artifact
// metadata to the record. The environment should not be nil.
func (t *TrajectoryRecord) UploadRoute(ctx context.Context, route []planner.Waypoint) error {
	if t.env == nil {
		return errors.New("cannot upload a route with a nil environment")
	}
	if len(route) == 0 {
		return errors.New("cannot upload an empty route")
	}
	if t.ID == "" {
		t.ID = t.Info.ID()
	}

	conf := NewFlightpathConfig(t.env)
	if err := conf.Find(); err != nil {
		return errors.Wrap(err, "problem getting application configuration")
	}
	bucketType := conf.Bucket.Type
	if bucketType == "" {
		bucketType = PailLocal
	}

	bucket, err := bucketType.Create(ctx, t.env, conf.Bucket.TrajectoryBucket, t.ID, string(pail.S3PermissionsPrivate))
	if err != nil {
		return errors.Wrap(err, "problem creating bucket")
	}

	ftdcData := &bytes.Buffer{}
	collector := ftdc.NewStreamingCollector(len(route), ftdcData)
	for idx, point := range route {
		err = collector.Add(routePoint{
			N: int64(idx),
			X: int64(point.X * routeCoordinateScale),
			Y: int64(point.Y * routeCoordinateScale),
			Z: int64(point.Z * routeCoordinateScale),
		})
		if err != nil {
			return errors.Wrapf(err, "problem collecting waypoint %d", idx)
		}
	}
	if err = ftdc.FlushCollector(collector, ftdcData); err != nil {
		return errors.Wrap(err, "problem flushing ftdc data")
	}
	if err = bucket.Put(ctx, routeFTDCPath, bytes.NewReader(ftdcData.Bytes())); err != nil {
		return errors.Wrap(err, "problem uploading ftdc artifact")
	}

	jsonData, err := json.Marshal(route)
	if err != nil {
		return errors.Wrap(err, "problem marshalling route")
	}
	if err = bucket.Put(ctx, routeJSONPath, bytes.NewReader(jsonData)); err != nil {
		return errors.Wrap(err, "problem uploading json artifact")
	}

	createdAt := time.Now()
	return errors.WithStack(t.AppendArtifacts([]ArtifactInfo{
		{
			Type:        bucketType,
			Bucket:      conf.Bucket.TrajectoryBucket,
			Prefix:      t.ID,
			Path:        routeFTDCPath,
			Format:      FileFTDC,
			Compression: FileUncompressed,
			Schema:      SchemaRawRoute,
			CreatedAt:   createdAt,
		},
		{
			Type:        bucketType,
			Bucket:      conf.Bucket.TrajectoryBucket,
			Prefix:      t.ID,
			Path:        routeJSONPath,
			Format:      FileJSON,
			Compression: FileUncompressed,
			Schema:      SchemaRawRoute,
			CreatedAt:   createdAt,
		},
	}))
}

// DownloadRoute fetches the sampled waypoints back from blob storage,
// preferring the JSON artifact and falling back to the FTDC artifact. The
// record should be populated and the environment should not be nil.
func (t *TrajectoryRecord) DownloadRoute(ctx context.Context) ([]planner.Waypoint, error) {
	if t.env == nil {
		return nil, errors.New("cannot download a route with a nil environment")
	}

	if artifact := t.findArtifact(FileJSON); artifact != nil {
		data, err := t.getArtifact(ctx, artifact)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		var route []planner.Waypoint
		if err := json.Unmarshal(data, &route); err != nil {
			return nil, errors.Wrap(err, "problem unmarshalling route")
		}
		return route, nil
	}

	if artifact := t.findArtifact(FileFTDC); artifact != nil {
		data, err := t.getArtifact(ctx, artifact)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return decodeFTDCRoute(ctx, bytes.NewReader(data))
	}

	return nil, errors.Errorf("trajectory record %s has no route artifacts", t.ID)
}

func (t *TrajectoryRecord) findArtifact(format FileDataFormat) *ArtifactInfo {
	for idx := range t.Artifacts {
		if t.Artifacts[idx].Format == format {
			return &t.Artifacts[idx]
		}
	}
	return nil
}

func (t *TrajectoryRecord) getArtifact(ctx context.Context, artifact *ArtifactInfo) ([]byte, error) {
	bucket, err := artifact.Type.Create(ctx, t.env, artifact.Bucket, artifact.Prefix, string(pail.S3PermissionsPrivate))
	if err != nil {
		return nil, errors.Wrap(err, "problem creating bucket")
	}

	reader, err := bucket.Get(ctx, artifact.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "problem fetching artifact %s", artifact.Path)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	return data, errors.Wrap(err, "problem reading artifact")
}

// decodeFTDCRoute reconstructs waypoints from an FTDC stream written by
// UploadRoute.
func decodeFTDCRoute(ctx context.Context, r io.Reader) ([]planner.Waypoint, error) {
	var xs, ys, zs []int64

	iter := ftdc.ReadChunks(ctx, r)
	defer iter.Close()
	for iter.Next() {
		chunk := iter.Chunk()
		for _, metric := range chunk.Metrics {
			switch name := metric.Key(); name {
			case "x":
				xs = append(xs, metric.Values...)
			case "y":
				ys = append(ys, metric.Values...)
			case "z":
				zs = append(zs, metric.Values...)
			case "n":
				continue
			default:
				return nil, errors.Errorf("unknown field name %s", name)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return nil, errors.New("mismatched route coordinate streams")
	}

	route := make([]planner.Waypoint, len(xs))
	for i := range xs {
		route[i] = planner.Waypoint{
			X: float64(xs[i]) / routeCoordinateScale,
			Y: float64(ys[i]) / routeCoordinateScale,
			Z: float64(zs[i]) / routeCoordinateScale,
		}
	}

	return route, nil
}
