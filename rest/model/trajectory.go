package model

import (
	dbmodel "github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/evergreen-ci/utility"

	"github.com/pkg/errors"
)

// APITrajectoryRecord describes a single generated trajectory.
type APITrajectoryRecord struct {
	ID          *string           `json:"id"`
	Info        APITrajectoryInfo `json:"info"`
	CreatedAt   APITime           `json:"created_at"`
	CompletedAt APITime           `json:"completed_at"`
	Artifacts   []APIArtifactInfo `json:"artifacts"`
	Summary     APIRouteSummary   `json:"summary"`
}

// Import transforms a TrajectoryRecord object into an APITrajectoryRecord
// object.
func (apiRecord *APITrajectoryRecord) Import(i interface{}) error {
	switch r := i.(type) {
	case dbmodel.TrajectoryRecord:
		apiRecord.ID = utility.ToStringPtr(r.ID)
		apiRecord.Info = getTrajectoryInfo(r.Info)
		apiRecord.CreatedAt = NewTime(r.CreatedAt)
		apiRecord.CompletedAt = NewTime(r.CompletedAt)
		apiRecord.Summary = getRouteSummary(r.Summary)

		var apiArtifacts []APIArtifactInfo
		for _, artifactInfo := range r.Artifacts {
			apiArtifacts = append(apiArtifacts, getArtifactInfo(artifactInfo))
		}
		apiRecord.Artifacts = apiArtifacts
	default:
		return errors.New("incorrect type when converting to APITrajectoryRecord type")
	}
	return nil
}

func (apiRecord *APITrajectoryRecord) Export() (interface{}, error) {
	return nil, errors.New("Export is not implemented for APITrajectoryRecord")
}

// APITrajectoryInfo describes information unique to a single trajectory.
type APITrajectoryInfo struct {
	Scenario *string     `json:"scenario"`
	Method   *string     `json:"method"`
	Seed     int64       `json:"seed"`
	Samples  int         `json:"samples"`
	Start    APIWaypoint `json:"start"`
	End      APIWaypoint `json:"end"`
	Tags     []string    `json:"tags"`
}

func getTrajectoryInfo(r dbmodel.TrajectoryInfo) APITrajectoryInfo {
	return APITrajectoryInfo{
		Scenario: utility.ToStringPtr(r.Scenario),
		Method:   utility.ToStringPtr(r.Method),
		Seed:     r.Seed,
		Samples:  r.Samples,
		Start:    getWaypoint(r.Start),
		End:      getWaypoint(r.End),
		Tags:     r.Tags,
	}
}

// APIWaypoint is a single position in the mission volume.
type APIWaypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func getWaypoint(p planner.Waypoint) APIWaypoint {
	return APIWaypoint{X: p.X, Y: p.Y, Z: p.Z}
}

// Export returns the waypoint in its planner representation.
func (p APIWaypoint) Export() planner.Waypoint {
	return planner.Waypoint{X: p.X, Y: p.Y, Z: p.Z}
}

// APIRouteSummary describes the "rolled up", or calculated quality metrics
// of a route.
type APIRouteSummary struct {
	PathLength           float64 `json:"path_length"`
	StraightLineDistance float64 `json:"straight_line_distance"`
	PathEfficiency       float64 `json:"path_efficiency"`
	AvgCurvature         float64 `json:"avg_curvature"`
	MaxCurvature         float64 `json:"max_curvature"`
	SmoothnessScore      float64 `json:"smoothness_score"`
	AvgVelocity          float64 `json:"avg_velocity"`
	MinAltitude          float64 `json:"min_altitude"`
	MaxAltitude          float64 `json:"max_altitude"`
	AvgAltitude          float64 `json:"avg_altitude"`
}

func getRouteSummary(r planner.Summary) APIRouteSummary {
	return APIRouteSummary{
		PathLength:           r.PathLength,
		StraightLineDistance: r.StraightLineDistance,
		PathEfficiency:       r.PathEfficiency,
		AvgCurvature:         r.AvgCurvature,
		MaxCurvature:         r.MaxCurvature,
		SmoothnessScore:      r.SmoothnessScore,
		AvgVelocity:          r.AvgVelocity,
		MinAltitude:          r.MinAltitude,
		MaxAltitude:          r.MaxAltitude,
		AvgAltitude:          r.AvgAltitude,
	}
}

// APIArtifactInfo is a type that describes an object in some kind of
// offline storage, and is the bridge between pail-backed offline storage
// and the flightpath metadata storage.
type APIArtifactInfo struct {
	Type        *string  `json:"type"`
	Bucket      *string  `json:"bucket"`
	Prefix      *string  `json:"prefix"`
	Path        *string  `json:"path"`
	Format      *string  `json:"format"`
	Compression *string  `json:"compression"`
	Schema      *string  `json:"schema"`
	Tags        []string `json:"tags"`
	CreatedAt   APITime  `json:"created_at"`
	DownloadURL *string  `json:"download_url"`
}

func getArtifactInfo(r dbmodel.ArtifactInfo) APIArtifactInfo {
	return APIArtifactInfo{
		Type:        utility.ToStringPtr(string(r.Type)),
		Bucket:      utility.ToStringPtr(r.Bucket),
		Prefix:      utility.ToStringPtr(r.Prefix),
		Path:        utility.ToStringPtr(r.Path),
		Format:      utility.ToStringPtr(string(r.Format)),
		Compression: utility.ToStringPtr(string(r.Compression)),
		Schema:      utility.ToStringPtr(string(r.Schema)),
		Tags:        r.Tags,
		CreatedAt:   NewTime(r.CreatedAt),
		DownloadURL: utility.ToStringPtr(r.GetDownloadURL()),
	}
}
