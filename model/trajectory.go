package model

import (
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"sort"
	"time"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trajectoryCollection = "trajectories"

// TrajectoryRecord describes a single generated trajectory. The sampled
// waypoints live in offline blob storage as artifacts, while the metadata
// and quality summary are stored in the document itself.
type TrajectoryRecord struct {
	ID          string          `bson:"_id,omitempty"`
	Info        TrajectoryInfo  `bson:"info,omitempty"`
	CreatedAt   time.Time       `bson:"created_at"`
	CompletedAt time.Time       `bson:"completed_at"`
	Artifacts   []ArtifactInfo  `bson:"artifacts"`
	Summary     planner.Summary `bson:"summary"`
	Version     int             `bson:"version,omitempty"`

	env       flightpath.Environment
	populated bool
}

var (
	trajectoryIDKey          = bsonutil.MustHaveTag(TrajectoryRecord{}, "ID")
	trajectoryInfoKey        = bsonutil.MustHaveTag(TrajectoryRecord{}, "Info")
	trajectoryCreatedAtKey   = bsonutil.MustHaveTag(TrajectoryRecord{}, "CreatedAt")
	trajectoryCompletedAtKey = bsonutil.MustHaveTag(TrajectoryRecord{}, "CompletedAt")
	trajectoryArtifactsKey   = bsonutil.MustHaveTag(TrajectoryRecord{}, "Artifacts")
	trajectorySummaryKey     = bsonutil.MustHaveTag(TrajectoryRecord{}, "Summary")
	trajectoryVersionKey     = bsonutil.MustHaveTag(TrajectoryRecord{}, "Version")
)

// CreateTrajectoryRecord is the entry point for creating a trajectory
// record.
func CreateTrajectoryRecord(info TrajectoryInfo, artifacts []ArtifactInfo) *TrajectoryRecord {
	createdAt := time.Now()

	for idx := range artifacts {
		artifacts[idx].CreatedAt = createdAt
	}

	return &TrajectoryRecord{
		ID:        info.ID(),
		Info:      info,
		CreatedAt: createdAt,
		Artifacts: artifacts,
		populated: true,
	}
}

// Setup sets the environment for the trajectory record. The environment is
// required for numerous functions on TrajectoryRecord.
func (t *TrajectoryRecord) Setup(e flightpath.Environment) { t.env = e }

// IsNil returns if the trajectory record is populated or not.
func (t *TrajectoryRecord) IsNil() bool { return !t.populated }

// Find searches the database for the trajectory record. The environment
// should not be nil.
func (t *TrajectoryRecord) Find() error {
	if t.env == nil {
		return errors.New("cannot find with a nil environment")
	}
	ctx, cancel := t.env.Context()
	defer cancel()

	if t.ID == "" {
		t.ID = t.Info.ID()
	}

	t.populated = false
	err := t.env.GetDB().Collection(trajectoryCollection).FindOne(ctx, bson.M{"_id": t.ID}).Decode(t)
	if db.ResultsNotFound(err) {
		return errors.Wrapf(err, "could not find trajectory record with id %s in the database", t.ID)
	} else if err != nil {
		return errors.Wrap(err, "problem finding trajectory record")
	}
	t.populated = true

	return nil
}

// SaveNew saves a new trajectory record to the database, if a record with
// the same ID already exists an error is returned. The record should be
// populated and the environment should not be nil.
func (t *TrajectoryRecord) SaveNew() error {
	if !t.populated {
		return errors.New("cannot save unpopulated trajectory record")
	}
	if t.env == nil {
		return errors.New("cannot save with a nil environment")
	}
	ctx, cancel := t.env.Context()
	defer cancel()

	if t.ID == "" {
		t.ID = t.Info.ID()
	}

	insertResult, err := t.env.GetDB().Collection(trajectoryCollection).InsertOne(ctx, t)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   trajectoryCollection,
		"id":           t.ID,
		"insertResult": insertResult,
		"op":           "save new trajectory record",
	})

	return errors.Wrapf(err, "problem saving new trajectory record %s", t.ID)
}

// AppendArtifacts appends new artifacts to an existing trajectory record.
// The environment should not be nil.
func (t *TrajectoryRecord) AppendArtifacts(artifacts []ArtifactInfo) error {
	if t.env == nil {
		return errors.New("cannot append artifacts with a nil environment")
	}
	if t.ID == "" {
		t.ID = t.Info.ID()
	}
	if len(artifacts) == 0 {
		grip.Warning(message.Fields{
			"collection": trajectoryCollection,
			"id":         t.ID,
			"message":    "append artifacts called with no artifacts",
		})
		return nil
	}
	ctx, cancel := t.env.Context()
	defer cancel()

	updateResult, err := t.env.GetDB().Collection(trajectoryCollection).UpdateOne(
		ctx,
		bson.M{"_id": t.ID},
		bson.M{
			"$push": bson.M{
				trajectoryArtifactsKey: bson.M{"$each": artifacts},
			},
		},
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   trajectoryCollection,
		"id":           t.ID,
		"updateResult": updateResult,
		"artifacts":    artifacts,
		"op":           "append artifacts to a trajectory record",
	})
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find trajectory record with id %s in the database", t.ID)
	}

	return errors.Wrapf(err, "problem appending artifacts to trajectory record with id %s", t.ID)
}

// Close "closes out" the trajectory record by populating the completed_at
// field and attaching the quality summary. The environment should not be
// nil.
func (t *TrajectoryRecord) Close(completedAt time.Time, summary planner.Summary) error {
	if t.env == nil {
		return errors.New("cannot close trajectory record with a nil environment")
	}
	ctx, cancel := t.env.Context()
	defer cancel()

	if t.ID == "" {
		t.ID = t.Info.ID()
	}

	updateResult, err := t.env.GetDB().Collection(trajectoryCollection).UpdateOne(
		ctx,
		bson.M{"_id": t.ID},
		bson.M{"$set": bson.M{
			trajectoryCompletedAtKey: completedAt,
			trajectorySummaryKey:     summary,
		}},
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   trajectoryCollection,
		"id":           t.ID,
		"completed_at": completedAt,
		"updateResult": updateResult,
		"op":           "close trajectory record",
	})
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find trajectory record with id %s in the database", t.ID)
	}

	return errors.Wrapf(err, "problem closing trajectory record with id %s", t.ID)
}

// Remove removes the trajectory record from the database. The environment
// should not be nil.
func (t *TrajectoryRecord) Remove() error {
	if t.env == nil {
		return errors.New("cannot remove a trajectory record with a nil environment")
	}
	ctx, cancel := t.env.Context()
	defer cancel()

	if t.ID == "" {
		t.ID = t.Info.ID()
	}

	deleteResult, err := t.env.GetDB().Collection(trajectoryCollection).DeleteOne(ctx, bson.M{"_id": t.ID})
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   trajectoryCollection,
		"id":           t.ID,
		"deleteResult": deleteResult,
		"op":           "remove trajectory record",
	})

	return errors.Wrapf(err, "problem removing trajectory record with _id %s", t.ID)
}

////////////////////////////////////////////////////////////////////////
//
// Component Types

// TrajectoryInfo describes information unique to a single trajectory.
type TrajectoryInfo struct {
	Scenario string           `bson:"scenario,omitempty"`
	Method   string           `bson:"method,omitempty"`
	Seed     int64            `bson:"seed"`
	Samples  int              `bson:"samples,omitempty"`
	Start    planner.Waypoint `bson:"start"`
	End      planner.Waypoint `bson:"end"`
	Tags     []string         `bson:"tags,omitempty"`
	Schema   int              `bson:"schema,omitempty"`
}

var (
	trajectoryInfoScenarioKey = bsonutil.MustHaveTag(TrajectoryInfo{}, "Scenario")
	trajectoryInfoMethodKey   = bsonutil.MustHaveTag(TrajectoryInfo{}, "Method")
	trajectoryInfoSeedKey     = bsonutil.MustHaveTag(TrajectoryInfo{}, "Seed")
	trajectoryInfoSamplesKey  = bsonutil.MustHaveTag(TrajectoryInfo{}, "Samples")
	trajectoryInfoStartKey    = bsonutil.MustHaveTag(TrajectoryInfo{}, "Start")
	trajectoryInfoEndKey      = bsonutil.MustHaveTag(TrajectoryInfo{}, "End")
	trajectoryInfoTagsKey     = bsonutil.MustHaveTag(TrajectoryInfo{}, "Tags")
	trajectoryInfoSchemaKey   = bsonutil.MustHaveTag(TrajectoryInfo{}, "Schema")
)

// ID creates a unique hash for a trajectory.
func (id *TrajectoryInfo) ID() string {
	var hash hash.Hash

	if id.Schema == 0 {
		hash = sha1.New()
		_, _ = io.WriteString(hash, id.Scenario)
		_, _ = io.WriteString(hash, id.Method)
		_, _ = io.WriteString(hash, fmt.Sprint(id.Seed))
		_, _ = io.WriteString(hash, fmt.Sprint(id.Samples))
		_, _ = io.WriteString(hash, fmt.Sprintf("%f,%f,%f", id.Start.X, id.Start.Y, id.Start.Z))
		_, _ = io.WriteString(hash, fmt.Sprintf("%f,%f,%f", id.End.X, id.End.Y, id.End.Z))

		sort.Strings(id.Tags)
		for _, str := range id.Tags {
			_, _ = io.WriteString(hash, str)
		}
	} else {
		panic("unsupported schema")
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}

// TrajectoryRecords describes a set of trajectory records, typically
// related by scenario.
type TrajectoryRecords struct {
	Records   []TrajectoryRecord `bson:"records"`
	env       flightpath.Environment
	populated bool
}

// TrajectoryFindOptions describe the search criteria for the Find function
// on TrajectoryRecords.
type TrajectoryFindOptions struct {
	Scenario string
	Method   string
	Limit    int
}

// Setup sets the environment for the trajectory records. The environment is
// required for numerous functions on TrajectoryRecords.
func (r *TrajectoryRecords) Setup(e flightpath.Environment) { r.env = e }

// IsNil returns if the trajectory records are populated or not.
func (r *TrajectoryRecords) IsNil() bool { return r.Records == nil }

// Find returns the trajectory records matching the given criteria, most
// recently created first.
func (r *TrajectoryRecords) Find(opts TrajectoryFindOptions) error {
	if r.env == nil {
		return errors.New("cannot find with a nil environment")
	}
	ctx, cancel := r.env.Context()
	defer cancel()

	search := bson.M{}
	if opts.Scenario != "" {
		search[bsonutil.GetDottedKeyName(trajectoryInfoKey, trajectoryInfoScenarioKey)] = opts.Scenario
	}
	if opts.Method != "" {
		search[bsonutil.GetDottedKeyName(trajectoryInfoKey, trajectoryInfoMethodKey)] = opts.Method
	}

	findOpts := options.Find().SetSort(bson.M{trajectoryCreatedAtKey: -1})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}

	r.populated = false
	cur, err := r.env.GetDB().Collection(trajectoryCollection).Find(ctx, search, findOpts)
	if err != nil {
		return errors.Wrap(err, "problem finding trajectory records")
	}
	if err = cur.All(ctx, &r.Records); err != nil {
		return errors.Wrap(err, "problem decoding trajectory records")
	}
	r.populated = true

	return nil
}
