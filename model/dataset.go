package model

import (
	"crypto/sha1"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/evergreen-ci/flightpath"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const datasetCollection = "datasets"

// DatasetState describes where a dataset build is in its lifecycle.
type DatasetState string

const (
	DatasetStateScheduled  DatasetState = "scheduled"
	DatasetStateGenerating DatasetState = "generating"
	DatasetStateCompleted  DatasetState = "completed"
	DatasetStateFailed     DatasetState = "failed"
)

func (s DatasetState) Validate() error {
	switch s {
	case DatasetStateScheduled, DatasetStateGenerating, DatasetStateCompleted, DatasetStateFailed:
		return nil
	default:
		return errors.Errorf("'%s' is not a valid dataset state", s)
	}
}

// validTransitions maps each state to the states it may move to.
var validTransitions = map[DatasetState][]DatasetState{
	DatasetStateScheduled:  {DatasetStateGenerating, DatasetStateFailed},
	DatasetStateGenerating: {DatasetStateCompleted, DatasetStateFailed},
}

func validStateTransition(from, to DatasetState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const splitRatioTolerance = 1e-6

// SplitRatios describes how a dataset is partitioned into training,
// validation, and test subsets. The ratios must sum to one.
type SplitRatios struct {
	Train      float64 `bson:"train" json:"train" yaml:"train"`
	Validation float64 `bson:"validation" json:"validation" yaml:"validation"`
	Test       float64 `bson:"test" json:"test" yaml:"test"`
}

var (
	splitRatiosTrainKey      = bsonutil.MustHaveTag(SplitRatios{}, "Train")
	splitRatiosValidationKey = bsonutil.MustHaveTag(SplitRatios{}, "Validation")
	splitRatiosTestKey       = bsonutil.MustHaveTag(SplitRatios{}, "Test")
)

// DefaultSplitRatios returns the standard 70/15/15 partition.
func DefaultSplitRatios() SplitRatios {
	return SplitRatios{Train: 0.7, Validation: 0.15, Test: 0.15}
}

func (r SplitRatios) Validate() error {
	catcher := grip.NewBasicCatcher()

	if r.Train <= 0 || r.Validation < 0 || r.Test < 0 {
		catcher.Add(errors.New("split ratios must be non-negative with a positive training share"))
	}
	if math.Abs(r.Train+r.Validation+r.Test-1) > splitRatioTolerance {
		catcher.Add(errors.New("split ratios must sum to one"))
	}

	return catcher.Resolve()
}

// DatasetRecord describes a batch build of trajectories partitioned into
// training, validation, and test subsets.
type DatasetRecord struct {
	ID           string         `bson:"_id,omitempty"`
	Info         DatasetInfo    `bson:"info,omitempty"`
	State        DatasetState   `bson:"state"`
	CreatedAt    time.Time      `bson:"created_at"`
	CompletedAt  time.Time      `bson:"completed_at"`
	Trajectories []string       `bson:"trajectories,omitempty"`
	Artifacts    []ArtifactInfo `bson:"artifacts"`
	FailureDesc  string         `bson:"failure_desc,omitempty"`
	Version      int            `bson:"version,omitempty"`

	env       flightpath.Environment
	populated bool
}

var (
	datasetIDKey           = bsonutil.MustHaveTag(DatasetRecord{}, "ID")
	datasetInfoKey         = bsonutil.MustHaveTag(DatasetRecord{}, "Info")
	datasetStateKey        = bsonutil.MustHaveTag(DatasetRecord{}, "State")
	datasetCreatedAtKey    = bsonutil.MustHaveTag(DatasetRecord{}, "CreatedAt")
	datasetCompletedAtKey  = bsonutil.MustHaveTag(DatasetRecord{}, "CompletedAt")
	datasetTrajectoriesKey = bsonutil.MustHaveTag(DatasetRecord{}, "Trajectories")
	datasetArtifactsKey    = bsonutil.MustHaveTag(DatasetRecord{}, "Artifacts")
	datasetFailureDescKey  = bsonutil.MustHaveTag(DatasetRecord{}, "FailureDesc")
	datasetVersionKey      = bsonutil.MustHaveTag(DatasetRecord{}, "Version")
)

// DatasetInfo describes information unique to a single dataset build.
type DatasetInfo struct {
	Scenario        string      `bson:"scenario,omitempty"`
	Methods         []string    `bson:"methods,omitempty"`
	SamplesPerRoute int         `bson:"samples_per_route,omitempty"`
	RoutesPerMethod int         `bson:"routes_per_method,omitempty"`
	Seed            int64       `bson:"seed"`
	Splits          SplitRatios `bson:"splits"`
	Schema          int         `bson:"schema,omitempty"`
}

var (
	datasetInfoScenarioKey        = bsonutil.MustHaveTag(DatasetInfo{}, "Scenario")
	datasetInfoMethodsKey         = bsonutil.MustHaveTag(DatasetInfo{}, "Methods")
	datasetInfoSamplesPerRouteKey = bsonutil.MustHaveTag(DatasetInfo{}, "SamplesPerRoute")
	datasetInfoRoutesPerMethodKey = bsonutil.MustHaveTag(DatasetInfo{}, "RoutesPerMethod")
	datasetInfoSeedKey            = bsonutil.MustHaveTag(DatasetInfo{}, "Seed")
	datasetInfoSplitsKey          = bsonutil.MustHaveTag(DatasetInfo{}, "Splits")
	datasetInfoSchemaKey          = bsonutil.MustHaveTag(DatasetInfo{}, "Schema")
)

// ID creates a unique hash for a dataset build.
func (id *DatasetInfo) ID() string {
	if id.Schema != 0 {
		panic("unsupported schema")
	}

	hash := sha1.New()
	_, _ = io.WriteString(hash, id.Scenario)
	_, _ = io.WriteString(hash, fmt.Sprint(id.Seed))
	_, _ = io.WriteString(hash, fmt.Sprint(id.SamplesPerRoute))
	_, _ = io.WriteString(hash, fmt.Sprint(id.RoutesPerMethod))
	_, _ = io.WriteString(hash, fmt.Sprintf("%f,%f,%f", id.Splits.Train, id.Splits.Validation, id.Splits.Test))

	methods := append([]string{}, id.Methods...)
	sort.Strings(methods)
	for _, str := range methods {
		_, _ = io.WriteString(hash, str)
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}

// CreateDatasetRecord is the entry point for creating a dataset record. New
// records start in the scheduled state.
func CreateDatasetRecord(info DatasetInfo) *DatasetRecord {
	return &DatasetRecord{
		ID:        info.ID(),
		Info:      info,
		State:     DatasetStateScheduled,
		CreatedAt: time.Now(),
		populated: true,
	}
}

// Setup sets the environment for the dataset record. The environment is
// required for numerous functions on DatasetRecord.
func (d *DatasetRecord) Setup(e flightpath.Environment) { d.env = e }

// IsNil returns if the dataset record is populated or not.
func (d *DatasetRecord) IsNil() bool { return !d.populated }

// Find searches the database for the dataset record. The environment should
// not be nil.
func (d *DatasetRecord) Find() error {
	if d.env == nil {
		return errors.New("cannot find with a nil environment")
	}
	ctx, cancel := d.env.Context()
	defer cancel()

	if d.ID == "" {
		d.ID = d.Info.ID()
	}

	d.populated = false
	err := d.env.GetDB().Collection(datasetCollection).FindOne(ctx, bson.M{"_id": d.ID}).Decode(d)
	if db.ResultsNotFound(err) {
		return errors.Wrapf(err, "could not find dataset record with id %s in the database", d.ID)
	} else if err != nil {
		return errors.Wrap(err, "problem finding dataset record")
	}
	d.populated = true

	return nil
}

// SaveNew saves a new dataset record to the database, if a record with the
// same ID already exists an error is returned. The record should be
// populated and the environment should not be nil.
func (d *DatasetRecord) SaveNew() error {
	if !d.populated {
		return errors.New("cannot save unpopulated dataset record")
	}
	if d.env == nil {
		return errors.New("cannot save with a nil environment")
	}
	if err := d.Info.Splits.Validate(); err != nil {
		return errors.Wrap(err, "invalid split ratios")
	}
	ctx, cancel := d.env.Context()
	defer cancel()

	if d.ID == "" {
		d.ID = d.Info.ID()
	}

	insertResult, err := d.env.GetDB().Collection(datasetCollection).InsertOne(ctx, d)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   datasetCollection,
		"id":           d.ID,
		"insertResult": insertResult,
		"op":           "save new dataset record",
	})

	return errors.Wrapf(err, "problem saving new dataset record %s", d.ID)
}

// SetState moves the dataset build through its lifecycle. Only forward
// transitions are allowed; completed and failed are terminal. The
// environment should not be nil.
func (d *DatasetRecord) SetState(state DatasetState) error {
	if d.env == nil {
		return errors.New("cannot set state with a nil environment")
	}
	if err := state.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if !validStateTransition(d.State, state) {
		return errors.Errorf("cannot transition dataset from %s to %s", d.State, state)
	}
	ctx, cancel := d.env.Context()
	defer cancel()

	if d.ID == "" {
		d.ID = d.Info.ID()
	}

	update := bson.M{datasetStateKey: state}
	if state == DatasetStateCompleted || state == DatasetStateFailed {
		update[datasetCompletedAtKey] = time.Now()
	}

	updateResult, err := d.env.GetDB().Collection(datasetCollection).UpdateOne(
		ctx,
		bson.M{"_id": d.ID, datasetStateKey: d.State},
		bson.M{"$set": update},
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   datasetCollection,
		"id":           d.ID,
		"state":        state,
		"updateResult": updateResult,
		"op":           "set dataset state",
	})
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find dataset record with id %s in state %s", d.ID, d.State)
	}
	if err == nil {
		d.State = state
	}

	return errors.Wrapf(err, "problem setting state of dataset record with id %s", d.ID)
}

// SetFailed marks the dataset build failed and records a description of
// what went wrong.
func (d *DatasetRecord) SetFailed(desc string) error {
	if err := d.SetState(DatasetStateFailed); err != nil {
		return errors.WithStack(err)
	}
	ctx, cancel := d.env.Context()
	defer cancel()

	_, err := d.env.GetDB().Collection(datasetCollection).UpdateOne(
		ctx,
		bson.M{"_id": d.ID},
		bson.M{"$set": bson.M{datasetFailureDescKey: desc}},
	)
	d.FailureDesc = desc

	return errors.Wrapf(err, "problem recording failure for dataset record with id %s", d.ID)
}

// AppendTrajectories records the IDs of trajectories generated for this
// dataset build. The environment should not be nil.
func (d *DatasetRecord) AppendTrajectories(ids []string) error {
	if d.env == nil {
		return errors.New("cannot append trajectories with a nil environment")
	}
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := d.env.Context()
	defer cancel()

	if d.ID == "" {
		d.ID = d.Info.ID()
	}

	updateResult, err := d.env.GetDB().Collection(datasetCollection).UpdateOne(
		ctx,
		bson.M{"_id": d.ID},
		bson.M{
			"$push": bson.M{
				datasetTrajectoriesKey: bson.M{"$each": ids},
			},
		},
	)
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find dataset record with id %s in the database", d.ID)
	}

	return errors.Wrapf(err, "problem appending trajectories to dataset record with id %s", d.ID)
}

// AppendArtifacts appends new artifacts to an existing dataset record. The
// environment should not be nil.
func (d *DatasetRecord) AppendArtifacts(artifacts []ArtifactInfo) error {
	if d.env == nil {
		return errors.New("cannot append artifacts with a nil environment")
	}
	if d.ID == "" {
		d.ID = d.Info.ID()
	}
	if len(artifacts) == 0 {
		grip.Warning(message.Fields{
			"collection": datasetCollection,
			"id":         d.ID,
			"message":    "append artifacts called with no artifacts",
		})
		return nil
	}
	ctx, cancel := d.env.Context()
	defer cancel()

	updateResult, err := d.env.GetDB().Collection(datasetCollection).UpdateOne(
		ctx,
		bson.M{"_id": d.ID},
		bson.M{
			"$push": bson.M{
				datasetArtifactsKey: bson.M{"$each": artifacts},
			},
		},
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   datasetCollection,
		"id":           d.ID,
		"updateResult": updateResult,
		"artifacts":    artifacts,
		"op":           "append artifacts to a dataset record",
	})
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find dataset record with id %s in the database", d.ID)
	}

	return errors.Wrapf(err, "problem appending artifacts to dataset record with id %s", d.ID)
}

// DatasetRecords describes a set of dataset records.
type DatasetRecords struct {
	Records   []DatasetRecord `bson:"records"`
	env       flightpath.Environment
	populated bool
}

// DatasetFindOptions describe the search criteria for the Find function on
// DatasetRecords.
type DatasetFindOptions struct {
	Scenario string
	State    DatasetState
	Limit    int
}

// Setup sets the environment for the dataset records. The environment is
// required for numerous functions on DatasetRecords.
func (r *DatasetRecords) Setup(e flightpath.Environment) { r.env = e }

// IsNil returns if the dataset records are populated or not.
func (r *DatasetRecords) IsNil() bool { return r.Records == nil }

// Find returns the dataset records matching the given criteria, most
// recently created first.
func (r *DatasetRecords) Find(opts DatasetFindOptions) error {
	if r.env == nil {
		return errors.New("cannot find with a nil environment")
	}
	ctx, cancel := r.env.Context()
	defer cancel()

	search := bson.M{}
	if opts.Scenario != "" {
		search[bsonutil.GetDottedKeyName(datasetInfoKey, datasetInfoScenarioKey)] = opts.Scenario
	}
	if opts.State != "" {
		search[datasetStateKey] = opts.State
	}

	findOpts := options.Find().SetSort(bson.M{datasetCreatedAtKey: -1})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}

	r.populated = false
	cur, err := r.env.GetDB().Collection(datasetCollection).Find(ctx, search, findOpts)
	if err != nil {
		return errors.Wrap(err, "problem finding dataset records")
	}
	if err = cur.All(ctx, &r.Records); err != nil {
		return errors.Wrap(err, "problem decoding dataset records")
	}
	r.populated = true

	return nil
}
