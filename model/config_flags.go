package model

import (
	"github.com/evergreen-ci/flightpath"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// OperationalFlags holds runtime switches that disable parts of the
// background workload without restarting the service.
type OperationalFlags struct {
	DisableBackgroundGeneration     bool `bson:"disable_background_generation" json:"disable_background_generation" yaml:"disable_background_generation"`
	DisableMetricsRollups           bool `bson:"disable_metrics_rollups" json:"disable_metrics_rollups" yaml:"disable_metrics_rollups"`
	DisableInternalMetricsReporting bool `bson:"disable_internal_metrics_reporting" json:"disable_internal_metrics_reporting" yaml:"disable_internal_metrics_reporting"`

	env flightpath.Environment
}

var (
	opsFlagsDisableBackgroundGeneration     = bsonutil.MustHaveTag(OperationalFlags{}, "DisableBackgroundGeneration")
	opsFlagsDisableMetricsRollups           = bsonutil.MustHaveTag(OperationalFlags{}, "DisableMetricsRollups")
	opsFlagsDisableInternalMetricsReporting = bsonutil.MustHaveTag(OperationalFlags{}, "DisableInternalMetricsReporting")
)

func (f *OperationalFlags) findAndSet(name string, v bool) error {
	switch name {
	case opsFlagsDisableBackgroundGeneration:
		return f.SetDisableBackgroundGeneration(v)
	case opsFlagsDisableMetricsRollups:
		return f.SetDisableMetricsRollups(v)
	case opsFlagsDisableInternalMetricsReporting:
		return f.SetDisableInternalMetricsReporting(v)
	default:
		return errors.Errorf("%s is not a known feature flag name", name)
	}
}

func (f *OperationalFlags) SetTrue(name string) error {
	return errors.WithStack(f.findAndSet(name, true))
}

func (f *OperationalFlags) SetFalse(name string) error {
	return errors.WithStack(f.findAndSet(name, false))
}

func (f *OperationalFlags) SetDisableBackgroundGeneration(v bool) error {
	if err := f.update(opsFlagsDisableBackgroundGeneration, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableBackgroundGeneration = v
	return nil
}

func (f *OperationalFlags) SetDisableMetricsRollups(v bool) error {
	if err := f.update(opsFlagsDisableMetricsRollups, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableMetricsRollups = v
	return nil
}

func (f *OperationalFlags) SetDisableInternalMetricsReporting(v bool) error {
	if err := f.update(opsFlagsDisableInternalMetricsReporting, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableInternalMetricsReporting = v
	return nil
}

func (f *OperationalFlags) update(key string, value bool) error {
	if f.env == nil {
		return errors.New("cannot update a flag with a nil environment")
	}
	ctx, cancel := f.env.Context()
	defer cancel()

	updateResult, err := f.env.GetDB().Collection(configurationCollection).UpdateOne(
		ctx,
		bson.M{"_id": flightpathConfigurationID},
		bson.M{"$set": bson.M{bsonutil.GetDottedKeyName(flightpathConfigFlagsKey, key): value}},
	)
	if err != nil {
		return errors.Wrapf(err, "problem setting %s to %t", key, value)
	}
	if updateResult.MatchedCount == 0 {
		return errors.New("could not find application configuration in the database")
	}

	return nil
}
