package model

import (
	"os"

	"github.com/evergreen-ci/flightpath"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	yaml "gopkg.in/yaml.v2"
)

const (
	configurationCollection   = "configuration"
	flightpathConfigurationID = "flightpath-system-configuration"
)

// FlightpathConfig is the application level configuration document, stored
// in the configuration collection and cached by the environment.
type FlightpathConfig struct {
	ID     string                    `bson:"_id" json:"id" yaml:"id"`
	Bucket BucketConfig              `bson:"bucket" json:"bucket" yaml:"bucket"`
	Splunk send.SplunkConnectionInfo `bson:"splunk" json:"splunk" yaml:"splunk"`
	Slack  SlackConfig               `bson:"slack" json:"slack" yaml:"slack"`
	Flags  OperationalFlags          `bson:"flags" json:"flags" yaml:"flags"`

	populated bool
	env       flightpath.Environment
}

var (
	flightpathConfigIDKey     = bsonutil.MustHaveTag(FlightpathConfig{}, "ID")
	flightpathConfigBucketKey = bsonutil.MustHaveTag(FlightpathConfig{}, "Bucket")
	flightpathConfigSplunkKey = bsonutil.MustHaveTag(FlightpathConfig{}, "Splunk")
	flightpathConfigSlackKey  = bsonutil.MustHaveTag(FlightpathConfig{}, "Slack")
	flightpathConfigFlagsKey  = bsonutil.MustHaveTag(FlightpathConfig{}, "Flags")
)

// BucketConfig describes the blob storage buckets that hold trajectory and
// dataset artifacts.
type BucketConfig struct {
	Type             PailType `bson:"type" json:"type" yaml:"type"`
	AWSKey           string   `bson:"aws_key" json:"aws_key" yaml:"aws_key"`
	AWSSecret        string   `bson:"aws_secret" json:"aws_secret" yaml:"aws_secret"`
	TrajectoryBucket string   `bson:"trajectory_bucket" json:"trajectory_bucket" yaml:"trajectory_bucket"`
	DatasetBucket    string   `bson:"dataset_bucket" json:"dataset_bucket" yaml:"dataset_bucket"`
}

var (
	bucketConfigTypeKey             = bsonutil.MustHaveTag(BucketConfig{}, "Type")
	bucketConfigAWSKeyKey           = bsonutil.MustHaveTag(BucketConfig{}, "AWSKey")
	bucketConfigAWSSecretKey        = bsonutil.MustHaveTag(BucketConfig{}, "AWSSecret")
	bucketConfigTrajectoryBucketKey = bsonutil.MustHaveTag(BucketConfig{}, "TrajectoryBucket")
	bucketConfigDatasetBucketKey    = bsonutil.MustHaveTag(BucketConfig{}, "DatasetBucket")
)

type SlackConfig struct {
	Options *send.SlackOptions `bson:"options" json:"options" yaml:"options"`
	Token   string             `bson:"token" json:"token" yaml:"token"`
	Level   string             `bson:"level" json:"level" yaml:"level"`
}

var (
	slackConfigOptionsKey = bsonutil.MustHaveTag(SlackConfig{}, "Options")
	slackConfigTokenKey   = bsonutil.MustHaveTag(SlackConfig{}, "Token")
	slackConfigLevelKey   = bsonutil.MustHaveTag(SlackConfig{}, "Level")
)

// NewFlightpathConfig returns an unpopulated configuration tied to the
// given environment.
func NewFlightpathConfig(e flightpath.Environment) *FlightpathConfig {
	return &FlightpathConfig{env: e}
}

// Setup sets the environment for the configuration. The environment is
// required for the database backed functions on FlightpathConfig.
func (c *FlightpathConfig) Setup(e flightpath.Environment) { c.env = e }

// IsNil returns if the configuration is populated or not.
func (c *FlightpathConfig) IsNil() bool { return !c.populated }

// Find searches the database for the application configuration document. The
// environment should not be nil.
func (c *FlightpathConfig) Find() error {
	if c.env == nil {
		return errors.New("cannot find with a nil environment")
	}
	ctx, cancel := c.env.Context()
	defer cancel()

	c.populated = false
	err := c.env.GetDB().Collection(configurationCollection).FindOne(ctx, bson.M{"_id": flightpathConfigurationID}).Decode(c)
	if db.ResultsNotFound(err) {
		return errors.New("could not find application configuration in the database")
	} else if err != nil {
		return errors.Wrap(err, "problem finding application configuration")
	}
	c.populated = true
	c.Flags.env = c.env

	return nil
}

// Save upserts the application configuration document. The configuration
// should be populated and the environment should not be nil.
func (c *FlightpathConfig) Save() error {
	if !c.populated {
		return errors.New("cannot save unpopulated application configuration")
	}
	if c.env == nil {
		return errors.New("cannot save with a nil environment")
	}
	ctx, cancel := c.env.Context()
	defer cancel()

	c.ID = flightpathConfigurationID

	updateResult, err := c.env.GetDB().Collection(configurationCollection).ReplaceOne(
		ctx,
		bson.M{"_id": flightpathConfigurationID},
		c,
		options.Replace().SetUpsert(true),
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   configurationCollection,
		"id":           flightpathConfigurationID,
		"updateResult": updateResult,
		"op":           "save application configuration",
	})

	return errors.Wrap(err, "problem saving application configuration")
}

// LoadFlightpathConfig reads an application configuration document from a
// YAML file on disk.
func LoadFlightpathConfig(file string) (*FlightpathConfig, error) {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil, errors.Errorf("file %s does not exist", file)
	}

	yamlFile, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file: %s", file)
	}

	newConfig := &FlightpathConfig{}
	if err := yaml.Unmarshal(yamlFile, newConfig); err != nil {
		return nil, errors.Wrap(err, "invalid yaml/json format")
	}

	newConfig.populated = true

	return newConfig, nil
}
