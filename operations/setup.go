package operations

import (
	"context"

	"github.com/evergreen-ci/flightpath"
	"github.com/pkg/errors"
)

type serviceConf struct {
	numWorkers int
	localQueue bool
	mongodbURI string
	bucket     string
	dbName     string
}

func newServiceConf(numWorkers int, localQueue bool, mongodbURI, bucket, dbName string) *serviceConf {
	return &serviceConf{
		numWorkers: numWorkers,
		localQueue: localQueue,
		mongodbURI: mongodbURI,
		bucket:     bucket,
		dbName:     dbName,
	}
}

func (s *serviceConf) export() *flightpath.Configuration {
	return &flightpath.Configuration{
		BucketName:         s.bucket,
		DatabaseName:       s.dbName,
		QueueName:          flightpath.QueueName,
		MongoDBURI:         s.mongodbURI,
		DisableRemoteQueue: s.localQueue,
		NumWorkers:         s.numWorkers,
	}
}

// setup constructs the global environment for the process, connecting to
// the database and building the queues.
func (s *serviceConf) setup(ctx context.Context) error {
	env, err := flightpath.NewEnvironment(ctx, "flightpath-service", s.export())
	if err != nil {
		return errors.WithStack(err)
	}

	flightpath.SetEnvironment(env)
	return nil
}
