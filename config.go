package flightpath

import (
	"errors"
	"time"

	"github.com/mongodb/grip"
)

// Configuration defines the application level settings used to bootstrap an
// Environment. Values here describe the deployment (database, queues,
// storage) rather than the behavior of the service, which lives in the
// model.FlightpathConfig document.
type Configuration struct {
	BucketName         string
	DatabaseName       string
	QueueName          string
	MongoDBURI         string
	MongoDBDialTimeout time.Duration
	SocketTimeout      time.Duration
	DisableRemoteQueue bool
	NumWorkers         int
	ExpireAfter        time.Duration
}

func (c *Configuration) Validate() error {
	catcher := grip.NewBasicCatcher()

	if c.MongoDBURI == "" {
		catcher.Add(errors.New("must specify a mongodb url"))
	}
	if c.DatabaseName == "" {
		catcher.Add(errors.New("must specify a database name"))
	}
	if c.NumWorkers < 1 {
		catcher.Add(errors.New("must specify a valid number of amboy workers"))
	}
	if c.QueueName == "" {
		c.QueueName = QueueName
	}
	if c.MongoDBDialTimeout <= 0 {
		c.MongoDBDialTimeout = 2 * time.Second
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = time.Minute
	}
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = time.Duration(365*24*60) * time.Minute
	}

	return catcher.Resolve()
}
