package flightpath

import (
	"context"
	"sync"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/queue"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/jasper"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var globalEnv Environment

func init() { resetEnv() }

// GetEnvironment returns the global application environment.
func GetEnvironment() Environment { return globalEnv }

// SetEnvironment overrides the global application environment. Use this in
// main functions and test setup only.
func SetEnvironment(env Environment) { globalEnv = env }

func resetEnv() { globalEnv = &envState{name: "global", conf: &Configuration{}} }

// CloserFunc describes a cleanup hook registered on the environment and
// called during Close.
type CloserFunc func(context.Context) error

// Environment objects provide access to shared configuration and state, in a
// way that you can isolate and test for in units and the REST interface.
type Environment interface {
	GetConf() *Configuration

	// Context returns a context derived from the environment's root
	// context, so that operations can be terminated when the
	// environment shuts down.
	Context() (context.Context, context.CancelFunc)

	// The remote queue executes work across the deployment, while the
	// local queue only executes work on this process.
	GetRemoteQueue() amboy.Queue
	SetRemoteQueue(amboy.Queue) error
	GetLocalQueue() amboy.Queue
	SetLocalQueue(amboy.Queue) error

	GetClient() *mongo.Client
	GetDB() *mongo.Database

	// Jasper returns the process manager used to supervise external
	// commands (toolchain bootstrap, diagnostics, the viewer).
	Jasper() jasper.Manager

	GetStatsCache(string) *StatsCache

	RegisterCloser(string, CloserFunc)
	Close(context.Context) error
}

// NewEnvironment constructs an environment that is connected to the database
// and has both queues constructed, but not started.
func NewEnvironment(ctx context.Context, name string, conf *Configuration) (Environment, error) {
	env := &envState{name: name}

	if err := env.Configure(ctx, conf); err != nil {
		return nil, errors.WithStack(err)
	}

	return env, nil
}

type closerOp struct {
	name   string
	closer CloserFunc
}

type envState struct {
	name        string
	ctx         context.Context
	remoteQueue amboy.Queue
	localQueue  amboy.Queue
	client      *mongo.Client
	jpm         jasper.Manager
	conf        *Configuration
	statsCaches map[string]*StatsCache
	closers     []closerOp
	mutex       sync.RWMutex
}

func (c *envState) Configure(ctx context.Context, conf *Configuration) error {
	var err error

	if err = conf.Validate(); err != nil {
		return errors.WithStack(err)
	}

	c.ctx = ctx
	c.conf = conf

	// create and cache a db client for use in tasks
	connctx, cancel := context.WithTimeout(ctx, conf.MongoDBDialTimeout)
	defer cancel()
	c.client, err = mongo.Connect(connctx, options.Client().
		ApplyURI(conf.MongoDBURI).
		SetSocketTimeout(conf.SocketTimeout).
		SetConnectTimeout(conf.MongoDBDialTimeout))
	if err != nil {
		return errors.Wrapf(err, "could not connect to db %s", conf.MongoDBURI)
	}
	if err = c.client.Ping(connctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "problem contacting database")
	}

	c.jpm, err = jasper.NewSynchronizedManager(false)
	if err != nil {
		return errors.Wrap(err, "problem constructing process manager")
	}
	c.RegisterCloser("jasper-manager", func(cctx context.Context) error {
		return errors.WithStack(c.jpm.Close(cctx))
	})

	c.localQueue = queue.NewLocalLimitedSize(conf.NumWorkers, 1024)
	grip.Infof("configured local queue with %d workers", conf.NumWorkers)
	c.RegisterCloser("local-queue", func(cctx context.Context) error {
		if !amboy.WaitInterval(cctx, c.localQueue, 10*time.Millisecond) {
			grip.Critical(message.Fields{
				"message": "pending jobs failed to finish",
				"queue":   "local",
				"status":  c.localQueue.Stats(cctx),
			})
		}

		c.localQueue.Close(cctx)
		return nil
	})

	if !conf.DisableRemoteQueue {
		var q amboy.Queue
		q, err = queue.NewMongoDBQueue(ctx, queue.MongoDBQueueOptions{
			NumWorkers: utility.ToIntPtr(conf.NumWorkers),
			Ordered:    utility.ToBoolPtr(false),
			DB: &queue.MongoDBOptions{
				URI:        conf.MongoDBURI,
				DB:         conf.DatabaseName,
				Collection: conf.QueueName,
				Priority:   true,
			},
		})
		if err != nil {
			return errors.Wrap(err, "problem configuring remote queue")
		}

		c.remoteQueue = q
		c.RegisterCloser("remote-queue", func(cctx context.Context) error {
			c.remoteQueue.Close(cctx)
			return nil
		})

		grip.Info(message.Fields{
			"message":  "configured a remote mongodb-backed queue",
			"db":       conf.DatabaseName,
			"prefix":   conf.QueueName,
			"priority": true,
		})
	}

	c.statsCaches = newStatsCacheRegistry(ctx)

	return nil
}

func (c *envState) Context() (context.Context, context.CancelFunc) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.ctx == nil {
		return context.WithCancel(context.Background())
	}

	return context.WithCancel(c.ctx)
}

func (c *envState) SetRemoteQueue(q amboy.Queue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.remoteQueue != nil {
		return errors.New("remote queue exists, cannot overwrite")
	}

	if q == nil {
		return errors.New("cannot set remote queue to nil")
	}

	c.remoteQueue = q
	grip.Noticef("caching a '%T' remote queue in the '%s' service cache for use in tasks", q, c.name)
	return nil
}

func (c *envState) GetRemoteQueue() amboy.Queue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.remoteQueue
}

func (c *envState) SetLocalQueue(q amboy.Queue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.localQueue != nil {
		return errors.New("local queue exists, cannot overwrite")
	}

	if q == nil {
		return errors.New("cannot set local queue to nil")
	}

	c.localQueue = q
	grip.Noticef("caching a '%T' local queue in the '%s' service cache for use in tasks", q, c.name)
	return nil
}

func (c *envState) GetLocalQueue() amboy.Queue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.localQueue
}

func (c *envState) GetClient() *mongo.Client {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.client
}

func (c *envState) GetDB() *mongo.Database {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.client == nil || c.conf == nil || c.conf.DatabaseName == "" {
		return nil
	}

	return c.client.Database(c.conf.DatabaseName)
}

func (c *envState) Jasper() jasper.Manager {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.jpm
}

func (c *envState) GetConf() *Configuration {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.conf == nil {
		return nil
	}

	// copy the struct
	out := &Configuration{}
	*out = *c.conf

	return out
}

func (c *envState) GetStatsCache(name string) *StatsCache {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.statsCaches[name]
}

func (c *envState) RegisterCloser(name string, op CloserFunc) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closers = append(c.closers, closerOp{name: name, closer: op})
}

func (c *envState) Close(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	catcher := grip.NewBasicCatcher()

	deadline, _ := ctx.Deadline()
	grip.Info(message.Fields{
		"message":      "closing flightpath environment",
		"num_closers":  len(c.closers),
		"has_deadline": !deadline.IsZero(),
	})

	for _, closer := range c.closers {
		startAt := time.Now()
		err := closer.closer(ctx)
		catcher.Add(err)

		grip.Info(message.Fields{
			"message":       "ran closer",
			"closer":        closer.name,
			"duration_secs": time.Since(startAt).Seconds(),
			"error":         err != nil,
		})
	}

	if c.client != nil {
		catcher.Add(errors.Wrap(c.client.Disconnect(ctx), "problem disconnecting db client"))
	}

	return catcher.Resolve()
}
