package units

import (
	"context"
	"fmt"
	"time"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	tsFormat         = "2006-01-02.15-04-05"
	rollupSweepLimit = 100
)

// StartCrons registers the background interval operations on the local and
// remote queues.
func StartCrons(ctx context.Context, env flightpath.Environment) error {
	opts := amboy.QueueOperationConfig{
		ContinueOnError: true,
		LogErrors:       false,
		DebugLogging:    false,
	}

	remote := env.GetRemoteQueue()
	local := env.GetLocalQueue()

	grip.Info(message.Fields{
		"message": "starting background cron jobs",
		"state":   "not populated",
		"opts":    opts,
		"started": message.Fields{
			"remote": remote.Info().Started,
			"local":  local.Info().Started,
		},
		"stats": message.Fields{
			"remote": remote.Stats(ctx),
			"local":  local.Stats(ctx),
		},
	})

	amboy.IntervalQueueOperation(ctx, local, time.Minute, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewFlightpathConfig(env)
		if err := conf.Find(); err != nil {
			return errors.WithStack(err)
		}

		if conf.Flags.DisableInternalMetricsReporting {
			return nil
		}

		ts := utility.RoundPartOfMinute(0).Format(tsFormat)
		catcher := grip.NewBasicCatcher()
		catcher.Add(queue.Put(ctx, NewSysInfoStatsCollector(fmt.Sprintf("sys-info-stats-%s", ts))))
		catcher.Add(queue.Put(ctx, NewLocalAmboyStatsCollector(env, ts)))
		catcher.Add(queue.Put(ctx, NewJasperManagerCleanup(ts, env)))
		return catcher.Resolve()
	})
	amboy.IntervalQueueOperation(ctx, remote, time.Minute, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewFlightpathConfig(env)
		if err := conf.Find(); err != nil {
			return errors.WithStack(err)
		}

		if conf.Flags.DisableInternalMetricsReporting {
			return nil
		}

		return queue.Put(ctx, NewRemoteAmboyStatsCollector(env, utility.RoundPartOfMinute(0).Format(tsFormat)))
	})
	amboy.IntervalQueueOperation(ctx, remote, time.Minute, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewFlightpathConfig(env)
		if err := conf.Find(); err != nil {
			return errors.WithStack(err)
		}

		if conf.Flags.DisableBackgroundGeneration {
			return nil
		}

		return queue.Put(ctx, NewScheduledDatasetsJob(utility.RoundPartOfMinute(0).Format(tsFormat)))
	})
	amboy.IntervalQueueOperation(ctx, remote, time.Hour, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		conf := model.NewFlightpathConfig(env)
		if err := conf.Find(); err != nil {
			return errors.WithStack(err)
		}

		if conf.Flags.DisableMetricsRollups {
			return nil
		}

		records := &model.TrajectoryRecords{}
		records.Setup(env)
		if err := records.Find(model.TrajectoryFindOptions{Limit: rollupSweepLimit}); err != nil {
			return errors.WithStack(err)
		}

		catcher := grip.NewBasicCatcher()
		for _, record := range records.Records {
			if !record.CompletedAt.IsZero() {
				continue
			}

			job, err := NewMetricsRollupJob(record.ID)
			if err != nil {
				catcher.Add(err)
				continue
			}
			catcher.Add(queue.Put(ctx, job))
		}
		return catcher.Resolve()
	})

	return nil
}
