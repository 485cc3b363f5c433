package units

import (
	"context"
	"runtime"

	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

const sysInfoStatsCollectorJobName = "sys-info-stats-collector"

func init() {
	registry.AddJobType(sysInfoStatsCollectorJobName,
		func() amboy.Job { return makeSysInfoStatsCollector() })
}

type sysInfoStatsCollector struct {
	job.Base `bson:"job_base" json:"job_base" yaml:"job_base"`
}

// NewSysInfoStatsCollector reports basic system resource usage of the
// current process.
func NewSysInfoStatsCollector(id string) amboy.Job {
	j := makeSysInfoStatsCollector()
	j.SetID(id)
	return j
}

func makeSysInfoStatsCollector() *sysInfoStatsCollector {
	j := &sysInfoStatsCollector{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    sysInfoStatsCollectorJobName,
				Version: 0,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

func (j *sysInfoStatsCollector) Run(ctx context.Context) {
	defer j.MarkComplete()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	grip.Info(message.Fields{
		"message":        "process stats",
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc":     mem.HeapAlloc,
		"heap_objects":   mem.HeapObjects,
		"total_alloc":    mem.TotalAlloc,
		"num_gc":         mem.NumGC,
		"pause_total_ns": mem.PauseTotalNs,
	})
}
