package app

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// OrphanReport lists image blobs that no product points at.
type OrphanReport struct {
	Stored     int      `json:"stored"`
	Referenced int      `json:"referenced"`
	Orphans    []string `json:"orphans"`
}

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 5m", a.SchedCatalogGaugeTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedOrphanImageTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
	a.sched.Start()
}

// OrphanImages compares stored image keys against the images products reference.
// Stored images are never deleted here.
func (a *Application) OrphanImages(ctx context.Context) (*OrphanReport, error) {
	keys, err := a.blobs.Keys(ctx)
	if err != nil {
		return nil, err
	}
	products, err := a.catalog.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]struct{})
	for _, p := range products {
		if p.Image.Kind() == domain.ImageBlob {
			referenced[p.Image.BlobKey()] = struct{}{}
		}
	}
	report := &OrphanReport{Stored: len(keys), Referenced: len(referenced), Orphans: []string{}}
	for _, k := range keys {
		if _, ok := referenced[k]; !ok {
			report.Orphans = append(report.Orphans, k)
		}
	}
	sort.Strings(report.Orphans)
	return report, nil
}

// SchedOrphanImageTask logs unreferenced images and records their count.
func (a *Application) SchedOrphanImageTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := a.OrphanImages(ctx)
	if err != nil {
		zap.L().Error("orphan image report failed", zap.String("namespace", "jobs"), zap.Error(err))
		return
	}
	metrics.SetGauge(metrics.OrphanImages, int64(len(report.Orphans)))
	metrics.SetGauge(metrics.StoredImages, int64(report.Stored))
	if len(report.Orphans) == 0 {
		return
	}
	zap.L().Warn("unreferenced images in storage",
		zap.String("namespace", "jobs"),
		zap.Int("stored", report.Stored),
		zap.Int("orphans", len(report.Orphans)),
		zap.Strings("keys", report.Orphans))
}

// SchedCatalogGaugeTask records the catalog size.
func (a *Application) SchedCatalogGaugeTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	products, err := a.catalog.GetAll(ctx)
	if err != nil {
		zap.L().Error("catalog gauge failed", zap.String("namespace", "jobs"), zap.Error(err))
		return
	}
	metrics.SetGauge(metrics.CatalogProducts, int64(len(products)))
}

// SchedSystemMonitorTask host cpu and memory
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(cpuuse) > 0 {
		// percent * 100
		metrics.SetGauge(metrics.SystemCPU, int64(cpuuse[0]*100))
	}
	meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge(metrics.SystemMem, int64(meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask feedstore process cpu and rss
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge(metrics.ProcessCPU, int64(cpuuse*100))
	}
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge(metrics.ProcessMem, int64(meminfo.RSS/1024/1024))
	}
}
