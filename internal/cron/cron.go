package cron

import (
	"context"
	"sync"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/wrdo/mailrouter/interfaces"
	cron_config "github.com/wrdo/mailrouter/internal/cron/config"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
)

const (
	// GroupMaintenance serializes jobs that touch stored mail
	GroupMaintenance = "maintenance"

	// LeaseDuration is how long a lease lasts before needing renewal
	LeaseDuration = 15 * time.Second
	// RenewDeadline is how long a leader has to renew its lease
	RenewDeadline = 10 * time.Second
	// RetryPeriod is how long to wait between leadership attempts
	RetryPeriod = 2 * time.Second

	leaseName = "mailrouter-cron-leader"
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupMaintenance: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg       *cron_config.Config
	log       logger.Logger
	cron      *cronv3.Cron
	k8s       kubernetes.Interface
	stopCh    chan struct{}
	stopOnce  sync.Once
	jobIDs    map[string]cronv3.EntryID
	retention interfaces.RetentionService
}

func NewCronManager(cfg *cron_config.Config, log logger.Logger, k8s kubernetes.Interface, retention interfaces.RetentionService) *CronManager {
	return &CronManager{
		cfg:       cfg,
		log:       log,
		k8s:       k8s,
		stopCh:    make(chan struct{}),
		jobIDs:    make(map[string]cronv3.EntryID),
		retention: retention,
	}
}

// Start runs the scheduler under a Kubernetes lease so only one replica executes jobs.
// Without a client, or in local development, the scheduler starts directly.
func (cm *CronManager) Start(podName, namespace string, localDev bool) error {
	if cm.k8s == nil || localDev {
		cm.log.Info("Starting cron manager in local mode")
		return cm.StartCron(podName)
	}

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      leaseName,
			Namespace: namespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: podName,
		},
	}

	errCh := make(chan error, 1)

	go func() {
		le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
			Lock:            lock,
			ReleaseOnCancel: true,
			LeaseDuration:   LeaseDuration,
			RenewDeadline:   RenewDeadline,
			RetryPeriod:     RetryPeriod,
			Callbacks: leaderelection.LeaderCallbacks{
				OnStartedLeading: func(ctx context.Context) {
					if err := cm.StartCron(podName); err != nil {
						cm.log.Errorf("Could not start cron after winning leadership: %v", err)
					}
				},
				OnStoppedLeading: func() {
					cm.log.Info("Leader lost - stopping crons")
					cm.Stop()
				},
				OnNewLeader: func(identity string) {
					cm.log.Infof("New leader elected: %s", identity)
				},
			},
		})
		if err != nil {
			errCh <- err
			return
		}

		le.Run(context.Background())
	}()

	// fail fast when the elector cannot even be built
	select {
	case err := <-errCh:
		cm.log.Warnf("Leader election failed, falling back to local mode: %v", err)
		return cm.StartCron(podName)
	case <-time.After(5 * time.Second):
	}

	return nil
}

// Stop waits for running jobs. Safe to call more than once.
func (cm *CronManager) Stop() {
	cm.stopOnce.Do(func() {
		if cm.cron != nil {
			cm.log.Info("Stopping cron manager")
			ctx := cm.cron.Stop()
			<-ctx.Done()
		}
		close(cm.stopCh)
	})
}

func (cm *CronManager) registerJobs(c *cronv3.Cron, podName string) error {
	if cm.cfg.CronScheduleHeartbeat != "" {
		id, err := c.AddFunc(cm.cfg.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			return err
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cm.cfg.CronScheduleHeartbeat)
	}

	if cm.cfg.CronScheduleRetention != "" && cm.retention != nil {
		id, err := c.AddFunc(cm.cfg.CronScheduleRetention, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupMaintenance].Lock()
			defer jobLocks.locks[GroupMaintenance].Unlock()
			cm.purgeExpired()
		})
		if err != nil {
			return err
		}
		cm.jobIDs["retention"] = id
		cm.log.Infof("Registered retention job with schedule: %s", cm.cfg.CronScheduleRetention)
	}
	return nil
}

func (cm *CronManager) StartCron(podName string) error {
	cm.log.Info("Starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	if err := cm.registerJobs(c, podName); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	return nil
}

func (cm *CronManager) purgeExpired() {
	cm.log.Info("Running retention purge")

	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.purgeExpired")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if err := cm.retention.PurgeExpired(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Retention purge failed: %v", err)
		return
	}

	cm.log.Info("Retention purge completed")
}
