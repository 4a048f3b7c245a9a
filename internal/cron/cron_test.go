package cron

import (
	"context"
	"errors"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes"

	cron_config "github.com/wrdo/mailrouter/internal/cron/config"
	"github.com/wrdo/mailrouter/internal/logger"
)

type mockKubernetesInterface struct {
	kubernetes.Interface
	mock.Mock
}

type mockRetentionService struct {
	mock.Mock
}

func (m *mockRetentionService) PurgeExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	cfg := &cron_config.Config{}
	log := getLogger()
	k8s := &mockKubernetesInterface{}

	cm := NewCronManager(cfg, log, k8s, nil)

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, k8s, cm.k8s)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs(t *testing.T) {
	cfg := &cron_config.Config{
		CronScheduleHeartbeat: "0 * * * * *",
		CronScheduleRetention: "0 0 3 * * *",
	}
	cm := NewCronManager(cfg, getLogger(), nil, &mockRetentionService{})

	c := cronv3.New(cronv3.WithSeconds())
	require.NoError(t, cm.registerJobs(c, "test-pod"))

	assert.Len(t, cm.jobIDs, 2)
	assert.Contains(t, cm.jobIDs, "heartbeat")
	assert.Contains(t, cm.jobIDs, "retention")
}

func TestCronManager_RegisterJobs_SkipsRetentionWithoutService(t *testing.T) {
	cfg := &cron_config.Config{CronScheduleRetention: "0 0 3 * * *"}
	cm := NewCronManager(cfg, getLogger(), nil, nil)

	require.NoError(t, cm.registerJobs(cronv3.New(cronv3.WithSeconds()), "test-pod"))
	assert.Empty(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs_InvalidSchedule(t *testing.T) {
	cfg := &cron_config.Config{CronScheduleHeartbeat: "not a schedule"}
	cm := NewCronManager(cfg, getLogger(), nil, nil)

	assert.Error(t, cm.registerJobs(cronv3.New(cronv3.WithSeconds()), "test-pod"))
}

func TestCronManager_PurgeExpired(t *testing.T) {
	retention := &mockRetentionService{}
	retention.On("PurgeExpired", mock.Anything).Return(nil).Once()
	cm := NewCronManager(&cron_config.Config{}, getLogger(), nil, retention)

	cm.purgeExpired()

	retention.AssertExpectations(t)
}

func TestCronManager_PurgeExpiredErrorIsLogged(t *testing.T) {
	retention := &mockRetentionService{}
	retention.On("PurgeExpired", mock.Anything).Return(errors.New("db down")).Once()
	cm := NewCronManager(&cron_config.Config{}, getLogger(), nil, retention)

	assert.NotPanics(t, cm.purgeExpired)
	retention.AssertExpectations(t)
}

func TestCronManager_StartLocalAndStop(t *testing.T) {
	cfg := &cron_config.Config{CronScheduleHeartbeat: "0 * * * * *"}
	cm := NewCronManager(cfg, getLogger(), nil, nil)

	require.NoError(t, cm.Start("test-pod", "default", true))
	assert.NotNil(t, cm.cron)

	cm.Stop()
	cm.Stop()

	select {
	case <-cm.stopCh:
	default:
		t.Error("Stop channel was not closed")
	}
}
