package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/enum"
)

func newTestExecutor() (*Executor, *mockMailboxStore, *mockForwarder) {
	mailbox := new(mockMailboxStore)
	forwarder := new(mockForwarder)
	return NewExecutor(testLogger(), mailbox, forwarder, nil), mailbox, forwarder
}

func TestExecute_NormalSave(t *testing.T) {
	executor, mailbox, _ := newTestExecutor()
	email := &dto.InboundEmail{From: "a@x.com", To: "inbox@wr.do"}
	mailbox.On("Save", mock.Anything, recipient("inbox@wr.do")).Return("fwd_1", nil).Once()

	err := executor.Execute(context.Background(), email, &dto.FeatureConfig{}, ActionSet{enum.DeliveryNormalSave})
	require.NoError(t, err)
	mailbox.AssertExpectations(t)
}

func TestExecute_MissingMailboxIsNotAFailure(t *testing.T) {
	executor, mailbox, _ := newTestExecutor()
	mailbox.On("Save", mock.Anything, mock.Anything).Return("", nil).Once()

	err := executor.Execute(context.Background(), &dto.InboundEmail{To: "nobody@wr.do"}, &dto.FeatureConfig{}, ActionSet{enum.DeliveryNormalSave})
	assert.NoError(t, err)
}

func TestExecute_CatchAllFansOutToEveryTarget(t *testing.T) {
	executor, mailbox, _ := newTestExecutor()
	email := &dto.InboundEmail{From: "a@x.com", To: "inbox@wr.do", Subject: "hi"}
	cfg := &dto.FeatureConfig{CatchAll: dto.CatchAllConfig{Enabled: true, Targets: "c1@wr.do, bad-addr, c2@wr.do"}}

	mailbox.On("Save", mock.Anything, recipient("c1@wr.do")).Return("fwd_1", nil).Once()
	mailbox.On("Save", mock.Anything, recipient("c2@wr.do")).Return("fwd_2", nil).Once()

	err := executor.Execute(context.Background(), email, cfg, ActionSet{enum.DeliveryCatchAll})
	require.NoError(t, err)
	mailbox.AssertExpectations(t)
	assert.Equal(t, "inbox@wr.do", email.To, "original message must not be modified")
}

func TestExecute_CatchAllWithoutValidTargets(t *testing.T) {
	executor, mailbox, _ := newTestExecutor()
	cfg := &dto.FeatureConfig{CatchAll: dto.CatchAllConfig{Enabled: true, Targets: "bad-addr, ,"}}

	err := executor.Execute(context.Background(), &dto.InboundEmail{To: "inbox@wr.do"}, cfg, ActionSet{enum.DeliveryCatchAll})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailrouter_errors.ErrNoCatchAllTargets)

	var failure *DeliveryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, enum.DeliveryCatchAll, failure.Action)
	mailbox.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestExecute_CatchAllFailsWhenOneCopyFails(t *testing.T) {
	executor, mailbox, _ := newTestExecutor()
	cfg := &dto.FeatureConfig{CatchAll: dto.CatchAllConfig{Enabled: true, Targets: "c1@wr.do,c2@wr.do"}}
	storeErr := errors.New("db down")

	mailbox.On("Save", mock.Anything, recipient("c1@wr.do")).Return("", storeErr).Once()
	mailbox.On("Save", mock.Anything, recipient("c2@wr.do")).Return("fwd_2", nil).Once()

	err := executor.Execute(context.Background(), &dto.InboundEmail{To: "inbox@wr.do"}, cfg, ActionSet{enum.DeliveryCatchAll})
	assert.ErrorIs(t, err, storeErr)
	mailbox.AssertExpectations(t)
}

func TestExecute_PartialFailureRunsEverySibling(t *testing.T) {
	executor, mailbox, forwarder := newTestExecutor()
	cfg := &dto.FeatureConfig{
		CatchAll: dto.CatchAllConfig{Enabled: true, Targets: "c1@wr.do"},
		Forward:  dto.ForwardConfig{Enabled: true, Targets: "ext@gmail.com"},
	}
	sendErr := errors.New("provider rejected")

	mailbox.On("Save", mock.Anything, recipient("c1@wr.do")).Return("fwd_1", nil).Once()
	mailbox.On("Save", mock.Anything, recipient("inbox@wr.do")).Return("fwd_2", nil).Once()
	forwarder.On("Forward", mock.Anything, mock.Anything, cfg.Forward).Return(sendErr).Once()

	actions := ActionSet{enum.DeliveryCatchAll, enum.DeliveryExternalForward, enum.DeliveryNormalSave}
	err := executor.Execute(context.Background(), &dto.InboundEmail{To: "inbox@wr.do"}, cfg, actions)

	var failure *DeliveryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, enum.DeliveryExternalForward, failure.Action)
	assert.Equal(t, []enum.DeliveryAction{enum.DeliveryExternalForward}, failure.Failed)
	assert.Equal(t, "email operation failed: provider rejected", err.Error())
	mailbox.AssertExpectations(t)
	forwarder.AssertExpectations(t)
}

func TestExecute_FirstFailureFollowsActionOrder(t *testing.T) {
	executor, mailbox, forwarder := newTestExecutor()
	cfg := &dto.FeatureConfig{CatchAll: dto.CatchAllConfig{Enabled: true, Targets: "c1@wr.do"}}

	// catch-all settles last but still reports first
	mailbox.On("Save", mock.Anything, recipient("c1@wr.do")).
		After(50*time.Millisecond).Return("", errors.New("slow failure")).Once()
	forwarder.On("Forward", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("fast failure")).Once()

	err := executor.Execute(context.Background(), &dto.InboundEmail{To: "inbox@wr.do"}, cfg,
		ActionSet{enum.DeliveryCatchAll, enum.DeliveryExternalForward})

	var failure *DeliveryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, enum.DeliveryCatchAll, failure.Action)
	assert.Contains(t, failure.Error(), "slow failure")
	assert.Equal(t, []enum.DeliveryAction{enum.DeliveryCatchAll, enum.DeliveryExternalForward}, failure.Failed)
}

func TestExecute_UnknownAction(t *testing.T) {
	executor, _, _ := newTestExecutor()

	err := executor.Execute(context.Background(), &dto.InboundEmail{To: "inbox@wr.do"}, &dto.FeatureConfig{},
		ActionSet{enum.DeliveryAction("BOUNCE")})
	assert.ErrorIs(t, err, mailrouter_errors.ErrUnknownAction)
}
