package events

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

type SubscriberConfig struct {
	MaxRetries          int
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
	PrefetchCount       int
}

func DefaultSubscriberConfig() *SubscriberConfig {
	return &SubscriberConfig{
		MaxRetries:          5,
		ReconnectBackoff:    time.Second,
		MaxReconnectBackoff: time.Second * 30,
		PrefetchCount:       10,
	}
}

// acknowledger is the part of amqp091.Delivery the subscriber settles messages with.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type RabbitMQSubscriber struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	url             string
	logger          logger.Logger
	config          SubscriberConfig
	listeners       map[string]interfaces.EventListener
	listenerMutex   sync.RWMutex
	done            chan struct{}
	closeOnce       sync.Once
}

func NewRabbitMQSubscriber(rabbitmqURL string, logger logger.Logger, config *SubscriberConfig) (*RabbitMQSubscriber, error) {
	subscriber := newSubscriber(rabbitmqURL, logger, config)

	err := subscriber.connect()
	if err != nil {
		return nil, err
	}

	return subscriber, nil
}

func newSubscriber(rabbitmqURL string, logger logger.Logger, config *SubscriberConfig) *RabbitMQSubscriber {
	if config == nil {
		config = DefaultSubscriberConfig()
	}
	return &RabbitMQSubscriber{
		url:       rabbitmqURL,
		logger:    logger,
		config:    *config,
		listeners: make(map[string]interfaces.EventListener),
		done:      make(chan struct{}),
	}
}

func (r *RabbitMQSubscriber) RegisterListener(listener interfaces.EventListener) {
	r.listenerMutex.Lock()
	defer r.listenerMutex.Unlock()

	eventType := listener.GetEventType()
	r.listeners[eventType] = listener
	r.logger.Infof("Registered listener for event type: %s on queue: %s",
		eventType, listener.GetQueueName())
}

// ListenQueue consumes queueName in the background, reopening the channel whenever it drops.
func (r *RabbitMQSubscriber) ListenQueue(queueName string) error {
	go func() {
		for {
			select {
			case <-r.done:
				return
			default:
			}

			conn := r.currentConnection()
			if conn == nil || conn.IsClosed() {
				r.logger.Warnf("No open connection for queue %s. Retrying...", queueName)
				r.sleep(5 * time.Second)
				continue
			}

			channel, err := conn.Channel()
			if err != nil {
				r.logger.Errorf("Failed to open channel for queue %s: %v. Retrying...", queueName, err)
				r.sleep(5 * time.Second)
				continue
			}

			if r.config.PrefetchCount > 0 {
				if err := channel.Qos(r.config.PrefetchCount, 0, false); err != nil {
					r.logger.Warnf("Failed to set prefetch on queue %s: %v", queueName, err)
				}
			}

			msgs, err := channel.Consume(
				queueName, // queue
				"",        // consumer tag
				false,     // auto-ack
				false,     // exclusive
				false,     // no-local
				false,     // no-wait
				nil,       // args
			)
			if err != nil {
				channel.Close()
				r.logger.Errorf("Failed to register consumer on queue %s: %v. Retrying...", queueName, err)
				r.sleep(5 * time.Second)
				continue
			}

			r.logger.Infof("Listening for messages on queue %s", queueName)

			for d := range msgs {
				r.handleMessage(d.Body, &d, queueName)
			}
			channel.Close()

			r.logger.Warnf("Consumer stopped for queue %s. Reconnecting...", queueName)
			r.sleep(5 * time.Second)
		}
	}()

	return nil
}

func (r *RabbitMQSubscriber) sleep(d time.Duration) {
	select {
	case <-r.done:
	case <-time.After(d):
	}
}

func (r *RabbitMQSubscriber) currentConnection() *amqp091.Connection {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()
	return r.connection
}

// handleMessage acks processed messages and nacks failed ones without requeue, which moves
// them to the queue's dead letter queue.
func (r *RabbitMQSubscriber) handleMessage(body []byte, d acknowledger, queueName string) {
	defer tracing.RecoverAndLogToJaeger(r.logger)

	err := r.processMessage(body, queueName)
	if err != nil {
		r.logger.Errorf("Failed to process message on queue %s: %v", queueName, err)
		r.retryAckNack(d, false)
	} else {
		r.retryAckNack(d, true)
	}
}

func (r *RabbitMQSubscriber) processMessage(body []byte, queueName string) error {
	ctx := context.Background()

	var event dto.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}

	ctx = utils.WithCustomContext(ctx, &utils.CustomContext{
		AppSource: event.Metadata.AppSource,
		UserId:    event.Metadata.UserId,
		UserEmail: event.Metadata.UserEmail,
	})

	ctx, span := tracing.StartRabbitMQMessageTracerSpanWithHeader(ctx, "RabbitMQSubscriber.ProcessMessage", event.Metadata.UberTraceId)
	defer span.Finish()
	tracing.TagComponentListener(span)
	span.LogKV("event_type", event.Event.EventType)
	span.LogKV("queue_name", queueName)

	r.listenerMutex.RLock()
	listener, exists := r.listeners[event.Event.EventType]
	r.listenerMutex.RUnlock()

	if !exists {
		r.logger.Infof("No listener found for event type: %s on queue: %s", event.Event.EventType, queueName)
		return nil
	}

	if listener.GetQueueName() != queueName {
		r.logger.Warnf("Event type %s received on wrong queue. Expected %s, got %s",
			event.Event.EventType, listener.GetQueueName(), queueName)
		return nil
	}

	err := listener.Handle(ctx, event)
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *RabbitMQSubscriber) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	r.connection, err = amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	go r.watchConnection(r.connection)

	return nil
}

// watchConnection redials once conn drops, with capped exponential backoff.
func (r *RabbitMQSubscriber) watchConnection(conn *amqp091.Connection) {
	notifyClose := conn.NotifyClose(make(chan *amqp091.Error, 1))
	select {
	case <-r.done:
		return
	case amqpErr := <-notifyClose:
		select {
		case <-r.done:
			return
		default:
		}
		r.logger.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", amqpErr)
	}

	backoff := r.config.ReconnectBackoff
	for {
		err := r.connect()
		if err == nil {
			r.logger.Info("Subscriber reconnected to RabbitMQ")
			return
		}
		r.logger.Errorf("Subscriber failed to reconnect: %v, retrying in %v", err, backoff)
		r.sleep(backoff)
		select {
		case <-r.done:
			return
		default:
		}
		backoff *= 2
		if backoff > r.config.MaxReconnectBackoff {
			backoff = r.config.MaxReconnectBackoff
		}
	}
}

func (r *RabbitMQSubscriber) retryAckNack(d acknowledger, ack bool) {
	maxRetries := r.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	retryDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		var err error
		if ack {
			err = d.Ack(false)
		} else {
			err = d.Nack(false, false)
		}

		if err == nil {
			return
		}

		time.Sleep(retryDelay)
	}

	r.logger.Errorf("Failed to %s message after %d attempts",
		map[bool]string{true: "acknowledge", false: "negative acknowledge"}[ack],
		maxRetries)
}

func (r *RabbitMQSubscriber) Close() error {
	r.closeOnce.Do(func() { close(r.done) })

	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	if r.connection != nil && !r.connection.IsClosed() {
		return r.connection.Close()
	}
	return nil
}
