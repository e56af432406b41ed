package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/channel"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

type redisEventListener struct {
	logger      *logrus.Logger
	cache       Client
	subscribers map[reflect.Type][]interface{}
	registry    map[string]reflect.Type
}

func NewRedisEventListener(
	logger *logrus.Logger,
	cache Client,
	registry map[string]reflect.Type,
) EventListener {
	return &redisEventListener{
		logger:      logger,
		cache:       cache,
		subscribers: make(map[reflect.Type][]interface{}),
		registry:    registry,
	}
}

func RegisterEventSubscriber[T event.Event](l EventListener, subscriber EventSubscriber[T]) {
	var evt T
	l.Register(reflect.TypeOf(evt), subscriber)
}

func (r *redisEventListener) Register(eventType reflect.Type, subscriber interface{}) {
	r.subscribers[eventType] = append(r.subscribers[eventType], subscriber)
}

// Listen blocks until ctx is done, resubscribing with backoff whenever the
// pub/sub connection drops.
func (r *redisEventListener) Listen(ctx context.Context, channels ...channel.Channel) {
	channelNames := make([]string, 0, len(channels))
	for _, ch := range channels {
		channelNames = append(channelNames, string(ch))
	}

	delay := minReconnectDelay
	for {
		if ctx.Err() != nil {
			r.logger.Info("redis pubsub listener shutting down")
			return
		}

		if r.listenOnce(ctx, channelNames) {
			delay = minReconnectDelay
		}
		if ctx.Err() != nil {
			r.logger.Info("redis pubsub listener shutting down")
			return
		}

		r.logger.WithField("retry_in", delay.String()).Warn("redis pubsub disconnected, reconnecting")
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// listenOnce consumes one subscription and reports whether any message was
// received on it.
func (r *redisEventListener) listenOnce(ctx context.Context, channelNames []string) bool {
	pubSub := r.cache.RedisClient().Subscribe(ctx, channelNames...)
	defer func() { _ = pubSub.Close() }()

	r.logger.WithField("channels", channelNames).Debug("redis pubsub connected")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = pubSub.Close()
		case <-stop:
		}
	}()

	received := false
	for msg := range pubSub.Channel() {
		if ctx.Err() != nil {
			return received
		}
		received = true
		r.handleMessage(ctx, msg.Payload)
	}
	return received
}

func (r *redisEventListener) handleMessage(ctx context.Context, payload string) {
	var envelope RedisMessage
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		r.logger.WithError(err).Error("error decoding redis message")
		return
	}

	concreteType, err := r.eventType(envelope.Type)
	if err != nil {
		r.logger.WithError(err).Warn("ignoring redis message")
		return
	}

	eventPtr := reflect.New(concreteType)
	if err := json.Unmarshal(envelope.Event, eventPtr.Interface()); err != nil {
		r.logger.WithError(err).WithField("type", envelope.Type).Error("error unmarshalling event data into concrete type")
		return
	}

	r.notifySubscribers(ctx, concreteType, eventPtr.Elem())
}

func (r *redisEventListener) notifySubscribers(ctx context.Context, eventType reflect.Type, eventValue reflect.Value) {
	for _, sub := range r.subscribers[eventType] {
		method := reflect.ValueOf(sub).MethodByName("OnEvent")
		if !method.IsValid() {
			r.logger.Debug("subscriber does not implement OnEvent")
			continue
		}
		if !eventValue.Type().AssignableTo(method.Type().In(1)) {
			continue
		}

		results := method.Call([]reflect.Value{reflect.ValueOf(ctx), eventValue})
		if len(results) > 0 && !results[0].IsNil() {
			if err, ok := results[0].Interface().(error); ok {
				r.logger.WithError(err).WithField("type", eventType.Name()).Error("event subscriber failed")
			}
		}
	}
}

func (r *redisEventListener) eventType(name string) (reflect.Type, error) {
	concreteType, ok := r.registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", name)
	}
	return concreteType, nil
}
