package pubsub

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

// EventPublisher writes domain events to a Pub/Sub topic, creating it on first use.
type EventPublisher struct {
	client    *pubsub.Client
	topicName string

	once     sync.Once
	topic    *pubsub.Topic
	topicErr error
}

func NewEventPublisher(client *pubsub.Client, topicName string) repository.IEventPublisher {
	return &EventPublisher{client: client, topicName: topicName}
}

func (p *EventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.once.Do(func() {
		topic := p.client.Topic(p.topicName)
		exists, err := topic.Exists(ctx)
		if err != nil {
			p.topicErr = err
			return
		}
		if !exists {
			logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
			if topic, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
				p.topicErr = err
				return
			}
		}
		p.topic = topic
	})
	return p.topic, p.topicErr
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	data, err := model.EncodeEnvelope(eventType, payload, time.Now())
	if err != nil {
		return err
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": eventType},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).WithField("server ID", serverID).WithField("event", eventType).Info("Message published")
	return nil
}

// Stop flushes pending messages.
func (p *EventPublisher) Stop() {
	if p.topic != nil {
		p.topic.Stop()
	}
}
