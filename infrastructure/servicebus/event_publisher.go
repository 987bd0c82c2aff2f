package servicebus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

// NewServiceBus authenticates with the default Azure credential chain.
func NewServiceBus(namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azservicebus.NewClient(fullyQualifiedNamespace(namespace), cred, nil)
}

func fullyQualifiedNamespace(namespace string) string {
	if strings.Contains(namespace, ".") {
		return namespace
	}
	return namespace + ".servicebus.windows.net"
}

type EventPublisher struct {
	client *azservicebus.Client
	queue  string
}

func NewEventPublisher(client *azservicebus.Client, queue string) repository.IEventPublisher {
	return &EventPublisher{client: client, queue: queue}
}

func newMessage(eventType string, body []byte) *azservicebus.Message {
	contentType := "application/json"
	messageID := uuid.NewString()
	return &azservicebus.Message{
		Body:                  body,
		ContentType:           &contentType,
		MessageID:             &messageID,
		Subject:               &eventType,
		ApplicationProperties: map[string]interface{}{"type": eventType},
	}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	body, err := model.EncodeEnvelope(eventType, payload, time.Now())
	if err != nil {
		return err
	}
	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.WithoutCancel(ctx))

	if err := sender.SendMessage(ctx, newMessage(eventType, body), nil); err != nil {
		logger.FromContext(ctx).WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
