package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"subtitle-credit/domain/model"
	"subtitle-credit/usecase"
)

func TestFanout_PublishesToEveryone(t *testing.T) {
	bus := new(MockPublisher)
	hub := new(MockPublisher)
	evt := model.JobEvent{JobID: "JOB-1", UserID: "user-1"}
	bus.On("Publish", mock.Anything, model.EventJobAccepted, evt).Return(errors.New("bus down")).Once()
	hub.On("Publish", mock.Anything, model.EventJobAccepted, evt).Return(nil).Once()

	err := usecase.NewFanout(bus, nil, hub).Publish(context.Background(), model.EventJobAccepted, evt)

	assert.ErrorContains(t, err, "bus down")
	bus.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, usecase.NewFanout().Publish(context.Background(), model.EventJobAccepted, nil))
}
