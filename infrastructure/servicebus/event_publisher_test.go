package servicebus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"subtitle-credit/domain/model"
)

func TestFullyQualifiedNamespace(t *testing.T) {
	assert.Equal(t, "credits.servicebus.windows.net", fullyQualifiedNamespace("credits"))
	assert.Equal(t, "credits.servicebus.windows.net", fullyQualifiedNamespace("credits.servicebus.windows.net"))
}

func TestNewMessage(t *testing.T) {
	body, err := model.EncodeEnvelope(model.EventJobFailed, model.JobEvent{JobID: "JOB-1"}, time.Now())
	require.NoError(t, err)

	msg := newMessage(model.EventJobFailed, body)

	require.NotNil(t, msg.Subject)
	assert.Equal(t, model.EventJobFailed, *msg.Subject)
	assert.Equal(t, "application/json", *msg.ContentType)
	assert.NotEmpty(t, *msg.MessageID)
	assert.Equal(t, model.EventJobFailed, msg.ApplicationProperties["type"])

	var env struct {
		Type string `json:"type"`
		Data struct {
			JobID string `json:"job_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, "job.failed", env.Type)
	assert.Equal(t, "JOB-1", env.Data.JobID)
}
