package subtitle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/clients"
)

// Dispatcher hands accepted jobs to the subtitle processor.
type Dispatcher struct {
	baseURL string
	http    *http.Client
}

func NewDispatcher(baseURL, apiKey string, timeout time.Duration) repository.ISubtitleDispatcher {
	return &Dispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    clients.NewBearerClient(apiKey, timeout),
	}
}

// Dispatch returns an error only when no response was received; callers judge the status code.
func (d *Dispatcher) Dispatch(ctx context.Context, job model.DispatchRequest) (model.DispatchResult, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return model.DispatchResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/subtitle/process", bytes.NewReader(payload))
	if err != nil {
		return model.DispatchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := d.http.Do(req)
	if err != nil {
		return model.DispatchResult{}, fmt.Errorf("subtitle dispatch: %w", err)
	}
	defer res.Body.Close()

	result := model.DispatchResult{StatusCode: res.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if json.Unmarshal(raw, &body) == nil {
		result.Message = body.Message
	}
	return result, nil
}
