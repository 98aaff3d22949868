// Package client talks to the telemetry API over HTTP.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"SmartTent.api/internal/models"
	"github.com/go-resty/resty/v2"
)

// Client is an HTTP client for the telemetry API.
type Client struct {
	http *resty.Client
}

// New creates a client for the API served at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(5 * time.Second),
	}
}

// Submit posts one telemetry payload.
func (c *Client) Submit(ctx context.Context, payload interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&models.SubmitResponse{}).
		SetError(&models.APIError{}).
		Post("/api/data")
	if err != nil {
		return fmt.Errorf("posting telemetry: %w", err)
	}
	if resp.IsError() {
		return responseError(resp)
	}
	if ack := resp.Result().(*models.SubmitResponse); !ack.Success {
		return fmt.Errorf("telemetry not accepted: %s", resp.String())
	}
	return nil
}

// Reading fetches the latest reading of deviceID.
func (c *Client) Reading(ctx context.Context, deviceID string) (models.Reading, error) {
	var reading models.Reading
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&reading).
		SetError(&models.APIError{}).
		Get("/api/data/" + url.PathEscape(deviceID))
	if err != nil {
		return models.Reading{}, fmt.Errorf("fetching reading of %s: %w", deviceID, err)
	}
	if resp.IsError() {
		return models.Reading{}, responseError(resp)
	}
	return reading, nil
}

// Status fetches the service status.
func (c *Client) Status(ctx context.Context) (models.Status, error) {
	var status models.Status
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/api/status")
	if err != nil {
		return models.Status{}, fmt.Errorf("fetching status: %w", err)
	}
	if resp.IsError() {
		return models.Status{}, fmt.Errorf("status request failed: %s", resp.Status())
	}
	return status, nil
}

func responseError(resp *resty.Response) error {
	apiErr, ok := resp.Error().(*models.APIError)
	if !ok || apiErr.Message == "" {
		return fmt.Errorf("request failed: %s", resp.Status())
	}
	apiErr.StatusCode = resp.StatusCode()
	return *apiErr
}
