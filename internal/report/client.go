package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/handicap/internal/domain/model"
)

// EntryView is one entry as the API renders it.
type EntryView struct {
	Date     model.Date `json:"date"`
	Value    float64    `json:"value"`
	Handicap string     `json:"handicap"`
	LowHI    string     `json:"lowHI"`
}

// PlayerView is the player detail returned by the API.
type PlayerView struct {
	model.PlayerSummary
	Entries    []EntryView       `json:"entries"`
	YearCounts []model.YearCount `json:"yearCounts"`
}

// ChartView is the chart returned by the API.
type ChartView struct {
	Players []string         `json:"players"`
	Rows    []model.ChartRow `json:"rows"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client reads a running handicap service.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Players returns the overview.
func (c *Client) Players(ctx context.Context) ([]model.PlayerSummary, error) {
	var out []model.PlayerSummary
	return out, c.get(ctx, "/api/players", &out)
}

// Player returns the detail of the player with slug.
func (c *Client) Player(ctx context.Context, slug string) (PlayerView, error) {
	var out PlayerView
	return out, c.get(ctx, "/api/players/"+url.PathEscape(slug), &out)
}

// Chart returns every chart row.
func (c *Client) Chart(ctx context.Context) (ChartView, error) {
	var out ChartView
	return out, c.get(ctx, "/api/chart", &out)
}

// Yearly returns the yearly matrix.
func (c *Client) Yearly(ctx context.Context) (model.YearlyMatrix, error) {
	var out model.YearlyMatrix
	return out, c.get(ctx, "/api/yearly", &out)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiError{}).
		ForceContentType("application/json").
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Message != "" {
			return fmt.Errorf("GET %s: %d %s: %s", path, resp.StatusCode(), e.Code, e.Message)
		}
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode())
	}
	return nil
}
