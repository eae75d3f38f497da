package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightdashboard/internal/domain"
)

var ErrNotFound = errors.New("flight not found")

// Client calls the flights HTTP API rooted at base, e.g. http://host/api/flights.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(base, "/"), http: httpClient}
}

func (c *Client) List(ctx context.Context) ([]domain.FlightView, error) {
	var out []domain.FlightView
	if err := c.do(ctx, http.MethodGet, c.base, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*domain.Flight, error) {
	var out domain.Flight
	if err := c.do(ctx, http.MethodGet, c.flightURL(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Add(ctx context.Context, create domain.FlightCreate) (domain.FlightView, error) {
	var out domain.FlightView
	err := c.do(ctx, http.MethodPost, c.base, create, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, flight domain.Flight) (domain.Flight, error) {
	var out domain.Flight
	err := c.do(ctx, http.MethodPut, c.base, flight, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int64) (bool, error) {
	var out bool
	err := c.do(ctx, http.MethodDelete, c.flightURL(id), nil, &out)
	return out, err
}

func (c *Client) flightURL(id int64) string {
	return c.base + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, apiErr.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
