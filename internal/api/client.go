// Package api is the typed client for the metering backend. All persistence,
// validation, and aggregation live behind it; the console only renders what
// it returns.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
)

const (
	meterPath   = "/api/admin/crud/energy_meter"
	channelPath = "/api/admin/crud/channels"
	reportPath  = "/api/measurements/report"
)

// BackendError is a business-level failure reported inside a 200 response,
// as opposed to a transport or HTTP failure.
type BackendError struct {
	Message string `json:"err"`
}

func (e *BackendError) Error() string { return e.Message }

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListEnergyMeters(ctx context.Context, st domain.LazyState) ([]domain.EnergyMeter, error) {
	var out []domain.EnergyMeter
	if err := c.getJSON(ctx, meterPath, &out, st.Values()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CountEnergyMeters(ctx context.Context, filter map[string]string) (int, error) {
	return c.count(ctx, meterPath+"/count", filter)
}

func (c *Client) GetEnergyMeter(ctx context.Context, id int64) (*domain.EnergyMeter, error) {
	var out domain.EnergyMeter
	if err := c.getJSON(ctx, meterPath+"/"+strconv.FormatInt(id, 10), &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateEnergyMeter(ctx context.Context, m *domain.EnergyMeter) error {
	return c.send(ctx, http.MethodPost, meterPath, m)
}

func (c *Client) UpdateEnergyMeter(ctx context.Context, id int64, m *domain.EnergyMeter) error {
	return c.send(ctx, http.MethodPut, meterPath+"/"+strconv.FormatInt(id, 10), m)
}

func (c *Client) DeleteEnergyMeter(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, meterPath+"/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) ListChannels(ctx context.Context, st domain.LazyState) ([]domain.Channel, error) {
	var out []domain.Channel
	if err := c.getJSON(ctx, channelPath, &out, st.Values()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CountChannels(ctx context.Context, filter map[string]string) (int, error) {
	return c.count(ctx, channelPath+"/count", filter)
}

func (c *Client) GetChannel(ctx context.Context, id int64) (*domain.Channel, error) {
	var out domain.Channel
	if err := c.getJSON(ctx, channelPath+"/"+strconv.FormatInt(id, 10), &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChannel(ctx context.Context, ch *domain.Channel) error {
	return c.send(ctx, http.MethodPost, channelPath, ch)
}

func (c *Client) UpdateChannel(ctx context.Context, id int64, ch *domain.Channel) error {
	return c.send(ctx, http.MethodPut, channelPath+"/"+strconv.FormatInt(id, 10), ch)
}

func (c *Client) DeleteChannel(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, channelPath+"/"+strconv.FormatInt(id, 10), nil)
}

// ChannelsOfMeter fetches every channel of one device, for the dependent
// channel dropdown on the report page.
func (c *Client) ChannelsOfMeter(ctx context.Context, meterID int64) ([]domain.Channel, error) {
	st := domain.LazyState{
		Filter: map[string]string{"energy_meter_id": strconv.FormatInt(meterID, 10)},
	}
	return c.ListChannels(ctx, st)
}

// Report runs a measurement report query. A business failure arrives as a
// 200 with an {"err": ...} body and is returned as a *BackendError.
func (c *Client) Report(ctx context.Context, q domain.ReportQuery) ([]domain.ReportRow, error) {
	body, err := c.get(ctx, reportPath, q.Values())
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var be BackendError
		if err := json.Unmarshal(trimmed, &be); err != nil {
			return nil, fmt.Errorf("decoding report response: %w", err)
		}
		return nil, &be
	}
	var rows []domain.ReportRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("decoding report response: %w", err)
	}
	return rows, nil
}

// Health probes backend reachability with the cheapest read the CRUD API
// offers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.CountEnergyMeters(ctx, nil)
	return err
}

func (c *Client) count(ctx context.Context, path string, filter map[string]string) (int, error) {
	params := url.Values{}
	if f := domain.EncodeFilter(filter); f != "" {
		params.Set("filter", f)
	}
	var out int
	if err := c.getJSON(ctx, path, &out, params); err != nil {
		return 0, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any, params url.Values) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, statusError(resp, body)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any) error {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return statusError(resp, body)
	}
	return nil
}

func statusError(resp *http.Response, body []byte) error {
	msg := string(bytes.TrimSpace(body))
	if msg == "" {
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	return fmt.Errorf("request failed: %s: %s", resp.Status, msg)
}
