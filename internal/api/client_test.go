package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestListEnergyMetersQuery(t *testing.T) {
	var gotPath, gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]domain.EnergyMeter{{ID: 1, AssetName: "main"}})
	})

	st := domain.LazyState{First: 10, Rows: 5, Filter: map[string]string{"asset_name": "main"}}
	meters, err := client.ListEnergyMeters(context.Background(), st)
	if err != nil {
		t.Fatalf("ListEnergyMeters: %v", err)
	}
	if gotPath != "/api/admin/crud/energy_meter" {
		t.Errorf("path = %q", gotPath)
	}
	want := st.Values().Encode()
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
	if len(meters) != 1 || meters[0].AssetName != "main" {
		t.Errorf("meters = %+v", meters)
	}
}

func TestCountEnergyMeters(t *testing.T) {
	var gotFilter string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/crud/energy_meter/count" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotFilter = r.URL.Query().Get("filter")
		w.Write([]byte("42"))
	})

	n, err := client.CountEnergyMeters(context.Background(), map[string]string{"asset_name": "main"})
	if err != nil {
		t.Fatalf("CountEnergyMeters: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
	if gotFilter != `{"asset_name":"main"}` {
		t.Errorf("filter = %q", gotFilter)
	}
}

func TestCreateEnergyMeterPostsJSON(t *testing.T) {
	var gotMethod, gotType string
	var gotBody domain.EnergyMeter
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	})

	m := &domain.EnergyMeter{AssetName: "main", IPAddress: "10.0.0.1", Port: 502, TimeZone: "Europe/Budapest", Enabled: true}
	if err := client.CreateEnergyMeter(context.Background(), m); err != nil {
		t.Fatalf("CreateEnergyMeter: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotType != "application/json" {
		t.Errorf("content type = %q", gotType)
	}
	if gotBody.IPAddress != "10.0.0.1" || gotBody.Port != 502 {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestUpdateAndDeleteTargetRow(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
	})

	ctx := context.Background()
	if err := client.UpdateEnergyMeter(ctx, 7, &domain.EnergyMeter{ID: 7}); err != nil {
		t.Fatalf("UpdateEnergyMeter: %v", err)
	}
	if err := client.DeleteEnergyMeter(ctx, 7); err != nil {
		t.Fatalf("DeleteEnergyMeter: %v", err)
	}
	if err := client.DeleteChannel(ctx, 3); err != nil {
		t.Fatalf("DeleteChannel: %v", err)
	}

	want := []call{
		{http.MethodPut, "/api/admin/crud/energy_meter/7"},
		{http.MethodDelete, "/api/admin/crud/energy_meter/7"},
		{http.MethodDelete, "/api/admin/crud/channels/3"},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call[%d] = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestChannelsOfMeterScopesFilter(t *testing.T) {
	var gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]domain.Channel{{ID: 1, EnergyMeterID: 7, Channel: 1}})
	})

	channels, err := client.ChannelsOfMeter(context.Background(), 7)
	if err != nil {
		t.Fatalf("ChannelsOfMeter: %v", err)
	}
	q, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatalf("parsing query %q: %v", gotQuery, err)
	}
	if got := q.Get("filter"); got != `{"energy_meter_id":"7"}` {
		t.Errorf("filter = %q", got)
	}
	if q.Has("first") || q.Has("rowcount") {
		t.Errorf("dependent fetch paginates: %q", gotQuery)
	}
	if len(channels) != 1 {
		t.Errorf("channels = %+v", channels)
	}
}

func TestReportRows(t *testing.T) {
	var gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/measurements/report" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]domain.ReportRow{{Channel: 2, MeasuredValue: 120.5, Diff: 1.5}})
	})

	q := domain.ReportQuery{FromDate: "2026-08-01", ToDate: "2026-08-31", IP: "10.0.0.1", Details: "daily", Channel: "2"}
	rows, err := client.Report(context.Background(), q)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(rows) != 1 || rows[0].MeasuredValue != 120.5 {
		t.Errorf("rows = %+v", rows)
	}
	parsed, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatalf("parsing query %q: %v", gotQuery, err)
	}
	if parsed.Get("channel") != "2" || parsed.Get("details") != "daily" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestReportBackendError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err":"device not found"}`))
	})

	_, err := client.Report(context.Background(), domain.ReportQuery{})
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *BackendError", err)
	}
	if be.Message != "device not found" {
		t.Errorf("message = %q", be.Message)
	}
}

func TestHTTPErrorCarriesStatusAndBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate ip_address", http.StatusConflict)
	})

	err := client.CreateEnergyMeter(context.Background(), &domain.EnergyMeter{})
	if err == nil {
		t.Fatal("expected error for 409")
	}
	for _, want := range []string{"409", "duplicate ip_address"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}
