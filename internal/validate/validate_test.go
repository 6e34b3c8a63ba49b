package validate

import (
	"testing"
	"time"
)

func validMeterForm() MeterForm {
	return MeterForm{
		AssetName: "main building",
		IPAddress: "192.168.1.10",
		Port:      502,
		TimeZone:  "Europe/Budapest",
		Enabled:   true,
	}
}

func TestMeterFormValid(t *testing.T) {
	if errs := Struct(validMeterForm()); len(errs) != 0 {
		t.Errorf("valid form rejected: %v", errs)
	}
}

func TestMeterFormFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MeterForm)
		field  string
	}{
		{"missing asset name", func(f *MeterForm) { f.AssetName = "" }, "asset_name"},
		{"not an ipv4", func(f *MeterForm) { f.IPAddress = "10.0.0.256" }, "ip_address"},
		{"hostname not allowed", func(f *MeterForm) { f.IPAddress = "meter.local" }, "ip_address"},
		{"zero port", func(f *MeterForm) { f.Port = 0 }, "port"},
		{"port too large", func(f *MeterForm) { f.Port = 70000 }, "port"},
		{"unknown zone", func(f *MeterForm) { f.TimeZone = "Mars/Olympus" }, "time_zone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validMeterForm()
			tt.mutate(&f)
			errs := Struct(f)
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("errors = %v, want message for %q", errs, tt.field)
			}
		})
	}
}

func TestChannelFormRequiresPositiveChannel(t *testing.T) {
	f := ChannelForm{EnergyMeterID: 1, Channel: 0, ChannelName: "heating"}
	if errs := Struct(f); errs["channel"] == "" {
		t.Errorf("errors = %v, want message for channel", errs)
	}
	f.Channel = 1
	if errs := Struct(f); len(errs) != 0 {
		t.Errorf("valid channel rejected: %v", errs)
	}
}

func validReportForm(now time.Time) ReportForm {
	day := now.Format("2006-01-02")
	return ReportForm{FromDate: day, ToDate: day, IP: "10.0.0.1", Details: "hourly", Channel: "all"}
}

func TestReportFormValid(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if errs := validReportForm(now).Check(now); len(errs) != 0 {
		t.Errorf("valid report form rejected: %v", errs)
	}
}

func TestReportFormPastYearNeedsMonthly(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	f := validReportForm(now)
	f.FromDate = "2025-12-01"
	f.ToDate = "2025-12-31"

	for _, details := range []string{"hourly", "daily"} {
		f.Details = details
		if errs := f.Check(now); errs["details"] == "" {
			t.Errorf("details=%s with past-year range accepted, want rejection", details)
		}
	}

	f.Details = "monthly"
	if errs := f.Check(now); len(errs) != 0 {
		t.Errorf("monthly past-year range rejected: %v", errs)
	}
}

func TestReportFormInvertedRange(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	f := validReportForm(now)
	f.FromDate = "2026-08-20"
	f.ToDate = "2026-08-10"

	if errs := f.Check(now); errs["todate"] == "" {
		t.Errorf("inverted range accepted, errs = %v", errs)
	}
}

func TestReportFormSchemaErrors(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		mutate func(*ReportForm)
		field  string
	}{
		{"bad date format", func(f *ReportForm) { f.FromDate = "31/08/2026" }, "fromdate"},
		{"missing ip", func(f *ReportForm) { f.IP = "" }, "ip"},
		{"bad granularity", func(f *ReportForm) { f.Details = "weekly" }, "details"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validReportForm(now)
			tt.mutate(&f)
			errs := f.Check(now)
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("errors = %v, want message for %q", errs, tt.field)
			}
		})
	}
}
