package validate

import (
	"time"

	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
)

// MeterForm is the create schema for an energy meter.
type MeterForm struct {
	AssetName string `form:"asset_name" validate:"required"`
	IPAddress string `form:"ip_address" validate:"required,ipv4"`
	Port      int    `form:"port" validate:"required,min=1,max=65535"`
	TimeZone  string `form:"time_zone" validate:"required,iana_tz"`
	Enabled   bool   `form:"enabled"`
}

// MeterEditForm is the update schema. IP address and port are immutable
// after creation and so are absent here.
type MeterEditForm struct {
	AssetName string `form:"asset_name" validate:"required"`
	TimeZone  string `form:"time_zone" validate:"required,iana_tz"`
	Enabled   bool   `form:"enabled"`
}

// ChannelForm is the create/update schema for a measurement channel.
type ChannelForm struct {
	EnergyMeterID int64  `form:"energy_meter_id" validate:"required,min=1"`
	Channel       int    `form:"channel" validate:"required,min=1"`
	ChannelName   string `form:"channel_name" validate:"required"`
	Enabled       bool   `form:"enabled"`
}

// ReportForm is the measurement report query schema. It travels in the query
// string, so the page can be bookmarked and the CSV export can replay it.
type ReportForm struct {
	FromDate string `form:"fromdate" query:"fromdate" validate:"required,datetime=2006-01-02"`
	ToDate   string `form:"todate" query:"todate" validate:"required,datetime=2006-01-02"`
	IP       string `form:"ip" query:"ip" validate:"required,ipv4"`
	Details  string `form:"details" query:"details" validate:"required,oneof=hourly daily monthly"`
	Channel  string `form:"channel" query:"channel" validate:"omitempty"`
}

// Check runs the schema plus the report page's business rules: the range must
// not be inverted, and a range starting before the current year is only
// allowed at monthly granularity.
func (f ReportForm) Check(now time.Time) map[string]string {
	if errs := Struct(f); len(errs) > 0 {
		return errs
	}
	from, _ := time.Parse("2006-01-02", f.FromDate)
	to, _ := time.Parse("2006-01-02", f.ToDate)
	if to.Before(from) {
		return map[string]string{"todate": "must not be before the start date"}
	}
	if from.Year() < now.Year() && f.Details != domain.DetailsMonthly {
		return map[string]string{"details": "ranges before the current year are only available monthly"}
	}
	return nil
}

// Query converts a checked form to the backend query.
func (f ReportForm) Query() domain.ReportQuery {
	return domain.ReportQuery{
		FromDate: f.FromDate,
		ToDate:   f.ToDate,
		IP:       f.IP,
		Details:  f.Details,
		Channel:  f.Channel,
	}
}
