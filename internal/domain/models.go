package domain

import "strconv"

type EnergyMeter struct {
	ID        int64  `json:"id"`
	AssetName string `json:"asset_name"`
	IPAddress string `json:"ip_address"`
	Port      int    `json:"port"`
	TimeZone  string `json:"time_zone"`
	Enabled   bool   `json:"enabled"`
}

type Channel struct {
	ID            int64  `json:"id"`
	EnergyMeterID int64  `json:"energy_meter_id"`
	Channel       int    `json:"channel"`
	ChannelName   string `json:"channel_name"`
	Enabled       bool   `json:"enabled"`
}

// ReportRow is one aggregation bucket returned by the measurements report
// endpoint. Local times are in the meter's configured time zone.
type ReportRow struct {
	FromLocalTime string  `json:"from_local_time"`
	ToLocalTime   string  `json:"to_local_time"`
	FromUTCTime   string  `json:"from_utc_time"`
	ToUTCTime     string  `json:"to_utc_time"`
	Channel       int     `json:"channel"`
	MeasuredValue float64 `json:"measured_value"`
	Diff          float64 `json:"diff"`
}

func (c Channel) MeterKey() string {
	return strconv.FormatInt(c.EnergyMeterID, 10)
}
