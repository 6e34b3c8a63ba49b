package convert

import "github.com/Integrity-Ltd/energymeter-admin/internal/domain"

// Typed row-set builders for the three export actions. Column order mirrors
// the on-screen tables.

func MeterRows(meters []domain.EnergyMeter) ([]string, []Row) {
	columns := []string{"id", "asset_name", "ip_address", "port", "time_zone", "enabled"}
	rows := make([]Row, 0, len(meters))
	for _, m := range meters {
		rows = append(rows, Row{
			"id":         m.ID,
			"asset_name": m.AssetName,
			"ip_address": m.IPAddress,
			"port":       m.Port,
			"time_zone":  m.TimeZone,
			"enabled":    m.Enabled,
		})
	}
	return columns, rows
}

// ChannelRows joins each channel to its parent meter's asset name, keyed by
// energy_meter_id. Unknown parents render an empty asset name.
func ChannelRows(channels []domain.Channel, assetNames map[int64]string) ([]string, []Row) {
	columns := []string{"id", "energy_meter", "channel", "channel_name", "enabled"}
	rows := make([]Row, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, Row{
			"id":           ch.ID,
			"energy_meter": assetNames[ch.EnergyMeterID],
			"channel":      ch.Channel,
			"channel_name": ch.ChannelName,
			"enabled":      ch.Enabled,
		})
	}
	return columns, rows
}

func ReportRows(report []domain.ReportRow) ([]string, []Row) {
	columns := []string{
		"from_local_time", "to_local_time", "from_utc_time", "to_utc_time",
		"channel", "measured_value", "diff",
	}
	rows := make([]Row, 0, len(report))
	for _, r := range report {
		rows = append(rows, Row{
			"from_local_time": r.FromLocalTime,
			"to_local_time":   r.ToLocalTime,
			"from_utc_time":   r.FromUTCTime,
			"to_utc_time":     r.ToUTCTime,
			"channel":         r.Channel,
			"measured_value":  r.MeasuredValue,
			"diff":            r.Diff,
		})
	}
	return columns, rows
}
