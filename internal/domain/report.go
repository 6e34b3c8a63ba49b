package domain

import "net/url"

// Report granularities accepted by the measurements endpoint.
const (
	DetailsHourly  = "hourly"
	DetailsDaily   = "daily"
	DetailsMonthly = "monthly"
)

// ChannelAll selects every channel of the device in a report query.
const ChannelAll = "all"

// ReportQuery is one measurement-report request. Dates are YYYY-MM-DD.
type ReportQuery struct {
	FromDate string
	ToDate   string
	IP       string
	Details  string
	Channel  string
}

func (q ReportQuery) Values() url.Values {
	params := url.Values{}
	params.Set("fromdate", q.FromDate)
	params.Set("todate", q.ToDate)
	params.Set("ip", q.IP)
	params.Set("details", q.Details)
	if q.Channel != "" && q.Channel != ChannelAll {
		params.Set("channel", q.Channel)
	}
	return params
}
