package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Integrity-Ltd/energymeter-admin/internal/api"
	"github.com/Integrity-Ltd/energymeter-admin/internal/convert"
	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
	"github.com/Integrity-Ltd/energymeter-admin/internal/validate"
)

func reportDefaults(f *validate.ReportForm) {
	today := time.Now().Format("2006-01-02")
	if f.FromDate == "" {
		f.FromDate = today
	}
	if f.ToDate == "" {
		f.ToDate = today
	}
	if f.Details == "" {
		f.Details = domain.DetailsHourly
	}
	if f.Channel == "" {
		f.Channel = domain.ChannelAll
	}
}

// handleReport serves the home page. The form submits as a GET: changing the
// device re-submits without the run flag to refresh the channel dropdown,
// the Run button adds run=1 and executes the query.
func (s *Server) handleReport(c *fiber.Ctx) error {
	ctx := c.UserContext()
	t := toastFromQuery(c)

	var f validate.ReportForm
	if err := c.QueryParser(&f); err != nil {
		t = errToast(err)
	}
	reportDefaults(&f)

	meters, err := s.api.ListEnergyMeters(ctx, domain.LazyState{})
	if err != nil {
		s.log.Error().Err(err).Msg("device list fetch failed")
		t = errToast(err)
	}

	// Dependent field: the channel dropdown follows the selected device.
	var channels []domain.Channel
	if selected := meterByIP(meters, f.IP); selected != nil {
		channels, err = s.api.ChannelsOfMeter(ctx, selected.ID)
		if err != nil {
			s.log.Error().Err(err).Msg("channel list fetch failed")
			t = errToast(err)
			channels = nil
		}
	}

	var rows []domain.ReportRow
	var errs map[string]string
	if c.Query("run") == "1" {
		rows, errs, t = s.runReport(c, f, t)
	}

	return c.Render("templates/report", fiber.Map{
		"Title":     "Measurements report",
		"Active":    "report",
		"Toast":     t,
		"Form":      f,
		"Errors":    errs,
		"Meters":    meters,
		"Channels":  channels,
		"Rows":      rows,
		"ExportURL": "/report/export.csv?" + f.Query().Values().Encode(),
	})
}

func (s *Server) runReport(c *fiber.Ctx, f validate.ReportForm, t *toast) ([]domain.ReportRow, map[string]string, *toast) {
	if errs := f.Check(time.Now()); len(errs) > 0 {
		return nil, errs, &toast{Level: "error", Message: firstMessage(errs)}
	}
	rows, err := s.api.Report(c.UserContext(), f.Query())
	if err != nil {
		var be *api.BackendError
		if errors.As(err, &be) {
			s.log.Warn().Str("err", be.Message).Msg("report rejected by backend")
		} else {
			s.log.Error().Err(err).Msg("report fetch failed")
		}
		return nil, nil, errToast(err)
	}
	if t == nil && len(rows) == 0 {
		t = &toast{Level: "success", Message: "no measurements in the selected range"}
	}
	return rows, nil, t
}

func (s *Server) handleReportExport(c *fiber.Ctx) error {
	var f validate.ReportForm
	if err := c.QueryParser(&f); err != nil {
		return redirectWithToast(c, "/", "error", err.Error())
	}
	reportDefaults(&f)
	if errs := f.Check(time.Now()); len(errs) > 0 {
		return redirectWithToast(c, "/", "error", firstMessage(errs))
	}
	rows, err := s.api.Report(c.UserContext(), f.Query())
	if err != nil {
		return redirectWithToast(c, "/", "error", err.Error())
	}
	columns, csvRows := convert.ReportRows(rows)
	text, err := convert.ToCSVColumns(columns, csvRows)
	if err != nil {
		return redirectWithToast(c, "/", "error", "nothing to export")
	}
	return sendCSV(c, "report.csv", text)
}

func meterByIP(meters []domain.EnergyMeter, ip string) *domain.EnergyMeter {
	if ip == "" {
		return nil
	}
	for i := range meters {
		if meters[i].IPAddress == ip {
			return &meters[i]
		}
	}
	return nil
}

func firstMessage(errs map[string]string) string {
	for field, msg := range errs {
		return field + ": " + msg
	}
	return "invalid input"
}
