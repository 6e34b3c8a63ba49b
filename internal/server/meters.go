package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Integrity-Ltd/energymeter-admin/internal/config"
	"github.com/Integrity-Ltd/energymeter-admin/internal/convert"
	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
	"github.com/Integrity-Ltd/energymeter-admin/internal/validate"
)

var meterFilterFields = []string{"asset_name", "ip_address"}

func (s *Server) handleMeterList(c *fiber.Ctx) error {
	ctx := c.UserContext()
	st := domain.ParseLazyState(queryValues(c), config.PageSize(), meterFilterFields...)
	t := toastFromQuery(c)

	meters, err := s.api.ListEnergyMeters(ctx, st)
	total := 0
	if err == nil {
		total, err = s.api.CountEnergyMeters(ctx, st.Filter)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("energy meter list fetch failed")
		t = errToast(err)
		meters = nil
		total = 0
	}

	return c.Render("templates/meters", fiber.Map{
		"Title":     "Energy meters",
		"Active":    "meters",
		"Toast":     t,
		"Meters":    meters,
		"State":     st,
		"Pager":     newPager(st, total, "/energymeter"),
		"SortURL":   sortURLs(st, "/energymeter", "id", "asset_name", "ip_address", "port"),
		"ExportURL": exportURL("/energymeter/export.csv", st),
	})
}

// meterFormView feeds the create/edit form template. In edit mode the IP and
// port come from the stored row and render disabled.
type meterFormView struct {
	ID        int64
	AssetName string
	IPAddress string
	Port      int
	TimeZone  string
	Enabled   bool
	Edit      bool
}

func (s *Server) renderMeterForm(c *fiber.Ctx, view meterFormView, errs map[string]string, t *toast) error {
	title := "New energy meter"
	if view.Edit {
		title = "Edit energy meter"
	}
	return c.Render("templates/meter_form", fiber.Map{
		"Title":  title,
		"Active": "meters",
		"Toast":  t,
		"Form":   view,
		"Errors": errs,
	})
}

func (s *Server) handleMeterNew(c *fiber.Ctx) error {
	return s.renderMeterForm(c, meterFormView{Enabled: true}, nil, nil)
}

func (s *Server) handleMeterCreate(c *fiber.Ctx) error {
	var f validate.MeterForm
	if err := c.BodyParser(&f); err != nil {
		return s.renderMeterForm(c, meterFormView{}, nil, errToast(err))
	}
	view := meterFormView{
		AssetName: f.AssetName,
		IPAddress: f.IPAddress,
		Port:      f.Port,
		TimeZone:  f.TimeZone,
		Enabled:   f.Enabled,
	}
	if errs := validate.Struct(f); len(errs) > 0 {
		return s.renderMeterForm(c, view, errs, &toast{Level: "error", Message: "please fix the highlighted fields"})
	}

	m := &domain.EnergyMeter{
		AssetName: f.AssetName,
		IPAddress: f.IPAddress,
		Port:      f.Port,
		TimeZone:  f.TimeZone,
		Enabled:   f.Enabled,
	}
	if err := s.api.CreateEnergyMeter(c.UserContext(), m); err != nil {
		s.log.Error().Err(err).Msg("energy meter create failed")
		return s.renderMeterForm(c, view, nil, errToast(err))
	}
	return redirectWithToast(c, "/energymeter", "success", "energy meter created")
}

func (s *Server) handleMeterEdit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := s.api.GetEnergyMeter(c.UserContext(), id)
	if err != nil {
		return redirectWithToast(c, "/energymeter", "error", err.Error())
	}
	return s.renderMeterForm(c, meterFormView{
		ID:        m.ID,
		AssetName: m.AssetName,
		IPAddress: m.IPAddress,
		Port:      m.Port,
		TimeZone:  m.TimeZone,
		Enabled:   m.Enabled,
		Edit:      true,
	}, nil, nil)
}

func (s *Server) handleMeterUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	m, err := s.api.GetEnergyMeter(ctx, id)
	if err != nil {
		return redirectWithToast(c, "/energymeter", "error", err.Error())
	}

	var f validate.MeterEditForm
	if err := c.BodyParser(&f); err != nil {
		return redirectWithToast(c, "/energymeter", "error", err.Error())
	}
	view := meterFormView{
		ID:        m.ID,
		AssetName: f.AssetName,
		IPAddress: m.IPAddress,
		Port:      m.Port,
		TimeZone:  f.TimeZone,
		Enabled:   f.Enabled,
		Edit:      true,
	}
	if errs := validate.Struct(f); len(errs) > 0 {
		return s.renderMeterForm(c, view, errs, &toast{Level: "error", Message: "please fix the highlighted fields"})
	}

	m.AssetName = f.AssetName
	m.TimeZone = f.TimeZone
	m.Enabled = f.Enabled
	if err := s.api.UpdateEnergyMeter(ctx, id, m); err != nil {
		s.log.Error().Err(err).Msg("energy meter update failed")
		return s.renderMeterForm(c, view, nil, errToast(err))
	}
	return redirectWithToast(c, "/energymeter", "success", "energy meter updated")
}

func (s *Server) handleMeterDeleteConfirm(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := s.api.GetEnergyMeter(c.UserContext(), id)
	if err != nil {
		return redirectWithToast(c, "/energymeter", "error", err.Error())
	}
	return c.Render("templates/meter_delete", fiber.Map{
		"Title":  "Delete energy meter",
		"Active": "meters",
		"Meter":  m,
	})
}

func (s *Server) handleMeterDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := s.api.DeleteEnergyMeter(c.UserContext(), id); err != nil {
		s.log.Error().Err(err).Msg("energy meter delete failed")
		return redirectWithToast(c, "/energymeter", "error", err.Error())
	}
	return redirectWithToast(c, "/energymeter", "success", "energy meter deleted")
}

func (s *Server) handleMeterExport(c *fiber.Ctx) error {
	st := domain.ParseLazyState(queryValues(c), 0, meterFilterFields...)
	meters, err := s.api.ListEnergyMeters(c.UserContext(), domain.LazyState{Filter: st.Filter})
	if err != nil {
		return redirectWithToast(c, "/energymeter", "error", err.Error())
	}
	columns, rows := convert.MeterRows(meters)
	text, err := convert.ToCSVColumns(columns, rows)
	if err != nil {
		return redirectWithToast(c, "/energymeter", "error", "nothing to export")
	}
	return sendCSV(c, "energy_meter.csv", text)
}

func sendCSV(c *fiber.Ctx, filename, text string) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendString(text)
}
