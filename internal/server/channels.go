package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Integrity-Ltd/energymeter-admin/internal/config"
	"github.com/Integrity-Ltd/energymeter-admin/internal/convert"
	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
	"github.com/Integrity-Ltd/energymeter-admin/internal/validate"
)

var channelFilterFields = []string{"channel_name"}

// channelRow joins a channel to its parent meter's asset name for display.
// The backend keeps them in separate collections, so the join happens here.
type channelRow struct {
	domain.Channel
	AssetName string
}

func (s *Server) assetNames(c *fiber.Ctx) (map[int64]string, error) {
	meters, err := s.api.ListEnergyMeters(c.UserContext(), domain.LazyState{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(meters))
	for _, m := range meters {
		names[m.ID] = m.AssetName
	}
	return names, nil
}

func (s *Server) handleChannelList(c *fiber.Ctx) error {
	ctx := c.UserContext()
	st := domain.ParseLazyState(queryValues(c), config.PageSize(), channelFilterFields...)
	t := toastFromQuery(c)

	channels, err := s.api.ListChannels(ctx, st)
	total := 0
	var names map[int64]string
	if err == nil {
		total, err = s.api.CountChannels(ctx, st.Filter)
	}
	if err == nil {
		names, err = s.assetNames(c)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("channel list fetch failed")
		t = errToast(err)
		channels = nil
		total = 0
	}

	rows := make([]channelRow, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, channelRow{Channel: ch, AssetName: names[ch.EnergyMeterID]})
	}

	return c.Render("templates/channels", fiber.Map{
		"Title":     "Channels",
		"Active":    "channels",
		"Toast":     t,
		"Rows":      rows,
		"State":     st,
		"Pager":     newPager(st, total, "/channels"),
		"SortURL":   sortURLs(st, "/channels", "id", "channel", "channel_name"),
		"ExportURL": exportURL("/channels/export.csv", st),
	})
}

type channelFormView struct {
	ID            int64
	EnergyMeterID int64
	Channel       int
	ChannelName   string
	Enabled       bool
	Edit          bool
}

func (s *Server) renderChannelForm(c *fiber.Ctx, view channelFormView, errs map[string]string, t *toast) error {
	meters, err := s.api.ListEnergyMeters(c.UserContext(), domain.LazyState{})
	if err != nil && t == nil {
		t = errToast(err)
	}
	title := "New channel"
	if view.Edit {
		title = "Edit channel"
	}
	return c.Render("templates/channel_form", fiber.Map{
		"Title":  title,
		"Active": "channels",
		"Toast":  t,
		"Form":   view,
		"Errors": errs,
		"Meters": meters,
	})
}

func (s *Server) handleChannelNew(c *fiber.Ctx) error {
	return s.renderChannelForm(c, channelFormView{Channel: 1, Enabled: true}, nil, nil)
}

func (s *Server) handleChannelCreate(c *fiber.Ctx) error {
	var f validate.ChannelForm
	if err := c.BodyParser(&f); err != nil {
		return s.renderChannelForm(c, channelFormView{}, nil, errToast(err))
	}
	view := channelFormView{
		EnergyMeterID: f.EnergyMeterID,
		Channel:       f.Channel,
		ChannelName:   f.ChannelName,
		Enabled:       f.Enabled,
	}
	if errs := validate.Struct(f); len(errs) > 0 {
		return s.renderChannelForm(c, view, errs, &toast{Level: "error", Message: "please fix the highlighted fields"})
	}

	ch := &domain.Channel{
		EnergyMeterID: f.EnergyMeterID,
		Channel:       f.Channel,
		ChannelName:   f.ChannelName,
		Enabled:       f.Enabled,
	}
	if err := s.api.CreateChannel(c.UserContext(), ch); err != nil {
		s.log.Error().Err(err).Msg("channel create failed")
		return s.renderChannelForm(c, view, nil, errToast(err))
	}
	return redirectWithToast(c, "/channels", "success", "channel created")
}

func (s *Server) handleChannelEdit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ch, err := s.api.GetChannel(c.UserContext(), id)
	if err != nil {
		return redirectWithToast(c, "/channels", "error", err.Error())
	}
	return s.renderChannelForm(c, channelFormView{
		ID:            ch.ID,
		EnergyMeterID: ch.EnergyMeterID,
		Channel:       ch.Channel,
		ChannelName:   ch.ChannelName,
		Enabled:       ch.Enabled,
		Edit:          true,
	}, nil, nil)
}

func (s *Server) handleChannelUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var f validate.ChannelForm
	if err := c.BodyParser(&f); err != nil {
		return redirectWithToast(c, "/channels", "error", err.Error())
	}
	view := channelFormView{
		ID:            id,
		EnergyMeterID: f.EnergyMeterID,
		Channel:       f.Channel,
		ChannelName:   f.ChannelName,
		Enabled:       f.Enabled,
		Edit:          true,
	}
	if errs := validate.Struct(f); len(errs) > 0 {
		return s.renderChannelForm(c, view, errs, &toast{Level: "error", Message: "please fix the highlighted fields"})
	}

	ch := &domain.Channel{
		ID:            id,
		EnergyMeterID: f.EnergyMeterID,
		Channel:       f.Channel,
		ChannelName:   f.ChannelName,
		Enabled:       f.Enabled,
	}
	if err := s.api.UpdateChannel(c.UserContext(), id, ch); err != nil {
		s.log.Error().Err(err).Msg("channel update failed")
		return s.renderChannelForm(c, view, nil, errToast(err))
	}
	return redirectWithToast(c, "/channels", "success", "channel updated")
}

func (s *Server) handleChannelDeleteConfirm(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ch, err := s.api.GetChannel(c.UserContext(), id)
	if err != nil {
		return redirectWithToast(c, "/channels", "error", err.Error())
	}
	names, err := s.assetNames(c)
	if err != nil {
		names = nil
	}
	return c.Render("templates/channel_delete", fiber.Map{
		"Title":     "Delete channel",
		"Active":    "channels",
		"Channel":   ch,
		"AssetName": names[ch.EnergyMeterID],
	})
}

func (s *Server) handleChannelDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := s.api.DeleteChannel(c.UserContext(), id); err != nil {
		s.log.Error().Err(err).Msg("channel delete failed")
		return redirectWithToast(c, "/channels", "error", err.Error())
	}
	return redirectWithToast(c, "/channels", "success", "channel deleted")
}

func (s *Server) handleChannelExport(c *fiber.Ctx) error {
	st := domain.ParseLazyState(queryValues(c), 0, channelFilterFields...)
	channels, err := s.api.ListChannels(c.UserContext(), domain.LazyState{Filter: st.Filter})
	if err != nil {
		return redirectWithToast(c, "/channels", "error", err.Error())
	}
	names, err := s.assetNames(c)
	if err != nil {
		return redirectWithToast(c, "/channels", "error", err.Error())
	}
	columns, rows := convert.ChannelRows(channels, names)
	text, err := convert.ToCSVColumns(columns, rows)
	if err != nil {
		return redirectWithToast(c, "/channels", "error", "nothing to export")
	}
	return sendCSV(c, "channels.csv", text)
}
