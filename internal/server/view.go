package server

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/Integrity-Ltd/energymeter-admin/internal/domain"
)

type toast struct {
	Level   string // "success" or "error"
	Message string
}

func errToast(err error) *toast {
	return &toast{Level: "error", Message: err.Error()}
}

// toastFromQuery reads the toast a redirect carried over.
func toastFromQuery(c *fiber.Ctx) *toast {
	msg := c.Query("toast")
	if msg == "" {
		return nil
	}
	level := c.Query("level")
	if level != "error" {
		level = "success"
	}
	return &toast{Level: level, Message: msg}
}

func redirectWithToast(c *fiber.Ctx, path, level, msg string) error {
	q := url.Values{}
	q.Set("toast", msg)
	q.Set("level", level)
	return c.Redirect(path+"?"+q.Encode(), fiber.StatusSeeOther)
}

// pager is the prev/next navigation of a lazy table.
type pager struct {
	From, To, Total  int
	HasPrev, HasNext bool
	PrevURL, NextURL string
}

func newPager(st domain.LazyState, total int, base string) pager {
	p := pager{Total: total}
	if total > 0 && st.First < total {
		p.From = st.First + 1
		p.To = st.First + st.Rows
		if p.To > total {
			p.To = total
		}
	}
	if st.First > 0 {
		p.HasPrev = true
		p.PrevURL = base + "?" + st.WithFirst(st.First-st.Rows).Encode()
	}
	if st.First+st.Rows < total {
		p.HasNext = true
		p.NextURL = base + "?" + st.WithFirst(st.First+st.Rows).Encode()
	}
	return p
}

// sortURLs builds one header link per sortable column, preserving filter and
// flipping the order on the active column.
func sortURLs(st domain.LazyState, base string, fields ...string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = base + "?" + st.WithSort(f).Encode()
	}
	return out
}

// exportURL carries only the filter: an export always covers the whole
// filtered collection, not the visible page.
func exportURL(base string, st domain.LazyState) string {
	filtered := domain.LazyState{Filter: st.Filter}
	if q := filtered.Encode(); q != "" {
		return base + "?" + q
	}
	return base
}
