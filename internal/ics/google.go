package ics

import (
	"net/url"
	"strings"

	"github.com/calshare/calshare/internal/entity"
)

const (
	googleRenderURL = "https://calendar.google.com/calendar/render"

	gcalDateLayout     = "20060102"
	gcalDateTimeLayout = "20060102T150405"
)

// GoogleCalendarLink builds an add-to-Google-Calendar URL for one event.
func GoogleCalendarLink(ev entity.Event) string {
	layout := gcalDateTimeLayout
	if ev.AllDay {
		layout = gcalDateLayout
	}
	dates := ev.Start.Format(layout) + "/" + ev.End.Format(layout)

	var b strings.Builder
	b.WriteString(googleRenderURL)
	b.WriteString("?action=TEMPLATE")
	b.WriteString("&text=" + url.QueryEscape(ev.Title))
	b.WriteString("&dates=" + dates)
	if ev.Description != "" {
		b.WriteString("&details=" + url.QueryEscape(ev.Description))
	}
	if ev.Location != "" {
		b.WriteString("&location=" + url.QueryEscape(ev.Location))
	}
	return b.String()
}
