// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/boxoffice/lib/service"
)

// ANSI 256-color codes.
const (
	colorError  = lipgloss.Color("203")
	colorBanner = lipgloss.Color("244")
	colorPrompt = lipgloss.Color("75")
	colorNotice = lipgloss.Color("179")
)

// renderer styles server responses for the terminal. Styling changes
// only escape sequences; the visible text is the server's message.
type renderer struct {
	errorStyle  lipgloss.Style
	bannerStyle lipgloss.Style
	promptStyle lipgloss.Style
	noticeStyle lipgloss.Style
}

// newRenderer builds styles for output written to w. With color
// disabled every style renders plain text.
func newRenderer(w io.Writer, color bool) *renderer {
	lipRenderer := lipgloss.NewRenderer(w)
	if !color {
		lipRenderer.SetColorProfile(termenv.Ascii)
	}
	return newRendererWith(lipRenderer)
}

func newRendererWith(lipRenderer *lipgloss.Renderer) *renderer {
	return &renderer{
		errorStyle:  lipRenderer.NewStyle().Foreground(colorError).Bold(true),
		bannerStyle: lipRenderer.NewStyle().Foreground(colorBanner),
		promptStyle: lipRenderer.NewStyle().Foreground(colorPrompt),
		noticeStyle: lipRenderer.NewStyle().Foreground(colorNotice),
	}
}

// response renders one server response, ending in a newline.
func (r *renderer) response(response service.Response) string {
	if response.Kind == service.ResponseError || !response.OK {
		return r.errorStyle.Render("error: "+response.Message) + "\n"
	}
	var builder strings.Builder
	for line := range strings.Lines(response.Message) {
		builder.WriteString(r.line(strings.TrimSuffix(line, "\n")))
		builder.WriteByte('\n')
	}
	return builder.String()
}

// line styles script banners and per-line errors inside a result.
func (r *renderer) line(text string) string {
	switch {
	case strings.HasPrefix(text, "=== "), strings.HasPrefix(text, "--- "):
		return r.bannerStyle.Render(text)
	case strings.HasPrefix(text, "error: "):
		return r.errorStyle.Render(text)
	default:
		return text
	}
}

func (r *renderer) prompt(text string) string {
	return r.promptStyle.Render(text)
}

func (r *renderer) notice(text string) string {
	return r.noticeStyle.Render(text) + "\n"
}

func (r *renderer) failure(text string) string {
	return r.errorStyle.Render("error: "+text) + "\n"
}
