package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	title  lipgloss.Style
	label  lipgloss.Style
	kind   lipgloss.Style
	pos    lipgloss.Style
	value  lipgloss.Style
	sel    lipgloss.Style
	err    lipgloss.Style
	help   lipgloss.Style
	hexRow lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return palette{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		kind:  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		pos:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		value: lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		sel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		hexRow: lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
	}
}

// line renders n as "label kind @offset+size value".
func (p palette) line(n node) string {
	return strings.Repeat("  ", n.depth) +
		p.label.Render(n.label) + " " +
		p.kind.Render(n.kind.String()) + " " +
		p.pos.Render(fmt.Sprintf("@%d+%d", n.offset, n.size)) + " " +
		p.value.Render(n.text)
}

func printTree(w io.Writer, nodes []node, p palette) error {
	for _, n := range nodes {
		if _, err := fmt.Fprintln(w, p.line(n)); err != nil {
			return err
		}
	}
	return nil
}
