package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// hexRows bounds the dump of the selected node.
const hexRows = 16

type modelState int

const (
	stateBrowse modelState = iota
	stateJump
)

type interactiveModel struct {
	err      error
	cfg      Config
	styles   palette
	filename string
	data     []byte
	nodes    []node
	jump     textinput.Model
	offset   int
	selected int
	height   int
	showHex  bool
	loaded   bool
	state    modelState
}

func newInteractiveModel(filename string, offset int, cfg Config) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "offset: "
	ti.Placeholder = "decimal or 0x hex"
	ti.Width = 20
	return &interactiveModel{
		cfg:      cfg,
		styles:   newPalette(cfg.Color),
		filename: filename,
		offset:   offset,
		jump:     ti,
		height:   24,
	}
}

type loadedMsg struct {
	err    error
	data   []byte
	nodes  []node
	offset int
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load(m.offset)
}

func (m *interactiveModel) load(offset int) tea.Cmd {
	return func() tea.Msg {
		data, nodes, err := loadFile(m.filename, offset, m.cfg)
		return loadedMsg{err: err, data: data, nodes: nodes, offset: offset}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		m.data = msg.data
		m.nodes = msg.nodes
		m.offset = msg.offset
		m.selected = 0

	case tea.KeyMsg:
		if m.state == stateJump {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.nodes)-1 {
				m.selected++
			}

		case "n":
			m.selected = m.nextSibling()

		case "enter", "x":
			m.showHex = !m.showHex

		case "g":
			m.state = stateJump
			m.jump.SetValue("")
			m.jump.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m *interactiveModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.jump.Blur()
		return m, nil
	case "enter":
		m.state = stateBrowse
		m.jump.Blur()
		off, err := strconv.ParseInt(strings.TrimSpace(m.jump.Value()), 0, 64)
		if err != nil || off < 0 {
			m.err = fmt.Errorf("bad offset %q", m.jump.Value())
			return m, nil
		}
		return m, m.load(int(off))
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// nextSibling returns the next node at the selected depth or shallower.
func (m *interactiveModel) nextSibling() int {
	if len(m.nodes) == 0 {
		return 0
	}
	depth := m.nodes[m.selected].depth
	for i := m.selected + 1; i < len(m.nodes); i++ {
		if m.nodes[i].depth <= depth {
			return i
		}
	}
	return m.selected
}

func (m *interactiveModel) View() string {
	if !m.loaded {
		return "Loading values..."
	}
	s := m.styles

	var b strings.Builder
	b.WriteString(s.title.Render("zwinspect"))
	fmt.Fprintf(&b, " %s @%d, %d nodes\n\n", m.filename, m.offset, len(m.nodes))

	rows := max(m.height-8, 4)
	if m.showHex {
		rows = max(rows/2, 4)
	}
	first := max(0, m.selected-rows/2)
	last := min(len(m.nodes), first+rows)
	for i := first; i < last; i++ {
		line := s.line(m.nodes[i])
		if i == m.selected {
			line = s.sel.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if m.showHex && len(m.nodes) > 0 {
		n := m.nodes[m.selected]
		span := min(n.size, m.cfg.HexWidth*hexRows)
		b.WriteByte('\n')
		b.WriteString(s.hexRow.Render(hexdump(m.data[n.offset:n.offset+span], n.offset, m.cfg.HexWidth)))
	}
	if m.err != nil {
		b.WriteByte('\n')
		b.WriteString(s.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.state == stateJump {
		b.WriteString(m.jump.View())
		b.WriteByte('\n')
		b.WriteString(s.help.Render("enter jump • esc cancel"))
	} else {
		b.WriteString(s.help.Render("↑/↓ move • n next sibling • enter hex • g jump • q quit"))
	}
	return b.String()
}

func runInteractive(filename string, offset int, cfg Config) error {
	p := tea.NewProgram(newInteractiveModel(filename, offset, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
