// Package viz renders a running scene in the terminal: joint position
// traces plotted live, with per-pair tracking status.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/jointsim/internal/scene"
)

const historyCapacity = 240

type TickMsg time.Time

// Model drives the scene in real time from bubbletea's event loop.
type Model struct {
	sc            *scene.Scene
	joints        []string
	history       map[string][]float64
	fps           int
	stepsPerFrame int
	paused        bool
}

// NewModel prepares a live view tracing the given joints. The scene is
// stepped stepsPerFrame times per rendered frame so simulated time tracks
// wall time.
func NewModel(sc *scene.Scene, joints []string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	stepsPerFrame := int(1.0 / (float64(fps) * sc.World.Dt()))
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}

	history := make(map[string][]float64, len(joints))
	for _, name := range joints {
		history[name] = make([]float64, 0, historyCapacity)
	}

	return Model{
		sc:            sc,
		joints:        joints,
		history:       history,
		fps:           fps,
		stepsPerFrame: stepsPerFrame,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}

	case TickMsg:
		if !m.paused {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.sc.World.Step()
			}
			m.record()
		}
		return m, m.tick()
	}

	return m, nil
}

func (m *Model) record() {
	model := m.sc.World.Model()
	for _, name := range m.joints {
		j, ok := model.Joint(name)
		if !ok {
			continue
		}
		h := append(m.history[name], j.Position())
		if len(h) > historyCapacity {
			h = h[1:]
		}
		m.history[name] = h
	}
}

func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s  t=%.2fs", m.sc.Config.Name, m.sc.World.Time())
	if m.paused {
		title += "  [paused]"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	series := make([][]float64, 0, len(m.joints))
	legends := make([]string, 0, len(m.joints))
	for _, name := range m.joints {
		if len(m.history[name]) >= 2 {
			series = append(series, m.history[name])
			legends = append(legends, name)
		}
	}

	if len(series) > 0 {
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(14),
			asciigraph.Width(70),
			asciigraph.SeriesLegends(legends...),
			asciigraph.Caption("joint positions"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	for _, p := range m.sc.Pairs {
		d := p.Controller.Diagnostics()
		status := fmt.Sprintf("%-28s target=%8.4f  error=%8.4f", p.Name, d.Target, d.Error)
		if d.Commanded {
			status += fmt.Sprintf("  command=%8.4f", d.Command)
		} else {
			status += "  (in deadband)"
		}
		b.WriteString(statusStyle.Render(status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause · q quit"))
	return b.String()
}

// RunLive blocks running the live view until the user quits.
func RunLive(sc *scene.Scene, joints []string, fps int) error {
	p := tea.NewProgram(NewModel(sc, joints, fps))
	_, err := p.Run()
	return err
}
