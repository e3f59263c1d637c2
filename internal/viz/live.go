package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lbmsim/internal/analysis"
	"github.com/san-kum/lbmsim/internal/formula"
	"github.com/san-kum/lbmsim/internal/sim"
)

const (
	width           = 72
	height          = 18
	historyCapacity = 200
	maxStepsPerTick = 1024
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a simulation on every tick and plots one of its moments,
// with the exact solution when one is given.
type Model struct {
	sim          *sim.Simulation
	name         string
	field        string
	exact        *formula.Formula
	duration     float64
	stepsPerTick int

	width, height int
	running       bool
	done          bool
	err           error
	showHelp      bool
	massHistory   []float64
}

// NewModel checks that field is a moment of s. exact may be nil.
func NewModel(s *sim.Simulation, name, field string, exact *formula.Formula, duration float64) (Model, error) {
	if _, err := s.Moment(field); err != nil {
		return Model{}, err
	}
	return Model{
		sim:          s,
		name:         name,
		field:        field,
		exact:        exact,
		duration:     duration,
		stepsPerTick: 1,
		width:        width,
		height:       height,
		running:      true,
		massHistory:  make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = max(20, msg.Width-50)
		m.height = max(5, msg.Height-10)
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the simulation by stepsPerTick steps, stopping at the
// duration.
func (m *Model) step() {
	stop := m.duration - m.sim.Dt()/2
	for i := 0; i < m.stepsPerTick; i++ {
		if m.sim.T() >= stop {
			m.done = true
			break
		}
		if err := m.sim.OneTimeStep(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	if m.sim.T() >= stop {
		m.done = true
	}

	u, err := m.sim.Moment(m.field)
	if err != nil {
		m.err = err
		return
	}
	m.massHistory = append(m.massHistory, u.Sum()*m.sim.Domain().Dx)
	if len(m.massHistory) > historyCapacity {
		m.massHistory = m.massHistory[1:]
	}
}

func (m *Model) reset() {
	if err := m.sim.Reset(); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.done = false
	m.massHistory = m.massHistory[:0]
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done:
		return StatusPaused.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	u, _ := m.sim.Moment(m.field)
	series := [][]float64{u}
	legends := []string{m.field}

	var errLine string
	if m.exact != nil {
		ref, err := analysis.ExactSolution(m.exact, m.sim.T(), m.sim.X())
		if err == nil {
			series = append(series, ref)
			legends = append(legends, "exact")
			if rel, err := analysis.RelativeL2Error(u, ref); err == nil {
				errLine = fmt.Sprintf("%.3e", rel)
			}
		}
	}
	chart := chartStyle.Render(Plot(series, legends, fmt.Sprintf("%s at t=%.4f", m.field, m.sim.T()), m.width, m.height))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4f / %g", m.sim.T(), m.duration)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.sim.NT())) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d steps/frame", m.stepsPerTick)) + "\n")
	s.WriteString(labelStyle.Render("Max |"+m.field+"|") + valueStyle.Render(fmt.Sprintf("%.4f", u.MaxAbs())) + "\n")
	if len(m.massHistory) > 0 {
		s.WriteString(labelStyle.Render("Mass") + valueStyle.Render(fmt.Sprintf("%.6f", m.massHistory[len(m.massHistory)-1])) + "\n")
	}
	if errLine != "" {
		s.WriteString(labelStyle.Render("Rel. error") + valueStyle.Render(errLine) + "\n")
	}
	s.WriteString("\n" + ProgressBar(m.sim.T()/m.duration, 24) + "\n")
	s.WriteString(SparklineChart(m.massHistory, 24) + "\n")
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n+/-:Speed T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, chart, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
  Space  pause or resume
  R      reset to t=0
  +/-    double or halve steps per frame
  T      cycle themes
  Q      quit
` + "\n" + main
	}
	return main
}

// Run starts the live view in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
