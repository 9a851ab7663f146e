package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netposter/pkg/pipeline"
)

const (
	barWidth     = 36
	recentFrames = 6
)

var (
	barDoneStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barTodoStyle = lipgloss.NewStyle().Foreground(colorDim)
)

type frameMsg pipeline.Frame

type framesDoneMsg struct{ err error }

// framesModel is the bubbletea view of a running frame batch.
type framesModel struct {
	total   int
	outDir  string
	done    int
	failed  int
	cached  int
	recent  []pipeline.Frame
	started time.Time
	elapsed time.Duration

	cancel    func()
	cancelled bool
	finished  bool
	err       error
}

func newFramesModel(total int, outDir string, cancel func()) framesModel {
	return framesModel{total: total, outDir: outDir, cancel: cancel, started: time.Now()}
}

func (m framesModel) Init() tea.Cmd {
	return nil
}

func (m framesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case frameMsg:
		f := pipeline.Frame(msg)
		m.done++
		if f.Err != nil {
			m.failed++
		}
		if f.CacheHit {
			m.cached++
		}
		m.recent = append(m.recent, f)
		if len(m.recent) > recentFrames {
			m.recent = m.recent[len(m.recent)-recentFrames:]
		}
		m.elapsed = time.Since(m.started)
	case framesDoneMsg:
		m.finished = true
		m.err = msg.err
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}
	return m, nil
}

func (m framesModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Rendering frames"))
	b.WriteString(StyleDim.Render("  → " + m.outDir))
	b.WriteString("\n\n")

	b.WriteString(progressBar(m.done, m.total, barWidth))
	fmt.Fprintf(&b, "  %s/%d", StyleNumber.Render(fmt.Sprint(m.done)), m.total)
	if m.cached > 0 {
		b.WriteString(StyleDim.Render(" · ") + styleCached.Render(fmt.Sprintf("%d cached", m.cached)))
	}
	if m.failed > 0 {
		b.WriteString(StyleDim.Render(" · ") + styleIconError.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteString("\n\n")

	for _, f := range m.recent {
		name := filepath.Base(f.Input)
		switch {
		case f.Err != nil:
			fmt.Fprintf(&b, "%s %s %s\n", styleIconError.Render(iconError), name, StyleDim.Render(f.Err.Error()))
		case f.CacheHit:
			fmt.Fprintf(&b, "%s %s %s\n", styleIconSuccess.Render(iconSuccess), name, styleCached.Render(iconCached))
		default:
			fmt.Fprintf(&b, "%s %s %s\n", styleIconSuccess.Render(iconSuccess), name, StyleDim.Render(f.Duration.Round(time.Millisecond).String()))
		}
	}

	if m.finished {
		fmt.Fprintf(&b, "\n%s\n", StyleDim.Render("done in "+m.elapsed.Round(time.Millisecond).String()))
	} else {
		b.WriteString("\n" + StyleDim.Render("q quit") + "\n")
	}
	return b.String()
}

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return barDoneStyle.Render(strings.Repeat("█", filled)) + barTodoStyle.Render(strings.Repeat("░", width-filled))
}
