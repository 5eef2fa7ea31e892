package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jsphp/internal/driver"
)

// fileState is where one file is in the scan.
type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateCache
	stateLexing
	stateDone
	stateCached
	stateFailed
)

var stateNames = [...]string{"queued", "loading", "cache", "lexing", "done", "cached", "error"}

func (s fileState) String() string { return stateNames[s] }

func (s fileState) finished() bool { return s >= stateDone }

// weight is the share of a file's work that is complete in this state.
func (s fileState) weight() float64 {
	switch s {
	case stateLoading:
		return 0.1
	case stateCache:
		return 0.3
	case stateLexing:
		return 0.5
	case stateDone, stateCached, stateFailed:
		return 1
	}
	return 0
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	stateStyle = map[fileState]lipgloss.Style{
		stateQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		stateLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateCache:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateLexing:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		stateCached:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		stateFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

const stateColumn = 8

type fileRow struct {
	path    string
	state   fileState
	tokens  int
	elapsed time.Duration
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	phase   string // run-wide stage, from events without a file
	tokens  int
	width   int
	done    bool
}

type eventMsg driver.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one row per file
// with its state and token count. The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = stateStyle[stateLexing]

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, path := range files {
		m.rows[i] = fileRow{path: path}
		m.byPath[path] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	}
	return m, nil
}

func stateOf(ev driver.Event) (fileState, bool) {
	switch ev.Status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusError:
		return stateFailed, true
	case driver.StatusDone:
		if ev.Cached {
			return stateCached, true
		}
		return stateDone, true
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageCache:
			return stateCache, true
		case driver.StageLex:
			return stateLexing, true
		}
	}
	return 0, false
}

// applyEvent updates the row of ev.File and returns the bar animation.
func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	st, ok := stateOf(ev)
	if !ok {
		return nil
	}
	if ev.File == "" {
		m.phase = st.String()
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.state = st
	if st.finished() {
		row.elapsed = ev.Elapsed
		m.tokens += ev.Tokens - row.tokens
		row.tokens = ev.Tokens
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.state.weight()
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.state.finished() {
			finished++
		}
		if r.state == stateFailed {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) header() string {
	finished, failed := m.counts()
	var b strings.Builder
	if m.done {
		b.WriteString("done: ")
	} else {
		b.WriteString(m.spinner.View() + " ")
	}
	fmt.Fprintf(&b, "%s %d/%d, %d tokens", m.title, finished, len(m.rows), m.tokens)
	if failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}
	if m.phase != "" && !m.done {
		fmt.Fprintf(&b, " (%s)", m.phase)
	}
	return titleStyle.Render(b.String())
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	nameWidth := max(m.width-stateColumn-24, 20)
	for _, r := range m.rows {
		label := stateStyle[r.state].Render(fmt.Sprintf("%*s", stateColumn, r.state))
		fmt.Fprintf(&b, "  %s %s", label, truncate(r.path, nameWidth))
		if r.state.finished() && r.state != stateFailed {
			fmt.Fprintf(&b, "  %d tok", r.tokens)
		}
		if r.elapsed > 0 {
			fmt.Fprintf(&b, "  %s", r.elapsed.Round(time.Microsecond))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens value to width display cells, keeping the start of the path.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
