package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"petprogress/internal/engine"
	"petprogress/internal/storage"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	dayKey string
	pet    storage.PetState
	tasks  []engine.MaterializedTask

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	dayKey string
	pet    storage.PetState
	tasks  []engine.MaterializedTask
	err    error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

type snoozedMsg struct {
	res *engine.SnoozeResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		tasks, dayKey, err := m.svc.ListToday()
		if err != nil {
			return loadedMsg{err: err}
		}
		state, _, err := m.svc.Snapshot()
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{dayKey: dayKey, pet: state.Pet, tasks: tasks}
	}
}

func (m boardModel) completeCmd(id, dayKey string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id, dayKey)
		// A journal failure after a successful save is not a failed
		// completion; the board just shows the applied result.
		var jerr engine.JournalError
		if errors.As(err, &jerr) {
			err = nil
		}
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) snoozeCmd(id, dayKey string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.SnoozeTask(m.ctx, id, dayKey, 0)
		return snoozedMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.dayKey = msg.dayKey
		m.pet = msg.pet
		m.tasks = msg.tasks
		if m.selected >= len(m.tasks) {
			m.selected = len(m.tasks) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.res.Applied {
			m.lastLog = "Nothing to complete."
			return m, m.loadCmd()
		}
		timing := "late"
		if msg.res.OnTime {
			timing = "on time"
		}
		m.lastLog = fmt.Sprintf("Completed %q (%s, +%d XP)", msg.res.Title, timing, msg.res.XPDelta)
		if msg.res.StageAfter > msg.res.StageBefore {
			m.lastLog += fmt.Sprintf(" — evolved to stage %d!", msg.res.StageAfter)
		}
		return m, m.loadCmd()
	case snoozedMsg:
		if msg.err != nil {
			m.lastLog = "Snooze failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.res.Applied {
			m.lastLog = "Nothing to snooze."
			return m, m.loadCmd()
		}
		m.lastLog = fmt.Sprintf("Snoozed %q to %s", msg.res.Title, msg.res.NewTime)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			t := m.selectedTask()
			if t == nil {
				return m, nil
			}
			if t.Completed {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %q…", t.Title)
			return m, m.completeCmd(t.ID, m.dayKey)
		case "s":
			t := m.selectedTask()
			if t == nil {
				return m, nil
			}
			if t.Completed {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Snoozing %q…", t.Title)
			return m, m.snoozeCmd(t.ID, m.dayKey)
		}
	}
	return m, nil
}

func (m boardModel) selectedTask() *engine.MaterializedTask {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return nil
	}
	return &m.tasks[m.selected]
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := "\n" + m.lastLog

	// Simple 2-column layout.
	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "PetProgress — loading…"
	}
	stages := m.svc.Stages()
	stage := stages.Stage(m.pet.StageIndex)
	bar := ""
	if m.pet.StageIndex < stages.Last() {
		bar = progressBar(m.pet.StageXP, stages.Threshold(m.pet.StageIndex+1), 30)
	} else {
		bar = "(max stage)"
	}
	return fmt.Sprintf("PetProgress | %s | Stage %d: %s | XP %d %s", m.dayKey, m.pet.StageIndex, stage.Name, m.pet.StageXP, bar)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Pet"}
	stages := m.svc.Stages()
	for i := 0; i < stages.Count(); i++ {
		mark := "  "
		if i == m.pet.StageIndex {
			mark = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%d %s", mark, i, stages.Stage(i).Name))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- s: snooze")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Today")
	if len(m.tasks) == 0 {
		out = append(out, "(no tasks today)")
		return strings.Join(out, "\n")
	}
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		origin := ""
		if t.Origin == engine.OriginSeries {
			origin = " ⟳"
		}
		out = append(out, fmt.Sprintf("%s%s %s %s%s", cursor, mark, t.Time, t.Title, origin))
	}
	return strings.Join(out, "\n")
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
