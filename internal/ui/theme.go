package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PetProgress theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconPet      = "🐣"
	IconSparkle  = "✨"
	IconPlus     = "➕"
	IconDone     = "✅"
	IconClock    = "⏰"
	IconSnooze   = "💤"
	IconInfo     = "ℹ️"
	IconWarn     = "⚠️"
	IconError    = "🧨"
	IconLoop     = "🔁"
	IconCalendar = "📅"
	IconScroll   = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	BadgeStageUp   = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("STAGE UP")
	BadgeStageDown = lipgloss.NewStyle().Bold(true).Foreground(cBad).Render("STAGE DOWN")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// TaskLine renders one occurrence row for CLI lists.
func TaskLine(timeLabel, title string, completed bool) string {
	mark := "[ ]"
	if completed {
		mark = Good.Render("[x]")
		title = Muted.Render(title)
	}
	return fmt.Sprintf("%s %s %s", mark, Dim.Render(timeLabel), title)
}

// XPBar renders stage progress as a fixed-width bar.
func XPBar(xp, threshold, width int) string {
	if threshold <= 0 {
		threshold = 1
	}
	if width <= 3 {
		width = 3
	}
	if xp < 0 {
		xp = 0
	}
	if xp > threshold {
		xp = threshold
	}
	filled := xp * width / threshold
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
