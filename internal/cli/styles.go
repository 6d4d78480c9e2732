package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
)

// Status badges.
var (
	badgeInactive = lipgloss.NewStyle().Foreground(colorDim)
	badgeActive   = lipgloss.NewStyle().Foreground(colorCyan)
	badgeDone     = lipgloss.NewStyle().Foreground(colorGreen)
)

// Urgency bands.
var (
	urgencyLow     = lipgloss.NewStyle().Foreground(colorGreen)
	urgencyHigh    = lipgloss.NewStyle().Foreground(colorYellow)
	urgencyOverdue = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)
