// Package ui provides terminal output styling for the devctl CLI.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette colors.
var (
	Teal    = lipgloss.Color("#14B8A6")
	Red     = lipgloss.Color("#EF4444")
	Amber   = lipgloss.Color("#F59E0B")
	Green   = lipgloss.Color("#22C55E")
	Purple  = lipgloss.Color("#9D61FF")
	DimGray = lipgloss.Color("#9CA3AF")
)

// Text styles.
var (
	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// WarningStyle for warning messages
	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	// InfoStyle for informational messages
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	// DimStyle for less important text
	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// roleStyles assigns a stable color per role prefix in multiplexed
// output, so the two streams are visually separable at a glance.
var roleStyles = map[string]lipgloss.Style{
	"frontend": lipgloss.NewStyle().Foreground(Teal),
	"backend":  lipgloss.NewStyle().Foreground(Amber),
}

// fallbackRoleStyle is used for any prefix without an assigned color.
var fallbackRoleStyle = lipgloss.NewStyle().Foreground(Purple)

// RoleStyle returns the output-prefix style for a role name.
func RoleStyle(role string) lipgloss.Style {
	if s, ok := roleStyles[role]; ok {
		return s
	}
	return fallbackRoleStyle
}
