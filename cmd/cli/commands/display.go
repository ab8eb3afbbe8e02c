package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorOrange = "\033[38;5;208m"
	colorDim    = "\033[2m"
)

const (
	longDateLayout = "Monday 2 January 2006"
	barWidth       = 20
)

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// progressBar renders percent (clamped to 0-100) as a fixed-width bar
func progressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// percentColor returns green when a goal is met, yellow from halfway and orange below
func percentColor(percent int, green, yellow, orange string) string {
	switch {
	case percent >= 100:
		return green
	case percent >= 50:
		return yellow
	default:
		return orange
	}
}

func statusColor(s model.Status) string {
	switch s.Normalized() {
	case model.StatusAccepted:
		return colorGreen
	case model.StatusRejected:
		return colorRed
	case model.StatusPending:
		return colorYellow
	default:
		return colorDim
	}
}

func statusSymbol(s model.Status) string {
	switch s.Normalized() {
	case model.StatusAccepted:
		return "✓"
	case model.StatusRejected:
		return "✗"
	default:
		return "…"
	}
}

var skillLabels = map[model.Skill]string{
	model.SkillCommunication:  "Communication",
	model.SkillTeamwork:       "Teamwork",
	model.SkillAdaptability:   "Adaptability",
	model.SkillOrganizational: "Organizational skills",
	model.SkillTimeManagement: "Time management",
}

func skillLabel(s model.Skill) string {
	if label, ok := skillLabels[s]; ok {
		return label
	}
	return string(s)
}

func colorize(color, text string) string {
	return fmt.Sprintf("%s%s%s", color, text, colorReset)
}
