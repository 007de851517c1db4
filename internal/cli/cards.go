package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nulzo/neurix/pkg/api"
)

const (
	cardWidth     = 72
	fallbackColor = "#6b7280"
	errorColor    = "#ef4444"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(errorColor))
)

// Card renders one model's answer in a bordered box tinted with the model's
// accent color. Failed results show the error instead of the text.
func Card(desc api.ModelDescriptor, r api.ModelResult) string {
	color := desc.Color
	if color == "" {
		color = fallbackColor
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1).
		Width(cardWidth)

	title := strings.TrimSpace(fmt.Sprintf("%s %s", desc.Icon, r.Model))
	header := titleStyle.Foreground(lipgloss.Color(color)).Render(title)

	var body string
	if r.Succeeded {
		body = r.Text
		if r.Usage != nil {
			body += "\n" + mutedStyle.Render(fmt.Sprintf("%d prompt + %d completion tokens",
				r.Usage.PromptTokens, r.Usage.CompletionTokens))
		}
	} else {
		msg := r.Error
		if r.Status != 0 {
			msg = fmt.Sprintf("%s (HTTP %d)", msg, r.Status)
		}
		body = errorStyle.Render(msg)
	}

	return box.Render(header + "\n\n" + body)
}

// Cards renders results in order, looking up each model's descriptor by name.
func Cards(descs []api.ModelDescriptor, agg *api.AggregatedResponse) string {
	byName := make(map[string]api.ModelDescriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}

	cards := make([]string, 0, len(agg.Results))
	for _, r := range agg.Results {
		d, ok := byName[r.Model]
		if !ok {
			d = api.ModelDescriptor{Name: r.Model}
		}
		cards = append(cards, Card(d, r))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// StatusLine renders one probe result as a single line.
func StatusLine(s api.ModelStatus) string {
	name := titleStyle.Render(strings.TrimSpace(fmt.Sprintf("%s %s", s.Icon, s.Name)))
	if s.Available {
		return fmt.Sprintf("%s %s", CheckMark(), name)
	}
	return fmt.Sprintf("%s %s %s", CrossMark(), name, errorStyle.Render(s.Error))
}
