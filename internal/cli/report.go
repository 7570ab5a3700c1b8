package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/forPelevin/vsplit/internal/types"
)

func renderSummary(rep types.RunReport, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Input", "Status", "Parts", "Audio", "Resized", "Failures"})
	for _, f := range rep.Files {
		status := f.Status
		if colorize {
			status = statusColor(f.Status).Sprint(f.Status)
		}
		tw.AppendRow(table.Row{
			filepath.Base(f.Input),
			status,
			len(f.Segments),
			len(f.Audio),
			len(f.Resized),
			len(f.SegFails) + len(f.Crops),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	for _, line := range failureLines(rep) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// failureLines names the failing unit of every recorded error.
func failureLines(rep types.RunReport) []string {
	var out []string
	for _, f := range rep.Files {
		name := filepath.Base(f.Input)
		if f.Error != "" {
			out = append(out, fmt.Sprintf("%s: %s", name, firstLine(f.Error)))
		}
		for _, s := range f.SegFails {
			out = append(out, fmt.Sprintf("%s: part %d %s failed: %s", name, s.Index, s.Stage, firstLine(s.Error)))
		}
		for _, c := range f.Crops {
			out = append(out, fmt.Sprintf("%s: %s", name, firstLine(c.Error)))
		}
	}
	return out
}

func statusColor(status string) text.Colors {
	switch status {
	case types.StatusProcessed:
		return text.Colors{text.FgGreen}
	case types.StatusPartial:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func writeReport(path string, rep types.RunReport) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
