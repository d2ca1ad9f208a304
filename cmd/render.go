package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

// renderTable draws rows under headers with the shared report styles.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.TableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeader
			}
			return theme.TableCell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func section(title string) {
	fmt.Println()
	fmt.Println(theme.Title.Render(title))
}

func pct(v float64) string {
	return theme.Level(v).Render(fmt.Sprintf("%.1f%%", v))
}

func ratio(v float64) string {
	return theme.Level(v * 100).Render(fmt.Sprintf("%.2f", v))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
