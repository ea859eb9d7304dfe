package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/spelljack/internal/catalog"
	"github.com/lox/spelljack/internal/deck"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)
}

// printCards writes cards as a table. Cost is shown when withCost is set.
func printCards(w io.Writer, title string, cat *catalog.Catalog, cards []deck.Card, withCost bool) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(cards))))
	if len(cards) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none"))
		return
	}

	headers := []string{"ID", "Card", "Description"}
	if withCost {
		headers = []string{"ID", "Card", "Cost", "Description"}
	}
	t := newTable(headers...)
	for _, c := range cards {
		row := []string{strconv.Itoa(c.ID), c.String()}
		if withCost {
			row = append(row, strconv.Itoa(c.Cost))
		}
		t.Row(append(row, cat.Describe(c))...)
	}
	fmt.Fprintln(w, t.Render())
}
