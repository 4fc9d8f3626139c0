// Package ui provides console output helpers for the readiness readout.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// UI writes styled console output.
type UI struct {
	out io.Writer
	err io.Writer
}

// NewUI creates a UI writing to stdout/stderr.
func NewUI() *UI {
	return &UI{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// Success prints a success message.
func (ui *UI) Success(msg string) {
	fmt.Fprintln(ui.out, successStyle.Render("✓ "+msg))
}

// Error prints an error message.
func (ui *UI) Error(msg string) {
	fmt.Fprintln(ui.err, errorStyle.Render("✗ "+msg))
}

// Warning prints a warning message.
func (ui *UI) Warning(msg string) {
	fmt.Fprintln(ui.out, warningStyle.Render("⚠ "+msg))
}

// Info prints an info message.
func (ui *UI) Info(msg string) {
	fmt.Fprintln(ui.out, infoStyle.Render("ℹ "+msg))
}

// Println prints a regular message.
func (ui *UI) Println(msg string) {
	fmt.Fprintln(ui.out, msg)
}

// Printf prints a formatted message.
func (ui *UI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(ui.out, format, args...)
}

// Header prints a section header.
func (ui *UI) Header(title string) {
	fmt.Fprintln(ui.out, headerStyle.Render(title))
}

// Separator prints a visual separator.
func (ui *UI) Separator() {
	fmt.Fprintln(ui.out, subtleStyle.Render(strings.Repeat("─", 50)))
}

// KeyValue prints a key-value pair.
func (ui *UI) KeyValue(key, value string) {
	fmt.Fprintf(ui.out, "  %s: %s\n", subtleStyle.Render(key), value)
}

// ListItem prints a list item.
func (ui *UI) ListItem(item string) {
	fmt.Fprintln(ui.out, "  • "+item)
}
