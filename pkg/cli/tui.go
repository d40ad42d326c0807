package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors of the talk console.
type Theme struct {
	Primary   lipgloss.Color // assistant text, titles
	Secondary lipgloss.Color // user text
	Error     lipgloss.Color
	Dim       lipgloss.Color // status and help text
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary:   lipgloss.Color("#00ff9f"),
	Secondary: lipgloss.Color("#58a6ff"),
	Error:     lipgloss.Color("#ff5f87"),
	Dim:       lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Label     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Box       lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		User:      lipgloss.NewStyle().Foreground(t.Secondary),
		Assistant: lipgloss.NewStyle().Foreground(t.Primary),
		Label:     lipgloss.NewStyle().Bold(true),
		Status:    lipgloss.NewStyle().Foreground(t.Dim),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Dim).Padding(0, 1),
	}
}

// Console prints a conversation as styled lines. Assistant deltas are
// written inline and ended by the next non-delta line.
type Console struct {
	W      io.Writer
	Styles Styles

	inDelta bool
}

// NewConsole creates a console with the default theme.
func NewConsole(w io.Writer) *Console {
	return &Console{W: w, Styles: NewStyles(DefaultTheme)}
}

func (c *Console) endDelta() {
	if c.inDelta {
		fmt.Fprintln(c.W)
		c.inDelta = false
	}
}

// Title prints a bold header line.
func (c *Console) Title(s string) {
	c.endDelta()
	fmt.Fprintln(c.W, c.Styles.Title.Render(s))
}

// Status prints a dimmed status line.
func (c *Console) Status(format string, args ...any) {
	c.endDelta()
	fmt.Fprintln(c.W, c.Styles.Status.Render("· "+fmt.Sprintf(format, args...)))
}

// User prints what the user said.
func (c *Console) User(text string) {
	c.endDelta()
	fmt.Fprintln(c.W, c.Styles.Label.Render("you ")+c.Styles.User.Render(text))
}

// AssistantDelta appends a piece of the assistant's answer.
func (c *Console) AssistantDelta(delta string) {
	if !c.inDelta {
		fmt.Fprint(c.W, c.Styles.Label.Render("bot "))
		c.inDelta = true
	}
	fmt.Fprint(c.W, c.Styles.Assistant.Render(delta))
}

// Error prints an error line.
func (c *Console) Error(err error) {
	c.endDelta()
	fmt.Fprintln(c.W, c.Styles.Error.Render("✗ "+err.Error()))
}

// Box prints a titled box of lines, truncated to width columns.
func (c *Console) Box(title string, lines []string, width int) {
	c.endDelta()
	body := make([]string, 0, len(lines)+1)
	body = append(body, c.Styles.Label.Render(title))
	for _, l := range lines {
		if width > 1 && lipgloss.Width(l) > width {
			l = truncateString(l, width-1) + "…"
		}
		body = append(body, l)
	}
	fmt.Fprintln(c.W, c.Styles.Box.Render(strings.Join(body, "\n")))
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
