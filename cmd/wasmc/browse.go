package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const listWidth = 32

type browser struct {
	report   *report
	code     viewport.Model
	selected int
	height   int
	ready    bool
}

func newBrowser(r *report) *browser {
	return &browser{report: r}
}

func (b *browser) Init() tea.Cmd {
	return nil
}

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.height = max(3, msg.Height-6)
		width := max(20, msg.Width-listWidth-6)
		if !b.ready {
			b.code = viewport.New(width, b.height)
			b.ready = true
		} else {
			b.code.Width, b.code.Height = width, b.height
		}
		b.code.SetContent(b.details())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return b, tea.Quit
		case "up", "k":
			if b.selected > 0 {
				b.selected--
				b.refresh()
			}
			return b, nil
		case "down", "j":
			if b.selected < len(b.report.Functions)-1 {
				b.selected++
				b.refresh()
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.code, cmd = b.code.Update(msg)
	return b, cmd
}

func (b *browser) refresh() {
	if b.ready {
		b.code.SetContent(b.details())
		b.code.GotoTop()
	}
}

func (b *browser) details() string {
	if len(b.report.Functions) == 0 {
		return "no functions"
	}
	f := b.report.Functions[b.selected]
	var s strings.Builder
	s.WriteString(funcStyle.Render(f.Name))
	s.WriteString(" ")
	s.WriteString(typeStyle.Render(f.Sig))
	s.WriteString("\n")
	if f.Export != "" {
		fmt.Fprintf(&s, "export %s\n", f.Export)
	}
	if f.Source != "" {
		fmt.Fprintf(&s, "from   %s\n", f.Source)
	}
	if f.Import != "" {
		fmt.Fprintf(&s, "import %s\n", f.Import)
		return s.String()
	}
	s.WriteString("\n")
	s.WriteString(strings.Join(f.Code, "\n"))
	return s.String()
}

// window returns the list range that keeps the selection visible.
func (b *browser) window() (int, int) {
	n := len(b.report.Functions)
	rows := max(1, b.height)
	start := max(0, min(b.selected-rows/2, n-rows))
	return start, min(n, start+rows)
}

func (b *browser) View() string {
	if !b.ready {
		return "Loading..."
	}
	r := b.report

	var list strings.Builder
	start, end := b.window()
	for i := start; i < end; i++ {
		line := runewidth.FillRight(runewidth.Truncate(r.Functions[i].Name, listWidth-2, "…"), listWidth-2)
		if i == b.selected {
			list.WriteString(selectedStyle.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		if i < end-1 {
			list.WriteString("\n")
		}
	}

	header := titleStyle.Render("wasmc inspect") + " " + r.File +
		helpStyle.Render(fmt.Sprintf("  %d bytes, memory %s, %d tags", r.Size, r.Memory, r.Tags))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(listWidth).Height(b.height).Render(list.String()),
		paneStyle.Render(b.code.View()),
	)
	help := helpStyle.Render("↑/↓ select • pgup/pgdn scroll • q quit")
	return header + "\n" + body + "\n" + help
}

func browse(r *report) error {
	_, err := tea.NewProgram(newBrowser(r), tea.WithAltScreen()).Run()
	return err
}
