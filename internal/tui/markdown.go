package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	orderedPattern = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)

	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	subheadingStyle = lipgloss.NewStyle().Bold(true)
	boldStyle       = lipgloss.NewStyle().Bold(true)
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockItem
)

type block struct {
	kind blockKind
	text string
}

// RenderMarkdown lays out headings, paragraphs and lists of model output for
// the terminal. Other markdown is passed through as text.
func RenderMarkdown(src string, width int) string {
	if width <= 0 {
		width = 80
	}
	var blocks []block
	var para []string
	flush := func() {
		if len(para) == 0 {
			return
		}
		text := inline(strings.Join(para, " "))
		blocks = append(blocks, block{kind: blockParagraph, text: lipgloss.NewStyle().Width(width).Render(text)})
		para = nil
	}

	for _, raw := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		indent := (len(raw) - len(strings.TrimLeft(raw, " \t"))) / 2
		switch {
		case line == "":
			flush()
		case headingPattern.MatchString(line):
			flush()
			m := headingPattern.FindStringSubmatch(line)
			style := subheadingStyle
			if len(m[1]) <= 2 {
				style = headingStyle
			}
			blocks = append(blocks, block{kind: blockHeading, text: style.Render(inline(m[2]))})
		case bulletPattern.MatchString(line):
			flush()
			m := bulletPattern.FindStringSubmatch(line)
			blocks = append(blocks, block{kind: blockItem, text: listItem(indent, "•", m[1], width)})
		case orderedPattern.MatchString(line):
			flush()
			m := orderedPattern.FindStringSubmatch(line)
			blocks = append(blocks, block{kind: blockItem, text: listItem(indent, m[1]+".", m[2], width)})
		default:
			para = append(para, line)
		}
	}
	flush()

	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
			if !(blk.kind == blockItem && blocks[i-1].kind == blockItem) {
				b.WriteString("\n")
			}
		}
		b.WriteString(blk.text)
	}
	return b.String()
}

func listItem(indent int, marker, text string, width int) string {
	pad := 2 * indent
	prefix := strings.Repeat(" ", pad) + marker + " "
	bodyWidth := width - lipgloss.Width(prefix)
	if bodyWidth < 10 {
		bodyWidth = 10
	}
	body := lipgloss.NewStyle().Width(bodyWidth).Render(inline(text))
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, body)
}

func inline(text string) string {
	return boldPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[2 : len(match)-2]
		return boldStyle.Render(inner)
	})
}
