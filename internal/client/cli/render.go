package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/shoplist/internal/client/screens"
)

var (
	primary = lipgloss.Color("#4CAF50")
	muted   = lipgloss.Color("#999999")
	danger  = lipgloss.Color("#F44336")
)

const dateLayout = "02/01/2006"

// theme holds the styles bound to one output. Colors are dropped when the
// output is not a terminal.
type theme struct {
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	empty   lipgloss.Style
	done    lipgloss.Style
	failure lipgloss.Style
	success lipgloss.Style
	index   lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		title: r.NewStyle().Bold(true).Foreground(primary),
		header: r.NewStyle().Bold(true).Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(primary),
		muted:   r.NewStyle().Foreground(muted),
		empty:   r.NewStyle().Foreground(muted).Italic(true).PaddingLeft(2),
		done:    r.NewStyle().Foreground(muted).Strikethrough(true),
		failure: r.NewStyle().Bold(true).Foreground(danger),
		success: r.NewStyle().Bold(true).Foreground(primary),
		index:   r.NewStyle().Foreground(muted).Width(4).Align(lipgloss.Right),
	}
}

// printer is the screens.Notifier of the terminal.
type printer struct {
	w     io.Writer
	theme theme
}

func (p printer) Notify(n screens.Notice) {
	style := p.theme.failure
	if n.Kind == screens.NoticeSuccess {
		style = p.theme.success
	}
	fmt.Fprintf(p.w, "%s %s\n", style.Render(n.Kind.Title()+":"), n.Message)
}

func (t theme) lists(v screens.ListsView) string {
	var b strings.Builder
	title := "Minhas Listas"
	if v.User.Name != "" {
		title += " · " + v.User.Name
	}
	b.WriteString(t.header.Render(title) + "\n")

	switch {
	case v.State == screens.Loading:
		b.WriteString(t.muted.Render("Carregando...") + "\n")
	case v.Empty():
		b.WriteString(t.empty.Render(screens.EmptyListsTitle) + "\n")
		b.WriteString(t.empty.Render(screens.EmptyListsHint) + "\n")
	default:
		for i, l := range v.Lists {
			fmt.Fprintf(&b, "%s %s  %s\n",
				t.index.Render(fmt.Sprintf("%d.", i+1)),
				l.Name,
				t.muted.Render("Criada em "+l.CreatedAt.Local().Format(dateLayout)))
		}
	}
	if v.FormOpen {
		b.WriteString(t.muted.Render("Nova lista: "+v.Draft) + "\n")
	}
	return b.String()
}

func (t theme) items(v screens.ItemsView) string {
	var b strings.Builder
	b.WriteString(t.header.Render(v.ListName) + "\n")

	switch {
	case v.State == screens.Loading:
		b.WriteString(t.muted.Render("Carregando...") + "\n")
	case v.Empty():
		b.WriteString(t.empty.Render(screens.EmptyItemsTitle) + "\n")
		b.WriteString(t.empty.Render(screens.EmptyItemsHint) + "\n")
	default:
		for i, it := range v.Items {
			box, name := "[ ]", it.Name
			if it.Completed {
				box, name = "[x]", t.done.Render(it.Name)
			}
			fmt.Fprintf(&b, "%s %s %s  %s\n",
				t.index.Render(fmt.Sprintf("%d.", i+1)),
				box, name,
				t.muted.Render("Qtd: "+it.Quantity))
		}
	}
	return b.String()
}

func (t theme) banner() string {
	return t.title.Render("Lista de Compras") + t.muted.Render(" (digite 'help' para ver os comandos)")
}
