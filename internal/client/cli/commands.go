package cli

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shoplist/internal/client/screens"
	"github.com/dmitrijs2005/shoplist/internal/filex"
	"github.com/dmitrijs2005/shoplist/internal/netx"
)

// ask reads one answer. A closed input yields "".
func (a *App) ask(prompt string) string {
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return ""
	}
	return s
}

func (a *App) askPassword(prompt string) string {
	s, err := GetPassword(a.reader, prompt, a.out)
	if err != nil {
		return ""
	}
	return s
}

// index parses the 1-based position args[0] within a collection of n rows.
func (a *App) index(args []string, n int, usage string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Uso:", usage)
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		fmt.Fprintf(a.out, "Número inválido: %s\n", args[0])
		return 0, false
	}
	return i - 1, true
}

func (a *App) loginCommand(ctx context.Context, s *screens.LoginScreen, cmd string) bool {
	switch cmd {
	case "login":
		email := a.ask("Email")
		password := a.askPassword("Senha")
		s.SignIn(ctx, email, password)
	case "register", "registro":
		s.GoToRegister()
	default:
		return false
	}
	return true
}

func (a *App) registerCommand(ctx context.Context, s *screens.RegisterScreen, cmd string) bool {
	switch cmd {
	case "signup", "register":
		name := a.ask("Nome")
		email := a.ask("Email")
		password := a.askPassword("Senha")
		confirm := a.askPassword("Confirmar senha")
		s.SignUp(ctx, name, email, password, confirm)
	case "login":
		s.GoToLogin()
	case "back":
		a.router.Back()
	default:
		return false
	}
	return true
}

func (a *App) listsCommand(ctx context.Context, s *screens.ListScreen, cmd string, args []string) bool {
	v := s.View()

	switch cmd {
	case "ls", "list":
		s.Load(ctx, v.User.ID)

	case "new":
		s.OpenForm()
		name := strings.Join(args, " ")
		if name == "" {
			prompt := "Nome da lista"
			if d := s.Draft(); d != "" {
				prompt += " [" + d + "]"
			}
			if name = a.ask(prompt); name == "" {
				name = s.Draft()
			}
		}
		s.SetDraft(name)
		s.Create(ctx, name)

	case "cancel":
		s.CloseForm()

	case "open":
		if i, ok := a.index(args, len(v.Lists), "open <n>"); ok {
			s.Select(v.Lists[i])
		}

	case "rm", "delete":
		if i, ok := a.index(args, len(v.Lists), "rm <n>"); ok {
			s.Delete(ctx, v.Lists[i].ID)
		}

	case "export":
		i, ok := a.index(args, len(v.Lists), "export <n> [save]")
		if !ok {
			break
		}
		res, ok := s.Export(ctx, v.Lists[i].ID)
		if ok && len(args) > 1 && args[1] == "save" {
			a.saveExport(ctx, res.URL, path.Base(res.Key))
		}

	case "logout":
		s.SignOut(ctx)

	default:
		return false
	}
	return true
}

// saveExport downloads an export into exportsDir.
func (a *App) saveExport(ctx context.Context, url, fileName string) {
	body, err := netx.DownloadPresigned(ctx, a.httpClient, url)
	if err != nil {
		a.logger.Warn(ctx, "export download failed", "error", err)
		a.deps.Notify.Notify(screens.Notice{Kind: screens.NoticeError, Message: "Erro ao baixar exportação"})
		return
	}
	p, err := filex.WriteInSubdir(exportsDir, fileName, body)
	if err != nil {
		a.logger.Warn(ctx, "export save failed", "error", err)
		a.deps.Notify.Notify(screens.Notice{Kind: screens.NoticeError, Message: "Erro ao salvar exportação"})
		return
	}
	a.deps.Notify.Notify(screens.Notice{Kind: screens.NoticeSuccess, Message: "Exportação salva em " + p})
}

func (a *App) itemsCommand(ctx context.Context, s *screens.ItemScreen, cmd string, args []string) bool {
	v := s.View()

	switch cmd {
	case "ls", "list":
		s.Load(ctx)

	case "add", "new":
		s.OpenForm()
		name := strings.Join(args, " ")
		if name == "" {
			name = a.ask("Nome do item")
		}
		quantity := a.ask("Quantidade (padrão 1)")
		s.Create(ctx, name, quantity)

	case "cancel":
		s.CloseForm()

	case "toggle", "check":
		if i, ok := a.index(args, len(v.Items), "toggle <n>"); ok {
			s.Toggle(ctx, v.Items[i].ID, v.Items[i].Completed)
		}

	case "rm", "delete":
		if i, ok := a.index(args, len(v.Items), "rm <n>"); ok {
			s.Delete(ctx, v.Items[i].ID)
		}

	case "back":
		s.Back()

	default:
		return false
	}
	return true
}
