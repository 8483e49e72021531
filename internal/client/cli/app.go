package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/shoplist/internal/client/backend"
	"github.com/dmitrijs2005/shoplist/internal/client/config"
	"github.com/dmitrijs2005/shoplist/internal/client/screens"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

// exportsDir is where "export <n> save" writes snapshots.
const exportsDir = "exports"

type App struct {
	config     *config.Config
	logger     logging.Logger
	router     *Router
	deps       screens.Deps
	reader     *bufio.Reader
	out        io.Writer
	theme      theme
	httpClient *http.Client
}

func NewApp(c *config.Config, be backend.Backend, logger logging.Logger, in io.Reader, out io.Writer) *App {
	router := NewRouter()
	logger = logger.With("module", "cli")
	th := newTheme(out)
	return &App{
		config: c,
		logger: logger,
		router: router,
		deps: screens.Deps{
			Backend: be,
			Nav:     router,
			Notify:  printer{w: out, theme: th},
			Logger:  logger,
		},
		reader:     bufio.NewReader(in),
		out:        out,
		theme:      th,
		httpClient: &http.Client{Timeout: c.RequestTimeout},
	}
}

// Run opens the lists screen, which falls back to sign-in when there is no
// session, and serves commands until the input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, a.theme.banner())
	a.router.Replace(screens.RouteLists, nil)
	a.settle(ctx)
	runREPL(ctx, a, a.reader, a.out)
}

// settle mounts screens until the current page stops navigating on entry,
// then renders it.
func (a *App) settle(ctx context.Context) {
	for e := a.router.unmounted(); e != nil; e = a.router.unmounted() {
		a.mount(ctx, e)
	}
	a.render()
}

func (a *App) mount(ctx context.Context, e *entry) {
	a.logger.Debug(ctx, "mount", "route", string(e.route))

	switch e.route {
	case screens.RouteLogin:
		e.screen = screens.NewLoginScreen(a.deps)
	case screens.RouteRegister:
		e.screen = screens.NewRegisterScreen(a.deps)
	case screens.RouteLists:
		s := screens.NewListScreen(a.deps)
		e.screen = s
		s.Activate(ctx)
	case screens.RouteItems:
		s := screens.NewItemScreen(a.deps, e.params)
		e.screen = s
		s.Load(ctx)
	}
}

func (a *App) render() {
	e := a.router.current()
	if e == nil {
		return
	}
	switch s := e.screen.(type) {
	case *screens.ListScreen:
		fmt.Fprint(a.out, a.theme.lists(s.View()))
	case *screens.ItemScreen:
		fmt.Fprint(a.out, a.theme.items(s.View()))
	case *screens.LoginScreen:
		fmt.Fprintln(a.out, a.theme.header.Render("Entrar"))
		fmt.Fprintln(a.out, a.theme.muted.Render("login | register"))
	case *screens.RegisterScreen:
		fmt.Fprintln(a.out, a.theme.header.Render("Criar conta"))
		fmt.Fprintln(a.out, a.theme.muted.Render("signup | login | back"))
	}
}

func (a *App) prompt() string {
	return "shoplist " + string(a.router.Route())
}

func (a *App) help() string {
	switch a.router.Route() {
	case screens.RouteLogin:
		return "Comandos: login, register, exit"
	case screens.RouteRegister:
		return "Comandos: signup, login, back, exit"
	case screens.RouteLists:
		return "Comandos: ls, new [nome], cancel, open <n>, rm <n>, export <n> [save], logout, exit"
	case screens.RouteItems:
		return "Comandos: ls, add [nome], cancel, toggle <n>, rm <n>, back, exit"
	}
	return "Comandos: exit"
}

func (a *App) exec(ctx context.Context, cmd string, args []string) bool {
	e := a.router.current()
	if e == nil {
		return false
	}

	var ok bool
	switch s := e.screen.(type) {
	case *screens.LoginScreen:
		ok = a.loginCommand(ctx, s, cmd)
	case *screens.RegisterScreen:
		ok = a.registerCommand(ctx, s, cmd)
	case *screens.ListScreen:
		ok = a.listsCommand(ctx, s, cmd, args)
	case *screens.ItemScreen:
		ok = a.itemsCommand(ctx, s, cmd, args)
	}
	if ok {
		a.settle(ctx)
	}
	return ok
}
