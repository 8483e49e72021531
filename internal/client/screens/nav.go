package screens

import (
	"github.com/dmitrijs2005/shoplist/internal/client/backend"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

type Route string

const (
	RouteLogin    Route = "/login"
	RouteRegister Route = "/registro"
	RouteLists    Route = "/listas"
	RouteItems    Route = "/itens"
)

// Navigation parameters of RouteItems.
const (
	ParamListID   = "listaId"
	ParamListName = "listaNome"
)

type Params map[string]string

// Navigator moves between screens. Replace drops the history.
type Navigator interface {
	Replace(r Route, p Params)
	Push(r Route, p Params)
	Back()
}

type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeSuccess
)

// Title is the heading shown above a notice.
func (k NoticeKind) Title() string {
	if k == NoticeSuccess {
		return "Sucesso"
	}
	return "Erro"
}

// Notice is a transient message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Backend backend.Backend
	Nav     Navigator
	Notify  Notifier
	Logger  logging.Logger
}

func (d Deps) fail(msg string) {
	d.Notify.Notify(Notice{Kind: NoticeError, Message: msg})
}

func (d Deps) success(msg string) {
	d.Notify.Notify(Notice{Kind: NoticeSuccess, Message: msg})
}

// errorText is the backend's message for err, or fallback when it has none.
func errorText(err error, fallback string) string {
	if m := backend.Message(err); m != "" {
		return m
	}
	return fallback
}
