// Package cli hosts the shoplist screens in an interactive terminal session.
//
// It plays the part of the UI toolkit: a Router keeps the navigation stack
// and mounts a screen when a route is entered, a printer shows notices, and
// the REPL maps typed commands onto the operations of the current screen.
//
// Commands per route:
//
//	/login     login, register
//	/registro  signup, login, back
//	/listas    ls, new [name], cancel, open <n>, rm <n>, export <n> [save], logout
//	/itens     ls, add [name], toggle <n>, rm <n>, back
//
// help, exit and quit work everywhere. The session starts at /listas, whose
// session check redirects to /login when nobody is signed in.
package cli
