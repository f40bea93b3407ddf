package auth

import "strings"

const (
	ViewHome     = "home"
	ViewLogin    = "login"
	ViewRegister = "register"
)

// publicViews never require a session; every other view does.
var publicViews = map[string]struct{}{
	ViewHome:     {},
	ViewLogin:    {},
	ViewRegister: {},
}

// Navigator is whatever shows views to the operator: the gateway's view
// tracker for the web UI, a terminal notice for the CLI.
type Navigator interface {
	CurrentView() string
	Redirect(view string)
}

func NormalizeView(view string) string {
	view = strings.ToLower(strings.Trim(strings.TrimSpace(view), "/"))
	if view == "" {
		return ViewHome
	}
	return view
}

func RequiresAuth(view string) bool {
	_, public := publicViews[NormalizeView(view)]
	return !public
}
