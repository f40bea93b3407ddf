package cli

import (
	"fmt"
	"io"
	"sync"
)

// terminalNavigator stands in for the UI: the current view is the command
// being run and a redirect to login becomes a notice on stderr.
type terminalNavigator struct {
	out io.Writer

	mu         sync.Mutex
	view       string
	redirected bool
}

func (n *terminalNavigator) CurrentView() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

func (n *terminalNavigator) Redirect(view string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.view = view
	if n.redirected {
		return
	}
	n.redirected = true
	if view == "login" {
		fmt.Fprintln(n.out, "session ended; run `rescuectl login` to sign in again")
	}
}

// silence suppresses the notice for a logout the operator asked for.
func (n *terminalNavigator) silence() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirected = true
}
