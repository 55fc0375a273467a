// Command adminui is a terminal console for operators: log in with an admin
// account, browse the user table, lock or unlock accounts, change roles and
// delete users.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"trove/cmd/adminui/ui"
)

func main() {
	p := tea.NewProgram(ui.NewRootModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "adminui: %v\n", err)
		os.Exit(1)
	}
}
