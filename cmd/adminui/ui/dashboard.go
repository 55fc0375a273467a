package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trove/app/dto"
)

type DashboardModel struct {
	Client *Client
	Table  table.Model
	Users  []dto.UserResponse
	Err    error
}

type usersLoadedMsg struct {
	Users []dto.UserResponse
	Err   error
}

type UserSelectedMsg struct {
	ID uint
}

func NewDashboardModel(c *Client, width, height int) DashboardModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Username", Width: 20},
		{Title: "Email", Width: 30},
		{Title: "Role", Width: 14},
		{Title: "Locked", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height-10),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	return DashboardModel{Client: c, Table: t}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		users, err := m.Client.ListUsers()
		return usersLoadedMsg{Users: users, Err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.refreshCmd()
		case "enter":
			cur := m.Table.Cursor()
			if cur >= 0 && cur < len(m.Users) {
				id := m.Users[cur].ID
				return m, func() tea.Msg { return UserSelectedMsg{ID: id} }
			}
		case "q":
			m.Client.Logout()
			return m, tea.Quit
		}

	case usersLoadedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.Users = msg.Users
		rows := make([]table.Row, 0, len(msg.Users))
		for _, u := range msg.Users {
			locked := ""
			if u.Locked {
				locked = "yes"
			}
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", u.ID), u.Username, u.Email, string(u.Role), locked,
			})
		}
		m.Table.SetRows(rows)
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Trove - Users") + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("'r' refresh, Enter to inspect, 'q' to quit, up/down to navigate"))

	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
