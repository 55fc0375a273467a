package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateLogin state = iota
	stateDashboard
	stateUserDetail
)

// BackToDashboardMsg signals transition back to the user table.
type BackToDashboardMsg struct{}

type RootModel struct {
	State     state
	Client    *Client
	Login     LoginModel
	Dashboard DashboardModel
	Detail    UserDetailModel
	Quitting  bool
	width     int
	height    int
}

func NewRootModel() RootModel {
	c := NewClient()
	return RootModel{
		State:  stateLogin,
		Client: c,
		Login:  NewLoginModel(c),
	}
}

func (m RootModel) Init() tea.Cmd {
	return m.Login.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.Dashboard.Table.SetHeight(msg.Height - 10)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			m.Client.Logout()
			return m, tea.Quit
		}
	}

	switch m.State {
	case stateLogin:
		if done, ok := msg.(loginDoneMsg); ok {
			if done.Err != nil {
				m.Login.Err = done.Err
				return m, nil
			}
			m.State = stateDashboard
			m.Dashboard = NewDashboardModel(m.Client, m.width, m.height)
			return m, m.Dashboard.Init()
		}
		var cmd tea.Cmd
		m.Login, cmd = m.Login.Update(msg)
		cmds = append(cmds, cmd)

	case stateDashboard:
		if sel, ok := msg.(UserSelectedMsg); ok {
			m.State = stateUserDetail
			m.Detail = NewUserDetailModel(m.Client, sel.ID)
			return m, m.Detail.Init()
		}
		var cmd tea.Cmd
		m.Dashboard, cmd = m.Dashboard.Update(msg)
		cmds = append(cmds, cmd)

	case stateUserDetail:
		if _, ok := msg.(BackToDashboardMsg); ok {
			m.State = stateDashboard
			return m, m.Dashboard.Init()
		}
		var cmd tea.Cmd
		m.Detail, cmd = m.Detail.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m RootModel) View() string {
	if m.Quitting {
		return "Bye!\n"
	}
	switch m.State {
	case stateLogin:
		return m.Login.View()
	case stateDashboard:
		return m.Dashboard.View()
	case stateUserDetail:
		return m.Detail.View()
	}
	return ""
}
