package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"trove/app/dto"
	"trove/app/models"
)

// roleOrder is the cycle the 'm' key walks through.
var roleOrder = []models.Role{
	models.RoleUser, models.RoleModerator, models.RoleAdmin, models.RoleSuperAdmin,
}

type UserDetailModel struct {
	Client *Client
	ID     uint
	User   *dto.UserResponse
	Status string
	Err    error

	confirmDelete bool
}

type userLoadedMsg struct {
	User *dto.UserResponse
	Err  error
}

type userDeletedMsg struct {
	Err error
}

func NewUserDetailModel(c *Client, id uint) UserDetailModel {
	return UserDetailModel{Client: c, ID: id}
}

func (m UserDetailModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m UserDetailModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		user, err := m.Client.GetUser(m.ID)
		return userLoadedMsg{User: user, Err: err}
	}
}

func (m UserDetailModel) Update(msg tea.Msg) (UserDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y":
				m.confirmDelete = false
				return m, func() tea.Msg { return userDeletedMsg{Err: m.Client.DeleteUser(m.ID)} }
			default:
				m.confirmDelete = false
			}
			return m, nil
		}
		switch msg.String() {
		case "esc", "b":
			return m, func() tea.Msg { return BackToDashboardMsg{} }
		case "r":
			return m, m.loadCmd()
		case "l":
			if m.User == nil {
				return m, nil
			}
			locked := !m.User.Locked
			return m, func() tea.Msg {
				user, err := m.Client.SetLocked(m.ID, locked)
				return userLoadedMsg{User: user, Err: err}
			}
		case "m":
			if m.User == nil {
				return m, nil
			}
			next := nextRole(m.User.Role)
			return m, func() tea.Msg {
				user, err := m.Client.SetRole(m.ID, string(next))
				return userLoadedMsg{User: user, Err: err}
			}
		case "d":
			m.confirmDelete = true
			return m, nil
		case "q":
			m.Client.Logout()
			return m, tea.Quit
		}

	case userLoadedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.User = msg.User
		m.Status = ""

	case userDeletedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		return m, func() tea.Msg { return BackToDashboardMsg{} }
	}

	return m, nil
}

func nextRole(r models.Role) models.Role {
	for i, role := range roleOrder {
		if role == r {
			return roleOrder[(i+1)%len(roleOrder)]
		}
	}
	return models.RoleUser
}

func (m UserDetailModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Trove - User #%d", m.ID)) + "\n\n")

	if m.User == nil {
		b.WriteString("Loading...\n")
	} else {
		u := m.User
		b.WriteString(fmt.Sprintf("  Username:  %s\n", u.Username))
		b.WriteString(fmt.Sprintf("  Email:     %s\n", u.Email))
		b.WriteString(fmt.Sprintf("  Role:      %s\n", u.Role))
		if u.Provider != "" {
			b.WriteString(fmt.Sprintf("  Provider:  %s\n", u.Provider))
		}
		if u.Locked {
			b.WriteString("  Status:    " + lockedStyle("LOCKED") + "\n")
		} else {
			b.WriteString("  Status:    active\n")
		}
		b.WriteString(fmt.Sprintf("  Created:   %s\n", u.CreatedAt.Format("2006-01-02 15:04")))
	}

	b.WriteString("\n")
	if m.confirmDelete {
		b.WriteString(errorMessageStyle("Delete this user and everything they own? (y/n)"))
	} else {
		b.WriteString(blurredStyle.Render("'l' lock/unlock, 'm' cycle role, 'd' delete, 'r' refresh, Esc back, 'q' quit"))
	}

	if m.Status != "" {
		b.WriteString("\n" + statusMessageStyle(m.Status))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
