package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/session"
)

type (
	signedInMsg struct {
		user *session.Profile
	}
	profileSavedMsg struct {
		user *session.Profile
	}
	passwordChangedMsg struct{}
)

type loginDetails struct {
	Email    string
	Password string
}

type registerDetails struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (d *registerDetails) request() api.RegisterRequest {
	return api.RegisterRequest{
		Email:     strings.TrimSpace(d.Email),
		Password:  d.Password,
		FirstName: strings.TrimSpace(d.FirstName),
		LastName:  strings.TrimSpace(d.LastName),
	}
}

type profileDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	Postal  string
	Country string
}

func (d *profileDetails) update() api.ProfileUpdate {
	name := strings.Join(strings.Fields(d.Name), " ")
	first, last, _ := strings.Cut(name, " ")
	return api.ProfileUpdate{
		Name:  name,
		Email: strings.TrimSpace(d.Email),
		Profile: &api.UserProfile{
			FirstName: first,
			LastName:  last,
			Phone:     strings.TrimSpace(d.Phone),
			Address:   strings.TrimSpace(d.Address),
			City:      strings.TrimSpace(d.City),
			Postal:    strings.TrimSpace(d.Postal),
			Country:   strings.TrimSpace(d.Country),
		},
	}
}

type passwordDetails struct {
	Current string
	Next    string
	Confirm string
}

const minPasswordLength = 6

func validPassword(s string) error {
	if len(s) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// ============================================
// Account
// ============================================

func (m Model) handleAccountKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "esc" || key == "backspace" {
		m.viewState = ViewProductList
		return m, nil
	}

	if !m.deps.Session.SignedIn() {
		switch key {
		case "l", "enter":
			return m.openLogin()
		case "r":
			return m.openRegister()
		}
		return m, nil
	}

	switch key {
	case "e":
		return m.openProfile()
	case "k":
		return m.openPassword()
	case "x":
		m.deps.Session.Logout()
		m.orders = nil
		m.status = "Signed out"
	}
	return m, nil
}

func (m Model) viewAccount() string {
	var sb strings.Builder

	sb.WriteString(m.styles.ListTitle.Render("Account"))
	sb.WriteString("\n")

	user := m.deps.Session.User()
	if user == nil {
		sb.WriteString("You are browsing as a guest.\n\n")
		sb.WriteString(m.styles.HelpBar.Render("l sign in • r create account • esc back"))
		return m.styles.Box.Render(sb.String())
	}

	rows := [][2]string{
		{"Name", user.Name},
		{"Email", user.Email},
		{"Phone", user.Phone},
		{"Address", user.Address},
		{"City", strings.TrimSpace(user.Postal + " " + user.City)},
		{"Country", user.Country},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		sb.WriteString(m.styles.StatKey.Render(row[0]))
		sb.WriteString(row[1])
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("e edit profile • k change password • x sign out • esc back"))
	return m.styles.Box.Render(sb.String())
}

func (m Model) openLogin() (tea.Model, tea.Cmd) {
	m.login = &loginDetails{}
	m.err = nil
	m.form = newLoginForm(m.login)
	m.viewState = ViewLogin
	return m, m.form.Init()
}

func newLoginForm(d *loginDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&d.Email).
				Validate(validEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Password).
				Validate(required("password")),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m Model) openRegister() (tea.Model, tea.Cmd) {
	m.register = &registerDetails{}
	m.err = nil
	m.form = newRegisterForm(m.register)
	m.viewState = ViewRegister
	return m, m.form.Init()
}

func newRegisterForm(d *registerDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First name").
				Value(&d.FirstName).
				Validate(required("first name")),
			huh.NewInput().
				Title("Last name").
				Value(&d.LastName),
			huh.NewInput().
				Title("Email").
				Value(&d.Email).
				Validate(validEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Password).
				Validate(validPassword),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m Model) openProfile() (tea.Model, tea.Cmd) {
	user := m.deps.Session.User()
	if user == nil {
		return m.openLogin()
	}
	m.profile = &profileDetails{
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Address: user.Address,
		City:    user.City,
		Postal:  user.Postal,
		Country: user.Country,
	}
	m.err = nil
	m.form = newProfileForm(m.profile)
	m.viewState = ViewProfile
	return m, m.form.Init()
}

func newProfileForm(d *profileDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&d.Name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(&d.Email).Validate(validEmail),
			huh.NewInput().Title("Phone").Value(&d.Phone),
		),
		huh.NewGroup(
			huh.NewInput().Title("Street address").Value(&d.Address),
			huh.NewInput().Title("City").Value(&d.City),
			huh.NewInput().Title("Postal code").Value(&d.Postal),
			huh.NewInput().Title("Country").Value(&d.Country),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m Model) openPassword() (tea.Model, tea.Cmd) {
	m.password = &passwordDetails{}
	m.err = nil
	m.form = newPasswordForm(m.password)
	m.viewState = ViewPassword
	return m, m.form.Init()
}

func newPasswordForm(d *passwordDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Current).
				Validate(required("current password")),
			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Next).
				Validate(validPassword),
			huh.NewInput().
				Title("Repeat new password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Confirm).
				Validate(func(s string) error {
					if s != d.Next {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m Model) signIn(email, password string) tea.Cmd {
	email = strings.TrimSpace(email)
	return func() tea.Msg {
		user, err := m.deps.Session.Login(m.ctx, email, password)
		if err != nil {
			return errMsg{err: err}
		}
		return signedInMsg{user: user}
	}
}

func (m Model) signUp(req api.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		user, err := m.deps.Session.Register(m.ctx, req)
		if err != nil {
			return errMsg{err: err}
		}
		return signedInMsg{user: user}
	}
}

func (m Model) saveProfile(update api.ProfileUpdate) tea.Cmd {
	return func() tea.Msg {
		user, err := m.deps.Session.UpdateProfile(m.ctx, update)
		if err != nil {
			return errMsg{err: err}
		}
		return profileSavedMsg{user: user}
	}
}

func (m Model) changePassword(current, next string) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Session.ChangePassword(m.ctx, current, next); err != nil {
			return errMsg{err: err}
		}
		return passwordChangedMsg{}
	}
}
