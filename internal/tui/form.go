package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Sign-in form fields.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Email", "Password"}

// authForm is the login/registration form shown to unauthenticated users.
// Fields are ordered to minimize memory padding.
type authForm struct {
	err    error
	notice string
	inputs [fieldCount]textinput.Model
	action authAction
	focus  int // Index into visible()
}

func newAuthForm() authForm {
	var f authForm

	f.inputs[fieldName] = textinput.New()
	f.inputs[fieldName].Placeholder = "Your name"
	f.inputs[fieldName].CharLimit = 100

	f.inputs[fieldEmail] = textinput.New()
	f.inputs[fieldEmail].Placeholder = "you@example.com"
	f.inputs[fieldEmail].CharLimit = 254

	f.inputs[fieldPassword] = textinput.New()
	f.inputs[fieldPassword].Placeholder = "Password"
	f.inputs[fieldPassword].CharLimit = 128
	f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.inputs[fieldPassword].EchoCharacter = '•'

	f.action = authLogin
	return f
}

// visible returns the fields shown for the current action, in tab order.
func (f *authForm) visible() []int {
	if f.action == authRegister {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

// focused returns the field that has focus.
func (f *authForm) focused() int {
	v := f.visible()
	if f.focus >= len(v) {
		f.focus = len(v) - 1
	}
	return v[f.focus]
}

// onLastField reports whether enter should submit.
func (f *authForm) onLastField() bool {
	return f.focus == len(f.visible())-1
}

// applyFocus focuses the current field and blurs the others.
func (f *authForm) applyFocus() tea.Cmd {
	current := f.focused()
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == current {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *authForm) next() tea.Cmd {
	f.focus = (f.focus + 1) % len(f.visible())
	return f.applyFocus()
}

func (f *authForm) prev() tea.Cmd {
	n := len(f.visible())
	f.focus = (f.focus + n - 1) % n
	return f.applyFocus()
}

// toggle switches between login and registration, keeping what was typed.
func (f *authForm) toggle() tea.Cmd {
	if f.action == authLogin {
		f.action = authRegister
	} else {
		f.action = authLogin
	}
	f.focus = 0
	f.err = nil
	f.notice = ""
	return f.applyFocus()
}

// showLogin switches to the login form with the email prefilled and focus on the password.
func (f *authForm) showLogin(email, notice string) tea.Cmd {
	f.action = authLogin
	f.err = nil
	f.notice = notice
	f.inputs[fieldEmail].SetValue(email)
	f.inputs[fieldPassword].Reset()
	f.focus = 0
	if email != "" {
		f.focus = 1
	}
	return f.applyFocus()
}

// reset clears every field and message.
func (f *authForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.err = nil
	f.notice = ""
	f.focus = 0
	f.action = authLogin
}

// value returns a field's trimmed value. Passwords are returned as typed.
func (f *authForm) value(field int) string {
	if field == fieldPassword {
		return f.inputs[field].Value()
	}
	return strings.TrimSpace(f.inputs[field].Value())
}

// validate returns an error naming the first empty field.
func (f *authForm) validate() error {
	for _, field := range f.visible() {
		if f.value(field) == "" {
			return errors.New(strings.ToLower(fieldLabels[field]) + " is required")
		}
	}
	return nil
}

// update forwards a message to the focused input.
func (f *authForm) update(msg tea.Msg) tea.Cmd {
	current := f.focused()
	var cmd tea.Cmd
	f.inputs[current], cmd = f.inputs[current].Update(msg)
	return cmd
}

func (f *authForm) view(styles Styles, busy bool) string {
	var b strings.Builder
	b.WriteString(styles.FormTitle.Render(f.action.String()))
	b.WriteString("\n")

	for _, field := range f.visible() {
		b.WriteString(styles.FormLabel.Render(fieldLabels[field]))
		b.WriteString(f.inputs[field].View())
		b.WriteString("\n")
	}

	switch {
	case busy:
		b.WriteString("\n")
		b.WriteString(styles.HeaderInfo.Render("Contacting server..."))
	case f.err != nil:
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render(f.err.Error()))
	case f.notice != "":
		b.WriteString("\n")
		b.WriteString(styles.NoticeMsg.Render(f.notice))
	}

	return styles.Form.Render(b.String())
}
