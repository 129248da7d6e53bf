package console

import (
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oumajohn/vmhost-cli/internal/application"
	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	render func(styles) string
	styles styles
	output string
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.render(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func run(render func(styles) string) (string, error) {
	p := tea.NewProgram(
		model{render: render, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}

// RenderVMPage renders one page of the VM listing.
func RenderVMPage(page ports.VMPage, pageNumber, pageSize int) (string, error) {
	return run(func(s styles) string {
		return renderVMPage(page, pageNumber, pageSize, s)
	})
}

// RenderSubUsers renders the sub-user quota view.
func RenderSubUsers(subUsers []domain.SubUser) (string, error) {
	return run(func(s styles) string {
		return renderSubUsers(subUsers, s)
	})
}

// RenderPlans renders the plan catalog with the active plan marked.
func RenderPlans(current domain.SubscriptionPlan) (string, error) {
	return run(func(s styles) string {
		return renderPlans(current, s)
	})
}

// RenderBills renders the outstanding bill list.
func RenderBills(bills []domain.Bill) (string, error) {
	return run(func(s styles) string {
		return renderBills(bills, s)
	})
}

// RenderSession renders the current session description.
func RenderSession(info application.SessionInfo, now time.Time) (string, error) {
	return run(func(s styles) string {
		return renderSession(info, now, s)
	})
}
