package ui

import (
	"strings"

	"github.com/jesspatton/lazyremote/engine"
)

// renderConfirm renders the dialog for a pending confirmation.
func renderConfirm(c engine.Confirmation) string {
	var b strings.Builder

	title := "Confirm"
	switch c.Kind {
	case engine.ConfirmSuite:
		title = "Run suite"
	case engine.ConfirmAll:
		title = "Run all tests"
	case engine.ConfirmClear:
		title = "Clear results"
	}
	b.WriteString(modalTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(modalTitleStyle.UnsetBold().Render(c.Prompt))
	b.WriteString("\n\n")

	confirm := modalConfirmStyle.Render("[y/enter confirm]")
	cancel := modalCancelStyle.Render("[n/esc cancel]")
	b.WriteString(modalTitleStyle.UnsetBold().Render(confirm + "    " + cancel))

	return modalBoxStyle.Render(b.String())
}
