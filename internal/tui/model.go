// Package tui drives a bound component from the terminal.
//
// Key presses call component methods on the event loop. Every forced
// render of the component is pushed back into the program as a message,
// so the view always reflects the latest snapshot.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
)

// Key maps a key to a component method.
type Key struct {
	Key    string
	Method string
	Help   string
}

// DefaultKeys returns the keys for the demo counter.
func DefaultKeys() []Key {
	return []Key{
		{Key: "+", Method: "increase", Help: "+2"},
		{Key: "-", Method: "decrease", Help: "-1"},
		{Key: "a", Method: "increaseAsync", Help: "async +1"},
		{Key: "l", Method: "reload", Help: "reload"},
		{Key: "r", Method: "reset", Help: "reset"},
	}
}

// renderMsg carries a snapshot taken after a forced render.
type renderMsg host.Snapshot

// callDoneMsg reports the outcome of a method call.
type callDoneMsg struct {
	method string
	err    error
}

// Model is the bubbletea model for one component.
type Model struct {
	comp *host.Component
	loop *loop.Loop
	keys []Key

	snap   host.Snapshot
	status string
	err    error
	width  int
}

// New creates a model for comp. Calls are dispatched onto l.
func New(comp *host.Component, l *loop.Loop, keys []Key) Model {
	if keys == nil {
		keys = DefaultKeys()
	}
	return Model{
		comp: comp,
		loop: l,
		keys: keys,
		snap: comp.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case renderMsg:
		m.snap = host.Snapshot(msg)
		return m, nil

	case callDoneMsg:
		m.snap = m.comp.Snapshot()
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.method
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		for _, k := range m.keys {
			if k.Key == msg.String() {
				return m, m.call(k.Method)
			}
		}
	}
	return m, nil
}

// call runs method on the loop and reports back when it returns.
func (m Model) call(method string) tea.Cmd {
	comp, l := m.comp, m.loop
	return func() tea.Msg {
		done := make(chan error, 1)
		l.Dispatch(func() {
			_, err := comp.Call(context.Background(), method)
			done <- err
		})
		select {
		case err := <-done:
			return callDoneMsg{method: method, err: err}
		case <-l.Done():
			return callDoneMsg{method: method, err: loop.ErrClosed}
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := m.snap.Component
	if t, ok := m.snap.Props["title"].(string); ok {
		title = t
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	names := make([]string, 0, len(m.snap.Props))
	for name := range m.snap.Props {
		if name != "title" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(nameStyle.Render(name))
		b.WriteString(renderValue(m.snap.Props[name]))
		if e, ok := m.snap.Errors[name]; ok {
			b.WriteString(" " + errorStyle.Render(e))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("renders: %d", m.snap.Renders)))
	switch {
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString("  " + okStyle.Render("✓ "+m.status))
	}

	help := make([]string, 0, len(m.keys)+1)
	for _, k := range m.keys {
		help = append(help, k.Key+" "+k.Help)
	}
	help = append(help, "q quit")

	body := frameStyle.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, helpStyle.Render(strings.Join(help, " • ")))
}

func renderValue(v any) string {
	snap, ok := v.(async.Snapshot)
	if !ok {
		return valueStyle.Render(fmt.Sprint(v))
	}
	switch snap.State {
	case async.Loading:
		return loadingStyle.Render("loading…")
	case async.HasError:
		return errorStyle.Render(snap.Err.Error())
	default:
		return valueStyle.Render(fmt.Sprint(snap.Value))
	}
}
