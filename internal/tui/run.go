package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
)

// sender forwards renders into the program once it exists.
type sender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *sender) set(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *sender) send(snap host.Snapshot) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(renderMsg(snap))
	}
}

// Run mounts def, runs the loop and blocks in the terminal program until
// the user quits or ctx is done.
func Run(ctx context.Context, def *bind.Definition, l *loop.Loop, keys []Key, logger *slog.Logger, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go l.Run(ctx)

	var out sender
	mounted := make(chan *host.Component, 1)
	errc := make(chan error, 1)
	l.Dispatch(func() {
		comp, err := host.Mount(def, nil, host.WithLogger(logger), host.WithOnRender(out.send))
		if err != nil {
			errc <- err
			return
		}
		mounted <- comp
	})

	var comp *host.Component
	select {
	case comp = <-mounted:
	case err := <-errc:
		return fmt.Errorf("mount %s: %w", def.Name, err)
	case <-ctx.Done():
		return ctx.Err()
	}
	defer l.Dispatch(comp.Destroy)

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(comp, l, keys), opts...)
	out.set(p)

	_, err := p.Run()
	return err
}
