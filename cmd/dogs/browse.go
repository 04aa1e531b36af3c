package main

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Apurer/pawmatch/internal/app/workspace"
	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse dogs interactively",
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var program atomic.Pointer[tea.Program]
	redirect := func(_ context.Context, r authdomain.Redirect) {
		if p := program.Load(); p != nil {
			p.Send(tui.RedirectMsg{Redirect: r})
		}
	}

	s, err := openSession(ctx, workspace.OnRedirect(redirect))
	if err != nil {
		return err
	}
	defer s.close()

	p := tea.NewProgram(tui.New(ctx, s.ws), tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)
	_, err = p.Run()
	return err
}
