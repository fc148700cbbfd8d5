package cli

import (
	"fmt"
	"strings"

	"github.com/semmy-space/keystash/internal/output"
)

// BackendsCmd implements the backends command
type BackendsCmd struct{}

type backendRow struct {
	Name     string
	Priority string
	Usable   string
	Selected string
}

// Run probes every registered backend and marks the one selection would use
func (cmd *BackendsCmd) Run(s *Session, fp *FormatterProvider) error {
	s.Logger.Debug("desktop environment",
		"goos", s.Env.GOOS,
		"desktop", strings.Join(s.Env.CurrentDesktop, ":"),
		"wsl", s.Env.WSL,
		"headless", s.Env.Headless,
	)

	candidates := s.Registry.Evaluate(s.Env)
	rows := make([]backendRow, 0, len(candidates))
	chosen := false
	for _, c := range candidates {
		row := backendRow{
			Name:     c.Name,
			Priority: fmt.Sprintf("%.1f", c.Priority),
			Usable:   "no",
		}
		if c.Usable {
			row.Usable = "yes"
		}
		eligible := s.Backend == "" || s.Backend == c.Name
		if c.Usable && eligible && !chosen {
			row.Selected = "*"
			chosen = true
		}
		rows = append(rows, row)
	}

	cols := []output.Column{
		{Name: "Backend", Key: "Name"},
		{Name: "Priority", Key: "Priority"},
		{Name: "Usable", Key: "Usable"},
		{Name: "Selected", Key: "Selected"},
	}
	return fp.Formatter.PrintList(rows, cols)
}
