package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"resumeqa/internal/tui"
)

func newAskCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask",
		Short: "Ask questions about the resume in an interactive terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			svc, _, err := buildService(cfg, nil, true)
			if err != nil {
				return err
			}
			m := tui.New(svc, svc.Summary(), cfg.Retriever.TopK, cfg.LLM.Timeout())
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
