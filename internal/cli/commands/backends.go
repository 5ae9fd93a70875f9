package commands

import (
	"github.com/leapstack-labs/leapgen/internal/cli/output"
	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/spf13/cobra"
)

// BackendInfo describes one registered backend.
type BackendInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// NewBackendsCommand creates the backends command.
func NewBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available backends",
		Long: `List every backend leapgen can generate, marking the ones the
current configuration enables.`,
		Example: `  leapgen backends
  leapgen backends --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutValidation(cmd)
			infos, err := listBackends(cmdCtx.Cfg.Backends, emit.Options{
				BaseURL:       cmdCtx.Cfg.BaseURL,
				FastAPILayout: cmdCtx.Cfg.FastAPILayout,
			})
			if err != nil {
				return err
			}
			return renderBackends(cmdCtx.Renderer, infos)
		},
	}
}

func listBackends(enabled []string, opts emit.Options) ([]BackendInfo, error) {
	on := make(map[string]bool, len(enabled))
	for _, b := range enabled {
		on[b] = true
	}

	names := emit.Names()
	infos := make([]BackendInfo, 0, len(names))
	for _, name := range names {
		e, err := emit.New(name, opts)
		if err != nil {
			// Options for another backend may be invalid; fall back to defaults.
			if e, err = emit.New(name, emit.Options{}); err != nil {
				return nil, err
			}
		}
		infos = append(infos, BackendInfo{Name: name, Description: e.Description(), Enabled: on[name]})
	}
	return infos, nil
}

func renderBackends(r *output.Renderer, infos []BackendInfo) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	r.Header(1, "Backends")
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		enabled := ""
		if info.Enabled {
			enabled = "yes"
		}
		rows = append(rows, []string{info.Name, enabled, info.Description})
	}
	r.Table([]string{"Backend", "Enabled", "Description"}, rows)
	return nil
}

func completeBackends(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return emit.Names(), cobra.ShellCompDirectiveNoFileComp
}
