package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	deps Dependencies
}

func NewProfilesCmd(deps Dependencies) *cobra.Command {
	pc := &ProfilesCmd{deps: deps}
	return &cobra.Command{
		Use:   "profiles",
		Short: "List analysis endpoint profiles",
		RunE:  pc.run,
	}
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	if pc.deps.Profiles == nil {
		return errors.New("no profiles file was loaded")
	}

	profiles, err := pc.deps.Profiles.GetProfiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles found")
		return nil
	}

	for _, p := range profiles {
		if p.Timeout > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Name, p.Endpoint, p.Timeout)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.Endpoint)
	}
	return nil
}
