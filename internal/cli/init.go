package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database",
		Long: `Create the database and apply the schema. Opening an existing database
is harmless, so init may be run any number of times.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cfg, _ := rootOpts.config()
			return s.out.Success(MessageView{Message: "database ready: " + cfg.Database.Path})
		},
	}
}
