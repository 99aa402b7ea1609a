package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waxrank/waxrank/pkg/errors"
)

// foldersCommand creates the folders listing command.
func (c *CLI) foldersCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List a user's collection folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(true)
			if err != nil {
				return err
			}
			if user == "" {
				user = cfg.User
			}
			if user == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--user is required")
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			folders, err := client.Folders(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				printWarning("No folders found (user may not exist or collection may be private)")
				return nil
			}

			printInfo("Collection folders for %s", user)
			for _, f := range folders {
				printKeyValue(f.Name, fmt.Sprintf("%d releases", f.Count))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Discogs username")

	return cmd
}
