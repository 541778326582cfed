package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/princebabou/wishCraft/internal/client"
	"github.com/princebabou/wishCraft/internal/models"
)

type createOptions struct {
	server  string
	slug    string
	name    string
	age     int
	message string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card through the API and print its share link",
		Example: `  wishcraft create --name "Mary Jane" --age 7 --message "Have a great day!"
  wishcraft create --slug party --name Alice --age 30 --message Hi --server https://wish.example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := opts.server
			if server == "" {
				server = rootOpts.serverURL()
			}
			c, err := client.New(server)
			if err != nil {
				return err
			}

			age := models.Age(opts.age)
			resp, err := c.CreateCard(cmd.Context(), &models.CreateCardRequest{
				Slug:    opts.slug,
				Name:    opts.name,
				Age:     &age,
				Message: opts.message,
			})
			if err != nil {
				return fmt.Errorf("create card: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Card created for %s (%s)\n", resp.Result.Name, resp.Result.Slug)
			fmt.Fprintln(out, resp.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "API root, default $BASE_URL or http://localhost:$PORT")
	cmd.Flags().StringVar(&opts.slug, "slug", "", "card slug, derived from name and age when empty")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "recipient name")
	cmd.Flags().IntVarP(&opts.age, "age", "a", 0, "recipient age")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "message revealed once the candles are blown out")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
