// Command watchcli is a terminal client for the neighborhood chat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/johndosdos/atalaia/internal/client"
	"github.com/johndosdos/atalaia/internal/model"
	"github.com/johndosdos/atalaia/internal/ui"
)

type options struct {
	server   string
	email    string
	password string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "watchcli",
		Short:         "Terminal client for the Atalaia neighborhood watch",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("ATALAIA_URL", "http://localhost:8080"), "server base URL")
	flags.StringVar(&opts.email, "email", os.Getenv("ATALAIA_EMAIL"), "account email")
	flags.StringVar(&opts.password, "password", os.Getenv("ATALAIA_PASSWORD"), "account password")

	root.AddCommand(
		newChatCmd(opts),
		newAlertCmd(opts),
		newNeighborhoodsCmd(opts),
		newSignupCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func login(ctx context.Context, opts *options) (*client.Client, model.User, error) {
	if opts.email == "" || opts.password == "" {
		return nil, model.User{}, errors.New("--email and --password are required")
	}

	c, err := client.New(opts.server)
	if err != nil {
		return nil, model.User{}, err
	}

	user, err := c.Login(ctx, opts.email, opts.password)
	if err != nil {
		return nil, model.User{}, fmt.Errorf("login failed: %w", err)
	}
	return c, user, nil
}

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat of your neighborhood",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, user, err := login(ctx, opts)
			if err != nil {
				return err
			}

			conn, err := c.Dial(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			return ui.Run(ctx, user, conn)
		},
	}
}

func newAlertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "alert <PANIC|DANGER|SUSPICIOUS|OK> [text]",
		Short:     "Raise an alert in your neighborhood",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"PANIC", "DANGER", "SUSPICIOUS", "OK"},
		RunE: func(cmd *cobra.Command, args []string) error {
			alertType, err := model.ParseAlertType(args[0])
			if err != nil {
				return err
			}
			var text string
			if len(args) == 2 {
				text = args[1]
			}

			ctx := cmd.Context()
			c, _, err := login(ctx, opts)
			if err != nil {
				return err
			}

			msg, err := c.Alert(ctx, alertType, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert sent: %s %q\n", msg.AlertType, msg.Content)
			return nil
		},
	}
}

func newNeighborhoodsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "neighborhoods",
		Short: "List the neighborhoods open for registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(opts.server)
			if err != nil {
				return err
			}

			hoods, err := c.Neighborhoods(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, h := range hoods {
				fmt.Fprintf(tw, "%s\t%s\n", h.ID, h.Name)
			}
			return tw.Flush()
		},
	}
}

func newSignupCmd(opts *options) *cobra.Command {
	var (
		name string
		role string
		hood string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			hoodID, err := uuid.Parse(hood)
			if err != nil {
				return fmt.Errorf("invalid --neighborhood: %w", err)
			}

			c, err := client.New(opts.server)
			if err != nil {
				return err
			}

			err = c.Signup(cmd.Context(), client.SignupRequest{
				Name:           name,
				Email:          opts.email,
				Password:       opts.password,
				Role:           model.Role(role),
				NeighborhoodID: hoodID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "account created")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(model.RoleResident), "RESIDENT, SCR or INTEGRATOR")
	cmd.Flags().StringVar(&hood, "neighborhood", "", "neighborhood id (see the neighborhoods command)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("neighborhood")
	return cmd
}
