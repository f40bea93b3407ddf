package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rescue-console/internal/model"
)

func loginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("RESCUE_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			info, err := opts.console.Auth.Login(cmd.Context(), model.Credentials{Username: username, Password: password})
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", info.UserID, info.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", os.Getenv("RESCUE_USERNAME"), "account name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.nav.silence()
			opts.console.Auth.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := opts.console.Auth.Session(cmd.Context())
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			if !info.Authenticated {
				fmt.Fprintln(out, "not signed in")
				return nil
			}
			fmt.Fprintf(out, "user:    %s\nrole:    %s\nadmin:   %t\n", info.UserID, info.Role, info.IsAdmin)
			if info.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// requireSession fails fast instead of letting the backend answer 401.
func requireSession(opts *options) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if !opts.console.State.IsAuthenticated(cmd.Context()) {
			return model.ErrNotAuthenticated
		}
		return nil
	}
}
