package auth

import (
	"fmt"
	"net/http"

	"github.com/crucial707/asset-ledger/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers auth-related CLI commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd(), whoamiCmd())
}

func loginCmd() *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Asset Ledger API",
		Long:  "Authenticate with the Asset Ledger API and store a session token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			var resp struct {
				Success bool   `json:"success"`
				Token   string `json:"token"`
				User    struct {
					Username string `json:"username"`
					FullName string `json:"full_name"`
					Role     string `json:"role"`
				} `json:"user"`
			}
			err := config.Do(http.MethodPost, "login", "", nil,
				map[string]string{"username": username, "password": password}, &resp)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if resp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(resp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Logged in as %s (%s). Token stored locally.\n", resp.User.Username, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err == nil && token != "" {
				// Destroy server-side; a stale token is fine to ignore.
				_ = config.Do(http.MethodGet, "logout", token, nil, nil, nil)
			}
			if err := config.DeleteToken(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user bound to the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return fmt.Errorf("not logged in")
			}

			var resp struct {
				Authenticated bool `json:"authenticated"`
				User          struct {
					Username string `json:"username"`
					FullName string `json:"full_name"`
					Role     string `json:"role"`
				} `json:"user"`
			}
			if err := config.Do(http.MethodGet, "check_auth", token, nil, nil, &resp); err != nil {
				return err
			}
			if !resp.Authenticated {
				return fmt.Errorf("session expired; run login again")
			}
			fmt.Printf("%s (%s) role=%s\n", resp.User.Username, resp.User.FullName, resp.User.Role)
			return nil
		},
	}
}
