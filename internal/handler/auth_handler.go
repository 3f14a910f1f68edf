package handler

import (
	"bufio"
	"strings"

	"embassy-inventory/internal/service"

	"github.com/spf13/cobra"
)

type AuthHandler struct {
	authService     service.AuthService
	defaultUsername string
}

func NewAuthHandler(authService service.AuthService, defaultUsername string) *AuthHandler {
	return &AuthHandler{authService: authService, defaultUsername: defaultUsername}
}

// Login checks the credential and starts a session. Without --password the
// password is read from the first line of standard input.
func (h *AuthHandler) Login() *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass := password
			if !cmd.Flags().Changed("password") {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return usageErrorf("password is required")
				}
				pass = strings.TrimRight(line, "\r\n")
			}
			if pass == "" {
				return usageErrorf("password is required")
			}

			sess, err := h.authService.Login(user, pass)
			if err != nil {
				return err
			}
			printf(cmd, "Logged in as %s until %s\n", sess.Username, sess.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", h.defaultUsername, "username")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	return cmd
}

func (h *AuthHandler) Logout() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := h.authService.Logout(); err != nil {
				return err
			}
			printf(cmd, "Logged out\n")
			return nil
		},
	}
}

func (h *AuthHandler) Whoami() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := h.authService.Current()
			if err != nil {
				return err
			}
			printf(cmd, "%s (session expires %s)\n", sess.Username, sess.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}
