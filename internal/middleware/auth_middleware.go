package middleware

import (
	"embassy-inventory/internal/handler"
	"embassy-inventory/internal/service"

	"github.com/spf13/cobra"
)

// RequireSession rejects the command unless a valid session exists and puts
// the session user in the command context.
func RequireSession(auth service.AuthService) handler.Middleware {
	return func(cmd *cobra.Command, _ []string) error {
		sess, err := auth.Current()
		if err != nil {
			return err
		}
		cmd.SetContext(handler.WithUser(cmd.Context(), sess.Username))
		return nil
	}
}
