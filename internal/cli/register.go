package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Password == "" {
				return fmt.Errorf("--password is required")
			}

			// Registration happens before an account exists, so no login
			_, err := client.CallAnon(protocol.ActionRegister, protocol.RegisterRequest{
				Username: args[0],
				Password: cfg.Password,
				Role:     model.Role(cfg.Role),
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Registered %s as %s", args[0], cfg.Role))
			return nil
		},
	}
}
