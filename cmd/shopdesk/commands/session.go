package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and persist the session flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := appCtx.gate.Rehydrate(ctx); err != nil {
				appCtx.logger.Warn("session rehydration failed", "error", err)
			}
			u, err := appCtx.gate.Login(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(appCtx.out, "Logged in as %s (%s)\n", u.Name, u.Email)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := appCtx.gate.Rehydrate(ctx); err != nil {
				appCtx.logger.Warn("session rehydration failed", "error", err)
			}
			if err := appCtx.gate.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(appCtx.out, "Logged out")
			return nil
		},
	}
}

func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the persisted session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.gate.Rehydrate(cmd.Context()); err != nil {
				return err
			}
			if u, ok := appCtx.gate.User(); ok {
				fmt.Fprintf(appCtx.out, "%s as %s\n", appCtx.gate.State(), u.Email)
				return nil
			}
			fmt.Fprintln(appCtx.out, appCtx.gate.State())
			return nil
		},
	}
}
