package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"nodebbs/internal/app"
	"nodebbs/internal/store"
)

var verbose bool

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.Boot(cfgFile, !verbose)
	},
}

func init() {
	userCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	userCmd.AddCommand(userCreateCmd, userInfoCmd, userListCmd, userPassCmd, userRemoveCmd, userRenameCmd)
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		var username, password string

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Username").
					Value(&username).
					Validate(func(str string) error {
						if len(str) < 3 {
							return fmt.Errorf("username must be at least 3 characters")
						}
						if _, err := app.Store.FindUserByUsername(str); err == nil {
							return fmt.Errorf("username already taken")
						}
						return nil
					}),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(func(str string) error {
						if len(str) < 6 {
							return fmt.Errorf("password must be at least 6 characters")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}

		if err := app.Store.CreateUser(username, password); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		fmt.Printf("User '%s' created.\n", username)
		return nil
	},
}

var userInfoCmd = &cobra.Command{
	Use:   "info [username]",
	Short: "Display information about a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := app.Store.FindUserByUsername(args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID:\t%d\n", user.ID)
		fmt.Fprintf(w, "Username:\t%s\n", user.Username)
		fmt.Fprintf(w, "Created At:\t%s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Calls:\t%d\n", user.Calls)
		fmt.Fprintf(w, "Last Call:\t%s\n", lastCall(user))
		return w.Flush()
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := app.Store.ListUsers()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tCALLS\tLAST CALL")
		for i := range users {
			fmt.Fprintf(w, "%s\t%d\t%s\n", users[i].Username, users[i].Calls, lastCall(&users[i]))
		}
		return w.Flush()
	},
}

var userPassCmd = &cobra.Command{
	Use:   "password [username] [new_password]",
	Short: "Set a user's password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Store.UpdatePassword(args[0], args[1]); err != nil {
			return fmt.Errorf("updating password: %w", err)
		}
		fmt.Printf("Password updated for user '%s'.\n", args[0])
		return nil
	},
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove [username]",
	Short: "Permanently remove a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Store.RemoveUser(args[0]); err != nil {
			return fmt.Errorf("removing user: %w", err)
		}
		fmt.Printf("User '%s' removed.\n", args[0])
		return nil
	},
}

var userRenameCmd = &cobra.Command{
	Use:   "rename [old_name] [new_name]",
	Short: "Rename a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Store.RenameUser(args[0], args[1]); err != nil {
			return fmt.Errorf("renaming user: %w", err)
		}
		fmt.Printf("User '%s' renamed to '%s'.\n", args[0], args[1])
		return nil
	},
}

func lastCall(u *store.User) string {
	if u.LastCallAt == nil {
		return "never"
	}
	return u.LastCallAt.Format("2006-01-02 15:04")
}
