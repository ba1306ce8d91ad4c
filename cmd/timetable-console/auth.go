package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/session"
)

// credentials fills missing flags from the terminal.
func (c *cli) credentials(form *dto.CredentialsForm) error {
	var err error
	if form.Username == "" {
		if form.Username, err = c.term.Ask("Username"); err != nil {
			return err
		}
	}
	if form.Password == "" {
		if form.Password, err = c.term.Ask("Password"); err != nil {
			return err
		}
	}
	return nil
}

func newLoginCommand(c *cli) *cobra.Command {
	var form dto.CredentialsForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the timetable backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.credentials(&form); err != nil {
				return err
			}
			sess, err := c.console.Login(cmd.Context(), session.CLIKey, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Logged in as %s.\n", sess.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "account password")
	return cmd
}

func newRegisterCommand(c *cli) *cobra.Command {
	var form dto.CredentialsForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a backend account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.credentials(&form); err != nil {
				return err
			}
			if err := c.console.Register(cmd.Context(), form); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Registration successful. Please log in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.console.Logout(cmd.Context(), session.CLIKey); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out.")
			return nil
		},
	}
}
