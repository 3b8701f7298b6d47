package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"medilink-client/internal/domain"
)

// readSecret reads a password without echo on a terminal, or one line otherwise
func (a *app) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return a.readRawLine()
}

func (a *app) readLine() (string, error) {
	line, err := a.readRawLine()
	return strings.TrimSpace(line), err
}

// readRawLine returns the next input line without its terminator.
// Other whitespace is kept.
func (a *app) readRawLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) printIdentity(id *domain.Identity) {
	fmt.Fprintf(a.out, "Signed in as %s", id.DisplayName())
	if id.Role != "" {
		fmt.Fprintf(a.out, " (%s)", id.Role)
	}
	fmt.Fprintln(a.out)
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg domain.Registration
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readSecret("Password: ")
			if err != nil {
				return err
			}
			reg.Password = password
			reg.Role = domain.ParseRole(role)

			identity, err := a.auth.Register(cmd.Context(), &reg)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s\n", reg.Email)
			if identity != nil {
				a.printIdentity(identity)
			} else {
				fmt.Fprintln(a.out, "Run 'medilink login' to sign in.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "account role (USER, RENTER, HOSPITAL_ADMIN)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				fmt.Fprint(a.errOut, "Email: ")
				line, err := a.readLine()
				if err != nil {
					return err
				}
				email = line
			}
			password, err := a.readSecret("Password: ")
			if err != nil {
				return err
			}

			identity, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.printIdentity(identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.auth.WhoAmI()
			if id == nil {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}

			w := newTable(a.out)
			fmt.Fprintf(w, "ID\t%s\n", id.ID)
			fmt.Fprintf(w, "Name\t%s\n", id.Name)
			fmt.Fprintf(w, "Email\t%s\n", id.Email)
			fmt.Fprintf(w, "Role\t%s\n", id.Role)
			if id.ExpiresAt != nil {
				fmt.Fprintf(w, "Expires\t%s\n", id.ExpiresAt.Local().Format(time.RFC1123))
			}
			w.Flush()

			if remote {
				msg, err := a.auth.ValidateRemote(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Backend: %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "also ask the backend to validate the token")
	return cmd
}
