package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and cache an access token",
	Long: `Exchanges an email and password for an access token and stores it in the
token cache. Later runs use the cached token until the server rejects it.

The email defaults to auth.email from the configuration; the password is
prompted for when not configured.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached access token",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().String("email", "", "account email (default auth.email)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	email, err := cmd.Flags().GetString("email")
	if err != nil {
		return fmt.Errorf("getting email flag: %w", err)
	}

	rt, err := loadRuntime(BuildOptions{OneShot: true})
	if err != nil {
		return err
	}
	defer rt.release()

	if rt.Remote == nil || rt.Tokens == nil {
		return errors.New("auth not configured")
	}

	in := bufio.NewReader(cmd.InOrStdin())
	creds := rt.Config.Credentials
	if email != "" && email != creds.Email {
		creds = domain.Credentials{Email: email}
	}
	if creds.Email == "" {
		cmd.Print("Email: ")
		creds.Email = readLine(in)
	}
	if creds.Password == "" {
		cmd.Print("Password: ")
		creds.Password = readPassword(cmd.InOrStdin(), in)
		cmd.Println()
	}
	if !creds.IsSet() {
		return errors.New("email and password are required")
	}

	token, err := rt.Remote.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}
	if err := rt.Tokens.Save(token); err != nil {
		return fmt.Errorf("caching token: %w", err)
	}

	cmd.Printf("Logged in as %s. Token cached at %s\n", creds.Email, rt.Tokens.Path())
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(BuildOptions{OneShot: true})
	if err != nil {
		return err
	}
	defer rt.release()

	if rt.Tokens == nil {
		return errors.New("auth not configured")
	}
	if err := rt.Tokens.Clear(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	cmd.Println("Token removed.")
	return nil
}

func readLine(r *bufio.Reader) string {
	input, _ := r.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads without echo when src is a terminal, and falls back
// to a plain line from buffered otherwise.
func readPassword(src io.Reader, buffered *bufio.Reader) string {
	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(buffered)
}
