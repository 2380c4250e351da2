package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/internal/service"
)

var ErrPasswordConfirm = errors.New("passwords do not match")

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Set the login password",
	Long: `Set the login password.

Prompts for the new password twice. When stdin is not a terminal the
first line read from it is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pw, err := readNewPassword(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		r, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		u, err := defaultUser(ctx, r)
		if err != nil {
			return err
		}

		a := service.NewAuth(r, sessionStore(), serviceOpts()...)
		if err := a.SetPassword(ctx, u.ID, pw); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "password changed for %q\n", u.Username)

		return nil
	},
}

// readNewPassword prompts twice on a terminal, otherwise reads one line.
func readNewPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}

		return nonEmpty(strings.TrimRight(line, "\r\n"))
	}

	prompt := func(s string) (string, error) {
		fmt.Fprint(w, s)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(w)

		return string(b), err
	}

	pw, err := prompt("New password: ")
	if err != nil {
		return "", err
	}
	confirm, err := prompt("Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", ErrPasswordConfirm
	}

	return nonEmpty(pw)
}

func nonEmpty(pw string) (string, error) {
	if pw == "" {
		return "", auth.ErrPasswordEmpty
	}

	return pw, nil
}

func init() {
	Root.AddCommand(passwdCmd)
}
