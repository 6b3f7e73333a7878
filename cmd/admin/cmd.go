package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"academia/internal/auth"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// AdminStore creates or updates platform admin accounts.
type AdminStore interface {
	UpsertAdmin(ctx context.Context, name, email, passwordHash string) (string, error)
}

// Sweeper deletes expired rejected activity records.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type commandLine struct {
	migrate func(command string, args ...string) error
	admins  AdminStore
	sweeper Sweeper
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|down|status|...         - run database migrations")
	fmt.Fprintln(cli.out, "  create-admin -email EMAIL -name NAME - create or update a platform admin; the password is prompted")
	fmt.Fprintln(cli.out, "  sweep                              - delete rejected records whose retention has ended")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)
	case "create-admin":
		return cli.createAdmin(ctx, args[2:])
	case "sweep":
		n, err := cli.sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "deleted %d expired record(s)\n", n)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) createAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(cli.out)
	email := fs.String("email", "", "The admin's e-mail address. The password will be prompted next.")
	name := fs.String("name", "Administrator", "Display name.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		fs.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(string(pwd))
	if err != nil {
		return err
	}
	id, err := cli.admins.UpsertAdmin(ctx, strings.TrimSpace(*name), auth.NormalizeEmail(*email), hash)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %s ready (%s)\n", auth.NormalizeEmail(*email), id)
	return nil
}
