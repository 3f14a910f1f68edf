// Command hash-password prints a bcrypt hash for auth.password_hash.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"embassy-inventory/internal/service"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("hash-password", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	password := fs.String("password", "", "password to hash (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	pass := *password
	if !fs.Changed("password") {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(stderr, "password is required")
			return 2
		}
		pass = strings.TrimRight(line, "\r\n")
	}
	if pass == "" {
		fmt.Fprintln(stderr, "password is required")
		return 2
	}

	hash, err := service.HashPassword(pass)
	if err != nil {
		fmt.Fprintf(stderr, "hash password: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, hash)
	fmt.Fprintln(stderr, "Set it as INVENTORY_AUTH_PASSWORD_HASH or auth.password_hash in config.yaml.")
	return 0
}
