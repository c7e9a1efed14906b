package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bonjoski/unlocksmith/pkg/unlock"
	"github.com/bonjoski/unlocksmith/pkg/unlocksmith"
)

func main() {
	// Summon provider contract: take secret ID as first argument
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Error: No secret identifier provided")
		os.Exit(1)
	}

	app, err := unlocksmith.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing unlocksmith: %v\n", err)
		os.Exit(1)
	}

	if err := summon(context.Background(), app, os.Args[1], readPIN, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving secret '%s': %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// summon unlocks the vault and writes the password of ref to w without a
// trailing newline, as Summon expects a raw value.
func summon(ctx context.Context, app *unlocksmith.App, ref string, pinPrompt func() (string, error), w io.Writer) error {
	method, err := app.PreferredMethod(ctx)
	if err != nil {
		return err
	}
	var pin string
	if method == unlock.PIN {
		if pin, err = pinPrompt(); err != nil {
			return err
		}
	}
	if err := app.Unlock(ctx, method, pin); err != nil {
		return err
	}
	defer app.Vault.Lock()

	cipher, err := app.Find(ref)
	if err != nil {
		return err
	}
	if cipher.Login == nil || cipher.Login.Password == "" {
		return fmt.Errorf("'%s' has no password", cipher.Name)
	}
	_, err = io.WriteString(w, cipher.Login.Password)
	return err
}

// readPIN prompts on the controlling terminal, since stdout carries the
// secret.
func readPIN() (string, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("PIN unlock needs a terminal: %w", err)
	}
	defer tty.Close()

	fmt.Fprint(tty, "unlocksmith PIN: ")
	pin, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(tty)
	if err != nil {
		return "", err
	}
	return string(pin), nil
}
