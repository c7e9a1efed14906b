package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bonjoski/unlocksmith/pkg/mcpserver"
	"github.com/bonjoski/unlocksmith/pkg/unlock"
	"github.com/bonjoski/unlocksmith/pkg/unlocksmith"
	"github.com/bonjoski/unlocksmith/pkg/vault"
)

var errPINMismatch = errors.New("PINs do not match")

// cli holds what the commands need from the outside world.
type cli struct {
	newApp  func() (*unlocksmith.App, error)
	readPIN func(prompt string) (string, error)
}

func defaultCLI() *cli {
	return &cli{newApp: unlocksmith.New, readPIN: newPINReader(os.Stdin).read}
}

// pinReader reads PINs with echo disabled from a terminal, or one line at a
// time when input is piped. The line reader is shared so a buffered line is
// not lost between prompts.
type pinReader struct {
	in    *os.File
	lines *bufio.Reader
}

func newPINReader(in *os.File) *pinReader {
	return &pinReader{in: in, lines: bufio.NewReader(in)}
}

func (r *pinReader) read(prompt string) (string, error) {
	fd := int(r.in.Fd())
	if !term.IsTerminal(fd) {
		line, err := r.lines.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", fmt.Errorf("reading PIN: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	pin, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading PIN: %w", err)
	}
	return string(pin), nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "unlocksmith",
		Short:         "A local vault unlocked with biometrics or a PIN",
		Version:       unlocksmith.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("unlocksmith v{{.Version}}\n")

	root.AddCommand(
		c.setupCmd(),
		c.statusCmd(),
		c.addCmd(),
		c.getCmd(),
		c.listCmd(),
		c.deleteCmd(),
		c.mcpCmd(),
	)
	return root
}

func (c *cli) setupCmd() *cobra.Command {
	var (
		flowName   string
		biometrics bool
		pin        bool
		later      bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Choose how the vault is unlocked",
		Long: "Turn biometric or PIN unlock on or off. Without --biometrics or --pin the\n" +
			"current choices are shown.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flow, err := unlocksmith.ParseFlow(flowName)
			if err != nil {
				return err
			}
			app, err := c.newApp()
			if err != nil {
				return fmt.Errorf("initializing unlocksmith: %w", err)
			}

			ctrl := app.NewSetupController(flow, c.newPIN, nil)
			defer ctrl.Close()
			ctx := cmd.Context()
			if err := ctrl.LoadData(ctx); err != nil {
				return err
			}

			if later {
				if err := ctrl.SetUpLater(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Unlock setup skipped. Run `unlocksmith setup` to choose a method.")
				return nil
			}

			setBiometrics, setPIN := cmd.Flags().Changed("biometrics"), cmd.Flags().Changed("pin")
			changed := setBiometrics || setPIN

			// Biometric changes are saved as soon as they are made, so refuse
			// to turn off the last method before touching anything.
			state := ctrl.State()
			biometricOn, pinOn := state.IsBiometricUnlockOn(), state.IsPinUnlockOn
			if setBiometrics {
				biometricOn = biometrics
			}
			if setPIN {
				pinOn = pin
			}
			if changed && !biometricOn && !pinOn {
				return unlock.ErrContinueDisabled
			}

			if setBiometrics {
				if err := toggleBiometrics(ctrl, biometrics); err != nil {
					return err
				}
			}
			if setPIN {
				if err := ctrl.Toggle(unlock.PIN, pin); err != nil {
					return err
				}
			}
			if changed {
				if err := ctrl.Continue(ctx); err != nil {
					return err
				}
			}

			printState(cmd.OutOrStdout(), ctrl.State())
			return nil
		},
	}
	cmd.Flags().StringVar(&flowName, "flow", "settings", "Setup flow: create-account or settings")
	cmd.Flags().BoolVar(&biometrics, "biometrics", false, "Turn biometric unlock on or off")
	cmd.Flags().BoolVar(&pin, "pin", false, "Turn PIN unlock on or off")
	cmd.Flags().BoolVar(&later, "later", false, "Skip unlock setup for now (create-account flow only)")
	cmd.MarkFlagsMutuallyExclusive("later", "biometrics")
	cmd.MarkFlagsMutuallyExclusive("later", "pin")
	return cmd
}

// toggleBiometrics turns the device's biometric method on or off and waits
// for the platform to answer.
func toggleBiometrics(ctrl *unlock.Controller, value bool) error {
	method := unlock.Biometrics(unlock.FingerprintScan)
	if available, ok := ctrl.State().BiometricsStatus.(unlock.Available); ok {
		method = unlock.Biometrics(available.Kind)
	}
	if err := ctrl.Toggle(method, value); err != nil {
		return err
	}
	ctrl.Wait()

	state := ctrl.State()
	if state.IsOn(method) != value {
		if available, ok := state.BiometricsStatus.(unlock.Available); ok && available.Enabled && !available.HasValidIntegrity {
			return fmt.Errorf("biometric enrollment changed; %s was not turned on", method.Title())
		}
		return fmt.Errorf("%s was not changed", strings.ToLower(method.Title()))
	}
	return nil
}

func (c *cli) newPIN(context.Context) (string, error) {
	pin, err := c.readPIN("New PIN: ")
	if err != nil {
		return "", err
	}
	confirm, err := c.readPIN("Confirm PIN: ")
	if err != nil {
		return "", err
	}
	if pin != confirm {
		return "", errPINMismatch
	}
	return pin, nil
}

func printState(w io.Writer, state unlock.SetupState) {
	fmt.Fprintln(w, state.NavigationTitle())
	fmt.Fprintf(w, "%-28s %-10s\n", "METHOD", "STATUS")
	fmt.Fprintln(w, strings.Repeat("-", 39))
	for _, m := range state.Methods() {
		fmt.Fprintf(w, "%-28s %-10s\n", m.Title(), state.Status(m))
	}
	if !state.IsContinueEnabled() {
		fmt.Fprintln(w, "\nNo unlock method is on.")
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which unlock methods are on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.newApp()
			if err != nil {
				return fmt.Errorf("initializing unlocksmith: %w", err)
			}
			ctrl := app.NewSetupController(unlock.Settings, nil, nil)
			defer ctrl.Close()
			if err := ctrl.LoadData(cmd.Context()); err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), ctrl.State())
			return nil
		},
	}
}

// unlocked builds the app and unlocks its vault with the --method flag, or
// with the preferred method when the flag is empty.
func (c *cli) unlocked(cmd *cobra.Command) (*unlocksmith.App, error) {
	app, err := c.newApp()
	if err != nil {
		return nil, fmt.Errorf("initializing unlocksmith: %w", err)
	}
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("method")
	var method unlock.Method
	if name == "" {
		method, err = app.PreferredMethod(ctx)
	} else {
		method, err = unlock.ParseMethod(name)
	}
	if err != nil {
		return nil, err
	}

	var pin string
	if !method.IsBiometric() {
		if pin, err = c.readPIN("PIN: "); err != nil {
			return nil, err
		}
	}
	if err := app.Unlock(ctx, method, pin); err != nil {
		return nil, fmt.Errorf("unlocking vault: %w", err)
	}
	return app, nil
}

func addMethodFlag(cmd *cobra.Command) {
	cmd.Flags().String("method", "", "Unlock method: FaceScan, FingerprintScan or PIN (default: biometrics when on)")
}

func (c *cli) addCmd() *cobra.Command {
	var (
		username string
		uri      string
	)
	cmd := &cobra.Command{
		Use:   "add <name> <password>",
		Short: "Store a login",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.unlocked(cmd)
			if err != nil {
				return err
			}
			login := &vault.Login{Username: username, Password: args[1]}
			if uri != "" {
				login.URIs = []vault.LoginURI{{URI: uri}}
			}
			stored, err := app.Vault.Put(vault.Cipher{
				Name:         args[0],
				Type:         vault.CipherTypeLogin,
				Login:        login,
				Edit:         true,
				ViewPassword: true,
			})
			if err != nil {
				return fmt.Errorf("saving login: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved '%s' (%s)\n", stored.Name, stored.ID)
			return nil
		},
	}
	addMethodFlag(cmd)
	cmd.Flags().StringVar(&username, "username", "", "Login username")
	cmd.Flags().StringVar(&uri, "uri", "", "Login URI")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <name-or-id>",
		Short: "Print a login's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.unlocked(cmd)
			if err != nil {
				return err
			}
			cipher, err := app.Find(args[0])
			if err != nil {
				return fmt.Errorf("retrieving '%s': %w", args[0], err)
			}
			if cipher.Login == nil || !cipher.ViewPassword {
				return fmt.Errorf("'%s' has no password to show", cipher.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cipher.Login.Password)
			return nil
		},
	}
	addMethodFlag(cmd)
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.unlocked(cmd)
			if err != nil {
				return err
			}
			ciphers, err := app.Vault.List()
			if err != nil {
				return fmt.Errorf("listing items: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(ciphers) == 0 {
				fmt.Fprintln(w, "No items stored.")
				return nil
			}
			fmt.Fprintf(w, "%-36s %-20s %-12s %-20s\n", "ID", "NAME", "TYPE", "REVISED")
			fmt.Fprintln(w, strings.Repeat("-", 91))
			for _, ci := range ciphers {
				fmt.Fprintf(w, "%-36s %-20s %-12s %-20s\n", ci.ID, ci.Name, ci.Type, ci.RevisionDate.Local().Format(time.RFC822))
			}
			return nil
		},
	}
	addMethodFlag(cmd)
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.unlocked(cmd)
			if err != nil {
				return err
			}
			cipher, err := app.Find(args[0])
			if err != nil {
				return fmt.Errorf("deleting '%s': %w", args[0], err)
			}
			if err := app.Vault.Delete(cipher.ID); err != nil {
				return fmt.Errorf("deleting '%s': %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted '%s'\n", cipher.Name)
			return nil
		},
	}
	addMethodFlag(cmd)
	return cmd
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve unlock setup and vault tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.newApp()
			if err != nil {
				return fmt.Errorf("initializing unlocksmith: %w", err)
			}
			return mcpserver.Run(cmd.Context(), app)
		},
	}
}
