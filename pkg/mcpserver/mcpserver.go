// Package mcpserver exposes unlock method setup and vault access as MCP
// tools, so assistants can check and change how the vault is unlocked.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bonjoski/unlocksmith/pkg/unlock"
	"github.com/bonjoski/unlocksmith/pkg/unlocksmith"
)

const Name = "unlocksmith"

type MethodInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	AccessibilityID string `json:"accessibility_id"`
	Status          string `json:"status"`
}

type StatusOutput struct {
	Biometrics  string       `json:"biometrics"`
	Methods     []MethodInfo `json:"methods"`
	CanContinue bool         `json:"can_continue"`
	VaultLocked bool         `json:"vault_locked"`
}

type StatusInput struct{}

type SetMethodInput struct {
	Method  string `json:"method" jsonschema:"unlock method id: PIN, FaceScan or FingerprintScan"`
	Enabled bool   `json:"enabled" jsonschema:"turn the method on or off"`
	PIN     string `json:"pin,omitempty" jsonschema:"new PIN, required when turning PIN unlock on"`
}

type UnlockInput struct {
	Method string `json:"method" jsonschema:"unlock method id: PIN, FaceScan or FingerprintScan"`
	PIN    string `json:"pin,omitempty" jsonschema:"PIN, required for PIN unlock"`
}

type UnlockOutput struct {
	Locked bool `json:"locked"`
}

type CipherSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ListInput struct{}

type ListOutput struct {
	Ciphers []CipherSummary `json:"ciphers"`
}

// New returns an MCP server backed by app.
func New(app *unlocksmith.App) *mcp.Server {
	h := &handlers{app: app}
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: unlocksmith.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "unlock_status",
		Description: "Show the available vault unlock methods and which are turned on.",
	}, h.status)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_unlock_method",
		Description: "Turn a vault unlock method on or off. At least one method must stay on.",
	}, h.setMethod)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "unlock_vault",
		Description: "Unlock the vault with biometrics or a PIN.",
	}, h.unlock)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_ciphers",
		Description: "List the items in the unlocked vault. Secrets are not included.",
	}, h.list)
	return server
}

// Run serves app over stdio until ctx is done or the client disconnects.
func Run(ctx context.Context, app *unlocksmith.App) error {
	return New(app).Run(ctx, &mcp.StdioTransport{})
}

type handlers struct {
	app *unlocksmith.App
}

func (h *handlers) status(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	c := h.app.NewSetupController(unlock.Settings, nil, nil)
	defer c.Close()
	if err := c.LoadData(ctx); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, h.describe(c.State()), nil
}

func (h *handlers) setMethod(ctx context.Context, _ *mcp.CallToolRequest, in SetMethodInput) (*mcp.CallToolResult, StatusOutput, error) {
	method, err := unlock.ParseMethod(in.Method)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	prompt := func(context.Context) (string, error) {
		if in.PIN == "" {
			return "", unlocksmith.ErrPINRequired
		}
		return in.PIN, nil
	}
	c := h.app.NewSetupController(unlock.Settings, prompt, nil)
	defer c.Close()
	if err := c.LoadData(ctx); err != nil {
		return nil, StatusOutput{}, err
	}

	state := c.State()
	if kind, ok := method.Kind(); ok {
		if available, isAvailable := state.BiometricsStatus.(unlock.Available); isAvailable && available.Kind != kind {
			return nil, StatusOutput{}, fmt.Errorf("this device offers %s, not %s", unlock.Biometrics(available.Kind).ID(), method.ID())
		}
	}
	if !unlock.WouldContinue(state, method, in.Enabled) {
		return nil, h.describe(state), unlock.ErrContinueDisabled
	}

	if err := c.Toggle(method, in.Enabled); err != nil {
		return nil, StatusOutput{}, err
	}
	c.Wait()

	state = c.State()
	if state.IsOn(method) != in.Enabled {
		return nil, h.describe(state), fmt.Errorf("%s is still %s", method.ID(), state.Status(method))
	}
	if err := c.Continue(ctx); err != nil {
		return nil, h.describe(state), err
	}
	return nil, h.describe(state), nil
}

func (h *handlers) unlock(ctx context.Context, _ *mcp.CallToolRequest, in UnlockInput) (*mcp.CallToolResult, UnlockOutput, error) {
	method, err := unlock.ParseMethod(in.Method)
	if err != nil {
		return nil, UnlockOutput{Locked: true}, err
	}
	if err := h.app.Unlock(ctx, method, in.PIN); err != nil {
		return nil, UnlockOutput{Locked: true}, err
	}
	return nil, UnlockOutput{Locked: h.app.Vault.IsLocked()}, nil
}

func (h *handlers) list(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	ciphers, err := h.app.Vault.List()
	if err != nil {
		return nil, ListOutput{}, err
	}
	out := ListOutput{Ciphers: []CipherSummary{}}
	for _, c := range ciphers {
		out.Ciphers = append(out.Ciphers, CipherSummary{ID: c.ID, Name: c.Name, Type: c.Type.String()})
	}
	return nil, out, nil
}

func (h *handlers) describe(state unlock.SetupState) StatusOutput {
	out := StatusOutput{
		Biometrics:  unlock.DescribeStatus(state.BiometricsStatus),
		Methods:     []MethodInfo{},
		CanContinue: unlock.CanContinue(state),
		VaultLocked: h.app.Vault.IsLocked(),
	}
	for _, m := range unlock.AvailableMethods(state) {
		out.Methods = append(out.Methods, MethodInfo{
			ID:              m.ID(),
			Title:           m.Title(),
			AccessibilityID: m.AccessibilityID(),
			Status:          state.Status(m).String(),
		})
	}
	return out
}
