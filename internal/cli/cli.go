// Package cli holds helpers shared by the cobra commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alturino/salesrep/internal/infra"
)

const FlagConfig = "config"

// NewApp builds the command's collaborators from the root --config flag.
func NewApp(cmd *cobra.Command, appName string) (context.Context, *infra.App, error) {
	configName, err := cmd.Root().PersistentFlags().GetString(FlagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed reading flag=%s with error=%w", FlagConfig, err)
	}
	return infra.NewApp(cmd.Context(), appName, configName)
}

// Print writes v to the command output as indented JSON.
func Print(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed printing output with error=%w", err)
	}
	return nil
}
