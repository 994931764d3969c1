package cmd

import (
	"github.com/spf13/cobra"
)

// adminCaller resolves the identity for privileged commands. The
// --caller flag wins; otherwise the first configured admin is used.
func adminCaller(cmd *cobra.Command) string {
	if caller, _ := cmd.Flags().GetString("caller"); caller != "" {
		return caller
	}

	if len(cfg.Admins) > 0 {
		return cfg.Admins[0]
	}

	return ""
}
