package objdiffcmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"

	"github.com/objdiff/objdiff-go/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the property schema as syntax-highlighted JSON",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	raw, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(raw), "json", "terminal256", "monokai"); err != nil {
		// Highlighting is cosmetic; fall back to plain JSON rather than fail.
		buf.Reset()
		buf.Write(raw)
	}
	fmt.Print(buf.String())
	fmt.Println()
	return nil
}
