// proposalctl обслуживает хранилище предложений: переписывает секции в
// каноническую форму и показывает, как кодек читает сохранённое значение.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/proposal-backend/internal/logger"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "proposalctl",
		Short:         "Обслуживание документов предложений",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
			logger.SetTextFormatter()
			logger.Log.SetOutput(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Уровень логов (debug, info, warn, error)")

	cmd.AddCommand(renormalizeCmd(), decodeCmd())
	return cmd
}

// writeOutput печатает значение в выбранном формате.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("неизвестный формат %q, доступны: %s, %s", format, outputYAML, outputJSON)
	}
}
