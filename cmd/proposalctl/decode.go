package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposal-backend/internal/codec"
)

// decodeResult показывает, в каком виде лежит секция и во что её
// превращает кодек.
type decodeResult struct {
	Section   codec.Section  `json:"section" yaml:"section"`
	Encoding  codec.Encoding `json:"encoding" yaml:"encoding"`
	Canonical any            `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Fallback  bool           `json:"fallback" yaml:"fallback"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func decodeCmd() *cobra.Command {
	var (
		sectionName string
		raw         string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Показать, как кодек читает сохранённую секцию",
		Long: `Читает значение секции из --raw или из stdin и печатает его форму
хранения и каноническое представление. Если значение не разбирается,
печатается значение по умолчанию и текст ошибки.`,
		Example: `  proposalctl decode --section pricing --raw '"{\"amount\":\"1500\"}"'
  echo '["a","b"]' | proposalctl decode --section deliverables -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := codec.ParseSection(sectionName)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("raw") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("не удалось прочитать stdin: %w", err)
				}
				raw = strings.TrimSpace(string(data))
			}

			result, err := inspectSection(section, raw)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().StringVarP(&sectionName, "section", "s", "", "Имя секции (snake_case или camelCase)")
	cmd.Flags().StringVar(&raw, "raw", "", "Значение в том виде, как оно лежит в хранилище")
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "Формат вывода (yaml, json)")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func inspectSection(section codec.Section, raw string) (*decodeResult, error) {
	result := &decodeResult{
		Section:  section,
		Encoding: codec.Inspect(section, raw),
	}

	value, err := codec.DecodeStrict(section, raw)
	if err != nil {
		result.Fallback = true
		result.Error = err.Error()
		value = codec.Default(section)
	}

	encoded, err := codec.Encode(section, value)
	if err != nil {
		return nil, fmt.Errorf("не удалось закодировать секцию %s: %w", section, err)
	}
	if err := json.Unmarshal([]byte(encoded), &result.Canonical); err != nil {
		return nil, err
	}
	return result, nil
}
