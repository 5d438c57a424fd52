package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/db"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

func renormalizeCmd() *cobra.Command {
	var (
		dryRun bool
		batch  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "renormalize",
		Short: "Переписать устаревшие и дважды закодированные секции",
		Long: `Проходит по предложениям, версиям и шаблонам в PostgreSQL и переписывает
секции, сохранённые в устаревшем виде, в каноническую форму.
Нечитаемые секции не трогаются и попадают в отчёт.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StorePostgres {
				return fmt.Errorf("перенормализация работает только с %s, сейчас STORE_DRIVER=%s", config.StorePostgres, cfg.StoreDriver)
			}

			ctx := cmd.Context()
			conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			report, err := proposal.NewRenormalizeUseCase(persistence.NewRawRepositoryAdapter(conn), batch).Execute(ctx, dryRun)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, report)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Только посчитать, ничего не записывать")
	cmd.Flags().IntVar(&batch, "batch", 100, "Размер пачки записей")
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "Формат отчёта (yaml, json)")
	return cmd
}
