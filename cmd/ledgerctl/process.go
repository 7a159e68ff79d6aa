package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gstledger/internal/lookup"
	"gstledger/internal/rawimport"
	"gstledger/internal/repository/postgres"
	"gstledger/internal/service"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process IMPORT_ID",
		Short: "Classify a stored import and save its processed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid import id: %w", err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			states, err := lookup.LoadStateTable(ctx, postgres.NewStateRepo(e.db))
			if err != nil {
				return err
			}
			mapping, err := rawimport.LoadMapping(e.cfg.Ledger.MappingFile)
			if err != nil {
				return err
			}

			svc := service.NewLedgerService(
				postgres.NewImportRepo(e.db),
				postgres.NewProcessedDocumentRepo(e.db),
				postgres.NewPartyRepo(e.db),
				states, e.locker(), mapping,
				service.LedgerServiceConfig{DisallowMarker: e.cfg.Ledger.DisallowMarker},
				e.logger,
			)
			doc, err := svc.Process(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("processed %s: %d rows, %d reverse charge, %d mismatched, %d disallow\n",
				doc.ID, len(doc.Canonical), len(doc.ReverseCharge), len(doc.Mismatched), len(doc.Disallow))
			return nil
		},
	}
}
