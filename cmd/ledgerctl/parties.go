package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
	"gstledger/internal/repository/postgres"
)

func newPartiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parties",
		Short: "Manage a company's supplier directory",
	}

	var company string
	load := &cobra.Command{
		Use:   "load FILE.csv",
		Short: "Upsert suppliers from a CSV with GSTIN and name columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := uuid.Parse(company)
			if err != nil {
				return fmt.Errorf("invalid --company: %w", err)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			parties, skipped, err := readParties(f, companyID)
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			repo := postgres.NewPartyRepo(e.db)
			for i := range parties {
				if err := repo.Upsert(cmd.Context(), &parties[i]); err != nil {
					return err
				}
			}
			cmd.Printf("loaded %d parties, skipped %d rows\n", len(parties), skipped)
			return nil
		},
	}
	load.Flags().StringVar(&company, "company", "", "owning company id")
	_ = load.MarkFlagRequired("company")

	cmd.AddCommand(load)
	return cmd
}

var (
	gstinHeaders = []string{"gstin", "gstin of supplier", "supplier gstin"}
	nameHeaders  = []string{"name", "party name", "supplier name", "trade/legal name"}
)

// readParties reads a header row then one supplier per line. Rows without a
// 15-character GSTIN or a name are counted as skipped.
func readParties(r io.Reader, companyID uuid.UUID) ([]domain.Party, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	gstinCol, nameCol := column(header, gstinHeaders), column(header, nameHeaders)
	if gstinCol < 0 || nameCol < 0 {
		return nil, 0, fmt.Errorf("%w: need GSTIN and name columns", domain.ErrInvalidInput)
	}

	var (
		parties []domain.Party
		skipped int
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("reading parties: %w", err)
		}
		if gstinCol >= len(rec) || nameCol >= len(rec) {
			skipped++
			continue
		}
		gstin := strings.ToUpper(strings.TrimSpace(rec[gstinCol]))
		name := strings.TrimSpace(rec[nameCol])
		if len(gstin) != 15 || name == "" {
			skipped++
			continue
		}
		parties = append(parties, domain.Party{CompanyID: companyID, GSTIN: gstin, Name: name})
	}
	return parties, skipped, nil
}

func column(header, accepted []string) int {
	for i, h := range header {
		key := ledger.HeaderKey(h)
		for _, a := range accepted {
			if key == ledger.HeaderKey(a) {
				return i
			}
		}
	}
	return -1
}
