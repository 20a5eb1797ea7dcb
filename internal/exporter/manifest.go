// Package exporter renders downloadable manifests of already-computed data:
// the user's vault and the administrative master-key list. Pure rendering; no
// core logic lives here.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"flashstore/internal/domain"
)

var vaultHeaders = []string{"Transaction ID", "License Key", "Status", "Issued", "Verification"}

// WriteVaultCSV renders the vault as CSV with a UTF-8 BOM for Excel.
func WriteVaultCSV(w io.Writer, entries []domain.VaultEntry) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(vaultHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, e := range entries {
		record := []string{e.TransactionID, e.LicenseKey, e.Status, e.Timestamp, e.Verification}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteVaultXLSX renders the vault as a single-sheet workbook.
func WriteVaultXLSX(w io.Writer, entries []domain.VaultEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "License Vault"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range vaultHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for row, e := range entries {
		values := []string{e.TransactionID, e.LicenseKey, e.Status, e.Timestamp, e.Verification}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	return f.Write(w)
}

// WriteMasterKeyManifest renders the administrative key manifest. Only the
// export/reporting path calls this; the keys are never presented to end
// users as their own.
func WriteMasterKeyManifest(w io.Writer, keys []string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Master Key Manifest"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "MASTER KEY MANIFEST")
	f.SetCellValue(sheet, "A2", "Generated: "+time.Now().UTC().Format(time.RFC3339))
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Total Keys: %d", len(keys)))

	for i, key := range keys {
		cell, _ := excelize.CoordinatesToCellName(1, i+5)
		if err := f.SetCellValue(sheet, cell, fmt.Sprintf("%d. %s", i+1, key)); err != nil {
			return fmt.Errorf("write key %d: %w", i, err)
		}
	}

	return f.Write(w)
}
