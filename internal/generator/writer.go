package generator

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/tanmay/corebank/backend/internal/blob"
)

const historyObjectName = "structured_data/credit_history.csv"

// WriteDataset serializes the dataset under the provided directory: the
// credit history CSV plus one file per form and inbox payload.
func WriteDataset(dataset Dataset, dir string) error {
	store, err := blob.NewFSStore(dir)
	if err != nil {
		return fmt.Errorf("open output dir: %w", err)
	}
	defer store.Close()

	return UploadDataset(context.Background(), dataset, store)
}

// UploadDataset pushes the dataset into a blob store, cloud or local.
func UploadDataset(ctx context.Context, dataset Dataset, store blob.Store) error {
	csvData, err := historyCSV(dataset.Profiles)
	if err != nil {
		return err
	}
	if err := store.Write(ctx, historyObjectName, "text/csv", csvData); err != nil {
		return fmt.Errorf("write credit history: %w", err)
	}

	for _, doc := range dataset.Forms {
		if err := store.Write(ctx, doc.Name, doc.ContentType, doc.Content); err != nil {
			return fmt.Errorf("write form: %w", err)
		}
	}
	for _, doc := range dataset.InboxPayloads {
		if err := store.Write(ctx, doc.Name, doc.ContentType, doc.Content); err != nil {
			return fmt.Errorf("write inbox payload: %w", err)
		}
	}
	return nil
}

func historyCSV(profiles []ProfileRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"customer_id", "age", "income", "credit_score", "months_employed",
		"num_credit_lines", "interest_rate", "dti_ratio", "default_risk",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range profiles {
		row := []string{
			p.CustomerID,
			strconv.Itoa(p.Age),
			strconv.FormatFloat(p.Income, 'f', 0, 64),
			strconv.Itoa(p.CreditScore),
			strconv.Itoa(p.MonthsEmployed),
			strconv.Itoa(p.NumCreditLines),
			strconv.FormatFloat(p.InterestRate, 'f', 2, 64),
			strconv.FormatFloat(p.DTIRatio, 'f', 2, 64),
			strconv.Itoa(p.DefaultRisk),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
