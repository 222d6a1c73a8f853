package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tanmay/corebank/backend/internal/blob"
	"github.com/tanmay/corebank/backend/internal/config"
	"github.com/tanmay/corebank/backend/internal/generator"
)

func main() {
	defaults := generator.DefaultConfig()
	var (
		customers = flag.Int("customers", defaults.NumCustomers, "number of synthetic customers to generate")
		seed      = flag.Int64("seed", defaults.Seed, "random seed for deterministic generation")
		pdfForms  = flag.Bool("pdf-forms", defaults.PDFForms, "render an application form PDF per customer")
		payloads  = flag.Bool("inbox-payloads", defaults.InboxPayloads, "write an OCR-style JSON payload per customer")
		outputDir = flag.String("output-dir", "data", "directory to write the dataset into")
		upload    = flag.Bool("upload", false, "upload to the configured bucket instead of writing locally")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumCustomers:  *customers,
		Seed:          *seed,
		PDFForms:      *pdfForms,
		InboxPayloads: *payloads,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *upload {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		if cfg.Blob.Bucket == "" {
			fmt.Fprintln(os.Stderr, "BLOB_BUCKET must be set for upload")
			os.Exit(1)
		}
		store, err := blob.NewGCSStore(ctx, blob.Options{Bucket: cfg.Blob.Bucket})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open bucket: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := generator.UploadDataset(ctx, dataset, store); err != nil {
			fmt.Fprintf(os.Stderr, "failed to upload dataset: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "Uploaded %d profiles, %d forms, %d payloads to gs://%s\n",
			len(dataset.Profiles), len(dataset.Forms), len(dataset.InboxPayloads), cfg.Blob.Bucket)
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d profiles, %d forms, %d payloads into %s\n",
		len(dataset.Profiles), len(dataset.Forms), len(dataset.InboxPayloads), *outputDir)
}
