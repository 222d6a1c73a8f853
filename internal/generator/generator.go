package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// ProfileRecord is one synthetic credit-history row. DefaultRisk is the
// training label: the generator rigs high debt ratios and low credit scores
// toward 1 so the model has something to learn.
type ProfileRecord struct {
	CustomerID     string
	Age            int
	Income         float64
	CreditScore    int
	MonthsEmployed int
	NumCreditLines int
	InterestRate   float64
	DTIRatio       float64
	DefaultRisk    int
}

// Document is a generated artifact keyed by its object name.
type Document struct {
	Name        string
	ContentType string
	Content     []byte
}

// Dataset contains the generated profiles and their companion documents.
type Dataset struct {
	Profiles      []ProfileRecord
	Forms         []Document
	InboxPayloads []Document
}

// Generator produces synthetic credit histories plus the application forms
// and inbox payloads that exercise the document pipeline end to end.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumCustomers <= 0 {
		cfg.NumCustomers = DefaultConfig().NumCustomers
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises the dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	dataset := Dataset{
		Profiles: make([]ProfileRecord, 0, g.cfg.NumCustomers),
	}

	for i := 0; i < g.cfg.NumCustomers; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		profile := g.randomProfile()
		dataset.Profiles = append(dataset.Profiles, profile)

		loanAmount := 5000 + g.rand.Intn(45001)
		appDate := g.randomDate()
		formText := applicationText(profile.CustomerID, int(profile.Income), loanAmount, appDate)

		if g.cfg.PDFForms {
			pdfBytes, err := renderForm(profile.CustomerID, int(profile.Income), loanAmount, appDate)
			if err != nil {
				return Dataset{}, fmt.Errorf("render form for %s: %w", profile.CustomerID, err)
			}
			dataset.Forms = append(dataset.Forms, Document{
				Name:        fmt.Sprintf("application_forms/%s.pdf", profile.CustomerID),
				ContentType: "application/pdf",
				Content:     pdfBytes,
			})
		}

		if g.cfg.InboxPayloads {
			payload, err := json.Marshal(map[string]any{
				"text":       formText,
				"confidence": math.Round((0.8+g.rand.Float64()*0.19)*100) / 100,
			})
			if err != nil {
				return Dataset{}, fmt.Errorf("encode payload for %s: %w", profile.CustomerID, err)
			}
			dataset.InboxPayloads = append(dataset.InboxPayloads, Document{
				Name:        fmt.Sprintf("batch_results/%s.json", profile.CustomerID),
				ContentType: "application/json",
				Content:     payload,
			})
		}
	}

	return dataset, nil
}

func (g *Generator) randomProfile() ProfileRecord {
	creditScore := 300 + g.rand.Intn(551)
	dtiRatio := 0.05 + g.rand.Float64()*0.75

	// Pattern injection: high debt ratio plus a weak score marks a likely
	// default, with a little noise so the boundary is not perfectly crisp.
	risk := 0
	if dtiRatio > 0.45 && creditScore < 580 {
		risk = 1
	}
	if g.rand.Float64() < 0.05 {
		risk = 1 - risk
	}

	return ProfileRecord{
		CustomerID:     uuid.NewString()[:8],
		Age:            21 + g.rand.Intn(50),
		Income:         float64(30000 + g.rand.Intn(120001)),
		CreditScore:    creditScore,
		MonthsEmployed: g.rand.Intn(241),
		NumCreditLines: 1 + g.rand.Intn(10),
		InterestRate:   math.Round((2+g.rand.Float64()*23)*100) / 100,
		DTIRatio:       math.Round(dtiRatio*100) / 100,
		DefaultRisk:    risk,
	}
}

func (g *Generator) randomDate() string {
	start := time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, g.rand.Intn(365)).Format("2006-01-02")
}

// applicationText is the canonical form layout. The extraction patterns in
// the docextract package are written against exactly these labels.
func applicationText(customerID string, income, loanAmount int, appDate string) string {
	return fmt.Sprintf(
		"CREDIT CORP LOAN APPLICATION\n\nApplicant ID: %s\nDeclared Annual Income: $%d\nRequested Loan Amount: $%d\nApplication Date: %s\n",
		customerID, income, loanAmount, appDate,
	)
}

func renderForm(customerID string, income, loanAmount int, appDate string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(190, 10, "CREDIT CORP LOAN APPLICATION", "", 1, "C", false, 0, "")
	pdf.Ln(10)
	pdf.CellFormat(190, 10, fmt.Sprintf("Applicant ID: %s", customerID), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 10, fmt.Sprintf("Declared Annual Income: $%d", income), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 10, fmt.Sprintf("Requested Loan Amount: $%d", loanAmount), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 10, fmt.Sprintf("Application Date: %s", appDate), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
