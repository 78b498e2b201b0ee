package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sgmi/proddash/internal/engine/batch"
	"github.com/sgmi/proddash/internal/form"
	"github.com/sgmi/proddash/internal/production"
)

// Plan form fields.
const (
	fieldProduct  = "product"
	fieldQuantity = "quantity"
	fieldShift    = "shift"
	fieldDate     = "date"
)

// Plan import defaults.
const (
	defaultImportBatchSize   = 10
	defaultImportConcurrency = 2
)

const planCreatedMessage = "Plano de produção criado com sucesso!"

// planCreator turns raw plan input into plan requests and submits them.
type planCreator struct {
	e        *env
	products []production.Product
}

// request validates raw values the way the plan form does.
func (p *planCreator) request(values map[string]string) (production.PlanRequest, error) {
	product, err := resolveProduct(p.products, values[fieldProduct])
	if err != nil {
		return production.PlanRequest{}, &production.ValidationError{Field: fieldProduct, Message: err.Error()}
	}
	qty, err := production.ParseQuantity(values[fieldQuantity])
	if err != nil {
		var verr *production.ValidationError
		if errors.As(err, &verr) {
			return production.PlanRequest{}, &production.ValidationError{Field: fieldQuantity, Message: verr.Message}
		}
		return production.PlanRequest{}, err
	}
	shift, err := production.ParseShift(values[fieldShift])
	if err != nil {
		return production.PlanRequest{}, &production.ValidationError{Field: fieldShift, Message: err.Error()}
	}
	date, err := ParseDate(values[fieldDate])
	if err != nil {
		return production.PlanRequest{}, &production.ValidationError{Field: fieldDate, Message: production.MsgInvalidDate}
	}
	return production.PlanRequest{
		ProductID:       product.ID,
		PlannedQuantity: qty,
		Shift:           shift,
		PlannedDate:     date.Format(time.DateOnly),
	}, nil
}

func newPlanCreator(ctx context.Context, e *env) (*planCreator, error) {
	products, err := e.client.ActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &planCreator{e: e, products: products}, nil
}

// NewPlanCreateCmd schedules one production plan.
func NewPlanCreateCmd() *cobra.Command {
	var values = map[string]string{}
	var product, quantity, shift, date string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a production plan",
		Long: `Schedules a production plan. The product may be given by id or name;
a misspelled name gets a suggestion. Quantities accept a decimal comma.`,
		Example: `  proddash plan create --product "Pão Francês" --quantity 120,5 --shift morning --date 2025-08-13`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}
			creator, err := newPlanCreator(ctx, e)
			if err != nil {
				return err
			}

			values[fieldProduct] = product
			values[fieldQuantity] = quantity
			values[fieldShift] = shift
			values[fieldDate] = date

			var id string
			state := form.New(values, func(ctx context.Context, v map[string]string) error {
				req, err := creator.request(v)
				if err != nil {
					return err
				}
				id, err = e.client.CreatePlan(ctx, req)
				return err
			}, planCreatedMessage)

			if err := state.Submit(ctx); err != nil {
				if fe := state.Err(); fe != nil {
					if fe.Field != "" {
						return fmt.Errorf("%s: %s", fe.Field, fe.Message)
					}
					return errors.New(fe.Message)
				}
				return err
			}
			cmd.Println(state.Success())
			if id != "" {
				cmd.Printf("ID: %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "product id or name (required)")
	cmd.Flags().StringVar(&quantity, "quantity", "", "planned kilograms (required)")
	cmd.Flags().StringVar(&shift, "shift", string(production.ShiftMorning), "shift: morning, afternoon or night")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "planned date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

// planFile is the document read by plan import.
type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

// planEntry is one plan in an import file. Quantity may be a number or a
// string with a decimal comma.
type planEntry struct {
	Product  string    `yaml:"product"`
	Quantity yaml.Node `yaml:"quantity"`
	Shift    string    `yaml:"shift"`
	Date     string    `yaml:"date"`
}

func (p planEntry) values() map[string]string {
	return map[string]string{
		fieldProduct:  p.Product,
		fieldQuantity: p.Quantity.Value,
		fieldShift:    p.Shift,
		fieldDate:     p.Date,
	}
}

// readPlanFile parses an import file.
func readPlanFile(path string) ([]planEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var doc planFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	if len(doc.Plans) == 0 {
		return nil, fmt.Errorf("plan file %s has no plans", path)
	}
	return doc.Plans, nil
}

// importResult is the outcome of one imported plan.
type importResult struct {
	Line int    `json:"line"            yaml:"line"`
	ID   string `json:"id,omitempty"    yaml:"id,omitempty"`
	Err  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewPlanImportCmd schedules every plan in a YAML file, in batches.
func NewPlanImportCmd() *cobra.Command {
	var (
		batchSize   int
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Schedule production plans from a YAML file",
		Long: `Reads a list of plans and submits them in batches. Every plan is validated
before anything is sent; a file with invalid plans submits nothing.

File format:

  plans:
    - product: Broa
      quantity: 120
      shift: morning
      date: 2025-08-13`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			entries, err := readPlanFile(args[0])
			if err != nil {
				return err
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			creator, err := newPlanCreator(ctx, e)
			if err != nil {
				return err
			}

			reqs, err := validatePlans(creator, entries)
			if err != nil {
				return err
			}
			if dryRun {
				cmd.Printf("%d planos válidos; nada foi enviado (--dry-run)\n", len(reqs))
				return nil
			}

			proc, err := batch.NewProcessor[production.PlanRequest](batchSize)
			if err != nil {
				return err
			}
			var progressMu sync.Mutex
			proc.WithProgress(func(s batch.Snapshot) {
				progressMu.Lock()
				defer progressMu.Unlock()
				cmd.PrintErrf("  lote %d/%d · %.0f%%\n", s.ProcessedBatches, s.TotalBatches, s.Percent())
			})

			results := make([]importResult, len(reqs))
			var mu sync.Mutex
			bounds := proc.Bounds(len(reqs))
			err = proc.ProcessConcurrent(ctx, reqs, func(ctx context.Context, items []production.PlanRequest, index int) error {
				var errs []error
				for i, req := range items {
					line := bounds[index][0] + i
					id, createErr := e.client.CreatePlan(ctx, req)
					mu.Lock()
					results[line] = importResult{Line: line + 1, ID: id}
					if createErr != nil {
						results[line].Err = createErr.Error()
						errs = append(errs, fmt.Errorf("plan %d: %w", line+1, createErr))
					}
					mu.Unlock()
				}
				return errors.Join(errs...)
			}, concurrency)

			created := 0
			for _, r := range results {
				if r.ID != "" {
					created++
				}
			}
			cmd.Printf("%d de %d planos criados\n", created, len(reqs))
			logger.Info().Ctx(ctx).
				Str("operation", "plan_import").
				Int("created", created).
				Int("total", len(reqs)).
				Msg("plan import finished")
			return err
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", defaultImportBatchSize, "plans per batch")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultImportConcurrency, "batches submitted at once")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without submitting")
	return cmd
}

// validatePlans converts every entry, reporting all invalid ones at once.
func validatePlans(creator *planCreator, entries []planEntry) ([]production.PlanRequest, error) {
	reqs := make([]production.PlanRequest, 0, len(entries))
	var errs []error
	for i, entry := range entries {
		req, err := creator.request(entry.values())
		if err != nil {
			errs = append(errs, fmt.Errorf("plan %d: %w", i+1, err))
			continue
		}
		reqs = append(reqs, req)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reqs, nil
}
