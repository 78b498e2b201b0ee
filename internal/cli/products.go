package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/production"
)

// minSuggestDistance is the edit distance always accepted for a suggestion;
// longer names allow a third of their length.
const minSuggestDistance = 3

// ProductNotFoundError is returned when a product query matches nothing.
type ProductNotFoundError struct {
	Query      string
	Suggestion string
}

func (e *ProductNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("product %q not found; did you mean %q?", e.Query, e.Suggestion)
	}
	return fmt.Sprintf("product %q not found", e.Query)
}

// resolveProduct finds a product by id or case-insensitive name. When
// nothing matches, the error suggests the closest name.
func resolveProduct(products []production.Product, query string) (production.Product, error) {
	q := strings.TrimSpace(query)
	for _, p := range products {
		if p.ID == q || strings.EqualFold(p.Name, q) {
			return p, nil
		}
	}
	return production.Product{}, &ProductNotFoundError{Query: q, Suggestion: suggestProduct(products, q)}
}

// suggestProduct returns the product name closest to query, or "" when none
// is close enough.
func suggestProduct(products []production.Product, query string) string {
	q := strings.ToLower(query)
	best, bestDist := "", -1
	for _, p := range products {
		d := levenshtein.ComputeDistance(q, strings.ToLower(p.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = p.Name, d
		}
	}
	limit := max(minSuggestDistance, utf8.RuneCountInString(q)/3)
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

// NewProductsCmd lists the product catalog.
func NewProductsCmd() *cobra.Command {
	var (
		all  bool
		list listFlags
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		Example: `  # Active products
  proddash products

  # Every product, as YAML
  proddash products --all --output yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema := production.ProductSchema()
			spec, page, format, err := list.parsed(schema.Fields())
			if err != nil {
				return err
			}
			e, err := newEnv()
			if err != nil {
				return err
			}

			products, err := e.client.Products(commandContext(cmd), all)
			if err != nil {
				return err
			}
			return renderPage(cmd, format, schema, products, spec, page, e.cfg.Dashboard.Locale, nil, nil)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive products")
	list.register(cmd, production.ColName)
	return cmd
}
