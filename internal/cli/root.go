// Package cli implements storefrontctl, an operator tool that drives the
// storefront services against the configured backends.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
)

// annotationStandalone marks commands that run without the backends.
const annotationStandalone = "standalone"

// Options configures the root command.
type Options struct {
	Out        io.Writer
	Logger     *slog.Logger
	LoadConfig func() (*config.Config, error)
}

type env struct {
	opts    Options
	backend string
	locale  string
	core    *app.Core
}

// NewRootCommand builds the storefrontctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Inspect and operate the storefront catalog, carts and favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationStandalone] == "true" {
				return nil
			}
			return e.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.core == nil {
				return nil
			}
			return e.core.Close()
		},
	}
	root.SetOut(opts.Out)
	root.PersistentFlags().StringVar(&e.backend, "backend", "", "state backend override (redis, postgres, memory)")
	root.PersistentFlags().StringVar(&e.locale, "locale", domain.DefaultLocale, "locale used to format prices")

	root.AddCommand(
		newProductsCmd(e),
		newProductCmd(e),
		newCategoriesCmd(e),
		newRefreshCmd(e),
		newPromoCmd(e),
		newCartCmd(e),
		newFavoritesCmd(e),
	)
	return root
}

func (e *env) open(ctx context.Context) error {
	cfg, err := e.opts.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if e.backend != "" {
		cfg.StoreBackend = e.backend
	}
	core, err := app.NewCore(ctx, cfg, e.opts.Logger)
	if err != nil {
		return fmt.Errorf("initialize storefront: %w", err)
	}
	e.core = core
	return nil
}

func (e *env) format(amount decimal.Decimal) string {
	return domain.FormatMoney(amount, domain.CurrencyFormatFor(e.locale))
}

func (e *env) price(p domain.Product) string {
	return e.format(decimal.NewFromFloat(p.Price))
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}
