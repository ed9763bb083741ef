package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"rental-quotes/app"
	"rental-quotes/config"
	"rental-quotes/db"
	"rental-quotes/models"
	"rental-quotes/pricing"
	"rental-quotes/utils"
)

func main() {
	root := &cobra.Command{
		Use:          "rental-quotes",
		Short:        "Equipment rental quote service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})

	var flags priceFlags
	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Print the pricing breakdown of a rental",
		Example: `  rental-quotes price --start 2025-06-01 --end 2025-06-08 --item 100:2
  rental-quotes price --start 2025-06-01 --end 2025-06-08 --item 1.5:4:50 --discount 200 --tax-exempt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd, flags)
		},
	}
	f := priceCmd.Flags()
	f.StringVar(&flags.start, "start", "", "Pickup date (YYYY-MM-DD)")
	f.StringVar(&flags.end, "end", "", "Return date (YYYY-MM-DD)")
	f.StringArrayVar(&flags.items, "item", nil, "Line as pricePerUnit:quantity[:unitsPerItem] (may be repeated)")
	f.StringVar(&flags.discount, "discount", "0", "Discount amount")
	f.BoolVar(&flags.taxExempt, "tax-exempt", false, "Skip sales tax")
	f.StringVar(&flags.config, "config", "", "Pricing config file (defaults to PRICING_CONFIG)")
	f.BoolVar(&flags.json, "json", false, "Print the breakdown as JSON")
	_ = priceCmd.MarkFlagRequired("start")
	_ = priceCmd.MarkFlagRequired("end")
	root.AddCommand(priceCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize application
	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	port := strings.TrimPrefix(cfg.Server.Port, ":")
	server := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (env=%s)", server.Addr, cfg.Server.Env)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return err
	}
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()
	return db.Migrate(conn)
}

type priceFlags struct {
	start     string
	end       string
	items     []string
	discount  string
	taxExempt bool
	config    string
	json      bool
}

// parseItemFlag reads "pricePerUnit:quantity[:unitsPerItem]"
func parseItemFlag(id int64, raw string) (models.CartLineItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return models.CartLineItem{}, fmt.Errorf("invalid item %q: expected pricePerUnit:quantity[:unitsPerItem]", raw)
	}
	price, err := decimal.NewFromString(parts[0])
	if err != nil || price.IsNegative() {
		return models.CartLineItem{}, fmt.Errorf("invalid price in item %q", raw)
	}
	quantity, err := strconv.Atoi(parts[1])
	if err != nil || quantity < 1 {
		return models.CartLineItem{}, fmt.Errorf("invalid quantity in item %q", raw)
	}
	unitsPerItem := 1
	if len(parts) == 3 {
		if unitsPerItem, err = strconv.Atoi(parts[2]); err != nil || unitsPerItem < 1 {
			return models.CartLineItem{}, fmt.Errorf("invalid units per item in item %q", raw)
		}
	}
	return models.CartLineItem{
		Equipment: models.Equipment{
			ID:           id,
			Name:         fmt.Sprintf("Line %d", id),
			PricePerUnit: decimal.NewNullDecimal(price),
			UnitsPerItem: unitsPerItem,
		},
		Quantity: quantity,
	}, nil
}

func runPrice(cmd *cobra.Command, flags priceFlags) error {
	start, err := models.ParseDate(flags.start)
	if err != nil {
		return err
	}
	end, err := models.ParseDate(flags.end)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("--end must be after --start")
	}
	discount, err := decimal.NewFromString(flags.discount)
	if err != nil {
		return fmt.Errorf("invalid --discount %q", flags.discount)
	}

	items := make([]models.CartLineItem, 0, len(flags.items))
	for i, raw := range flags.items {
		item, err := parseItemFlag(int64(i+1), raw)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	configPath := flags.config
	if configPath == "" {
		configPath = os.Getenv("PRICING_CONFIG")
	}
	engine, err := pricing.NewEngineFromFile(configPath)
	if err != nil {
		return err
	}

	breakdown := engine.Calculate(pricing.Input{
		Items:       items,
		StartDate:   start,
		EndDate:     end,
		Discount:    discount,
		IsTaxExempt: flags.taxExempt,
	})

	out := cmd.OutOrStdout()
	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(breakdown)
	}

	fmt.Fprintf(out, "Rental days:   %d\n", breakdown.RentalDays)
	for _, line := range breakdown.Lines {
		fmt.Fprintf(out, "  %-10s %4d units x %s = %s\n", line.Name, line.TotalUnits, utils.FormatMoney(line.PricePerUnit), utils.FormatMoney(line.Subtotal))
	}
	fmt.Fprintf(out, "Grand total:   %s\n", utils.FormatMoney(breakdown.GrandTotal))
	fmt.Fprintf(out, "Discount:      %s\n", utils.FormatMoney(breakdown.Discount))
	fmt.Fprintf(out, "Subtotal:      %s\n", utils.FormatMoney(breakdown.SubtotalAfterDiscount))
	fmt.Fprintf(out, "Tax (%s):      %s\n", utils.FormatPercent(breakdown.TaxRate), utils.FormatMoney(breakdown.Tax))
	fmt.Fprintf(out, "Final total:   %s\n", utils.FormatMoney(breakdown.FinalTotal))
	return nil
}
