// seed puebla el catálogo con ítems de demostración y registra su stock
// inicial (causa initial_stock, auto-aprobada) directamente contra la BD.
//
// Uso: go run ./cmd/seed
// Requiere la misma configuración de entorno que cmd/api (DATABASE_URL o DB_*).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

type seedItem struct {
	name      string
	unit      string
	unitValue string
	threshold string
	initial   string
}

var demoItems = []seedItem{
	{name: "Arroz blanco", unit: "kg", unitValue: "1.20", threshold: "50", initial: "400"},
	{name: "Frijol rojo", unit: "kg", unitValue: "2.10", threshold: "40", initial: "250"},
	{name: "Aceite vegetal", unit: "l", unitValue: "3.50", threshold: "30", initial: "120"},
	{name: "Leche en polvo", unit: "kg", unitValue: "6.80", threshold: "20", initial: "80"},
	{name: "Kit de higiene", unit: "unidad", unitValue: "4.00", threshold: "25", initial: "150"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	txnRepo := postgres.NewStockTransactionRepository(pool)
	resRepo := postgres.NewReservationRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Stock.LockTimeoutMS)

	catalogUC := catalog.NewUseCase(itemRepo)
	ledgerUC := appledger.NewUseCase(txRunner, itemRepo, txnRepo, resRepo, nil, appledger.Config{
		AutoApproveCauses: []string{"initial_stock"},
	})

	seeded := 0
	for _, s := range demoItems {
		threshold := mustDecimal(s.threshold)
		item, err := catalogUC.Create(ctx, catalog.CreateInput{
			Name:              s.name,
			Unit:              s.unit,
			UnitValue:         mustDecimal(s.unitValue),
			IsTrackableStock:  true,
			LowStockThreshold: &threshold,
		})
		if err != nil {
			// Nombre duplicado: el seed ya corrió antes, saltar.
			fmt.Fprintf(os.Stderr, "omitiendo %q: %v\n", s.name, err)
			continue
		}
		if _, err := ledgerUC.Record(ctx, appledger.RecordInput{
			ItemID:   item.ID,
			Cause:    "initial_stock",
			Quantity: mustDecimal(s.initial),
			Actor:    "seed",
			Remarks:  "carga inicial de demostración",
		}); err != nil {
			fmt.Fprintf(os.Stderr, "stock inicial de %q: %v\n", s.name, err)
			os.Exit(1)
		}
		seeded++
	}

	fmt.Printf("Seed completado: %d ítems con stock inicial\n", seeded)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("decimal inválido en seed: " + s)
	}
	return d
}
