// seed_products carga el catálogo (id, nombre, umbral mínimo) desde un CSV en la tabla products.
// Las exportaciones de hojas de cálculo suelen venir en ISO-8859-1: usar -latin1.
//
// Uso: go run ./cmd/seed_products -tenant <tenant_id> [-latin1] productos.csv
// Columnas: id,name,min_threshold (la fila de encabezado es opcional).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant dueño de los productos")
	latin1 := flag.Bool("latin1", false, "el CSV está codificado en ISO-8859-1")
	flag.Parse()
	if *tenantID == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_products -tenant <tenant_id> [-latin1] productos.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	products, err := parseProducts(f, *tenantID, *latin1, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	created, updated, err := seedProducts(ctx, postgres.NewProductRepository(pool), products)
	if err != nil {
		log.Fatal().Err(err).Msg("guardar catálogo")
	}
	log.Info().
		Str("tenant_id", *tenantID).
		Int("created", created).
		Int("updated", updated).
		Msg("catálogo cargado")
}

// seedProducts guarda cada producto. Los que ya existían conservan su created_at.
func seedProducts(ctx context.Context, repo repository.ProductRepository, products []entity.Product) (created, updated int, err error) {
	for i := range products {
		p := &products[i]
		existing, err := repo.GetByID(ctx, p.TenantID, p.ID)
		if err != nil {
			return created, updated, fmt.Errorf("producto %s: %w", p.ID, err)
		}
		if existing != nil {
			p.CreatedAt = existing.CreatedAt
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return created, updated, fmt.Errorf("producto %s: %w", p.ID, err)
		}
		if existing != nil {
			updated++
		} else {
			created++
		}
	}
	return created, updated, nil
}

// parseProducts lee id,name,min_threshold. Omite la fila de encabezado y las filas vacías.
func parseProducts(r io.Reader, tenantID string, latin1 bool, now time.Time) ([]entity.Product, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []entity.Product
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "id") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperaban 3 columnas, hay %d", line, len(rec))
		}
		threshold, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: min_threshold inválido: %w", line, err)
		}
		if threshold.IsNegative() {
			return nil, fmt.Errorf("línea %d: min_threshold no puede ser negativo", line)
		}
		id := strings.TrimSpace(rec[0])
		if id == "" {
			return nil, fmt.Errorf("línea %d: id vacío", line)
		}
		out = append(out, entity.Product{
			ID:           id,
			TenantID:     tenantID,
			Name:         strings.TrimSpace(rec[1]),
			MinThreshold: threshold,
			CreatedAt:    now,
		})
	}
	return out, nil
}
