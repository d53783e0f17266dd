package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProducts_ConEncabezado(t *testing.T) {
	csv := "id,name,min_threshold\np1,Café molido,10\np2, Azúcar ,2.5\n\n"
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	products, err := parseProducts(strings.NewReader(csv), "t1", false, now)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "t1", products[0].TenantID)
	assert.Equal(t, "Café molido", products[0].Name)
	assert.True(t, products[0].MinThreshold.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Azúcar", products[1].Name)
	assert.True(t, products[1].MinThreshold.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, now, products[1].CreatedAt)
}

func TestParseProducts_Latin1(t *testing.T) {
	// "Jamón" en ISO-8859-1: ó = 0xF3
	raw := append([]byte("p1,Jam"), 0xF3)
	raw = append(raw, []byte("n,3\n")...)

	products, err := parseProducts(bytes.NewReader(raw), "t1", true, time.Now())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Jamón", products[0].Name)
}

func TestParseProducts_Errores(t *testing.T) {
	cases := map[string]string{
		"umbral inválido":   "p1,Leche,abc\n",
		"umbral negativo":   "p1,Leche,-1\n",
		"columnas de menos": "p1,Leche\n",
		"id vacío":          ",Leche,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseProducts(strings.NewReader(in), "t1", false, time.Now())
			assert.Error(t, err)
		})
	}
}

func TestSeedProducts_CuentaAltasYActualizaciones(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Products()
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &entity.Product{ID: "p1", TenantID: "t1", Name: "Café", MinThreshold: decimal.NewFromInt(1), CreatedAt: first}))

	products, err := parseProducts(strings.NewReader("p1,Café molido,10\np2,Azúcar,2\n"), "t1", false, first.Add(time.Hour))
	require.NoError(t, err)

	created, updated, err := seedProducts(ctx, repo, products)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, updated)

	p1, err := repo.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, "Café molido", p1.Name)
	assert.Equal(t, first, p1.CreatedAt, "la actualización no pisa la fecha de alta")
	assert.True(t, p1.MinThreshold.Equal(decimal.NewFromInt(10)))
}
