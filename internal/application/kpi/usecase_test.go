package kpi_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/kpi"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// repoFake almacén en memoria indexado por clave compuesta, con el mismo
// contrato de idempotencia que el adaptador real.
type repoFake struct {
	entries map[string]*entity.KpiEntry
	purged  int64
}

func newRepoFake() *repoFake {
	return &repoFake{entries: make(map[string]*entity.KpiEntry)}
}

func (f *repoFake) Upsert(_ context.Context, tenantID string, entry *entity.KpiEntry) error {
	cp := *entry
	f.entries[tenantID+"/"+entry.CompositeKey()] = &cp
	return nil
}

func (f *repoFake) List(_ context.Context, tenantID string, ref time.Time) ([]entity.KpiEntry, error) {
	var out []entity.KpiEntry
	for k, e := range f.entries {
		if len(k) > len(tenantID) && k[:len(tenantID)] == tenantID && !e.Expired(ref) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *repoFake) Get(_ context.Context, tenantID, module, key string) (*entity.KpiEntry, error) {
	e, ok := f.entries[tenantID+"/"+module+":"+key]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (f *repoFake) PurgeExpired(_ context.Context, tenantID string, ref time.Time) (int64, error) {
	return f.purged, nil
}

// Dos escrituras de la misma clave compuesta dejan una sola entrada, con la
// expiración extendida a la escritura más reciente.
func TestUpsert_IdentidadYExtensionDeVigencia(t *testing.T) {
	repo := newRepoFake()
	uc := kpi.New(repo)

	primero, err := uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Module: "Insights",
		Key:    "trend_index",
		Value:  decimal.NewFromFloat(71.3),
	})
	require.NoError(t, err)

	segundo, err := uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Module: "Insights",
		Key:    "trend_index",
		Value:  decimal.NewFromFloat(72.9),
	})
	require.NoError(t, err)

	assert.Len(t, repo.entries, 1, "misma clave compuesta no debe duplicar")
	guardado, err := repo.Get(context.Background(), "camp-a", "Insights", "trend_index")
	require.NoError(t, err)
	require.NotNil(t, guardado)
	assert.True(t, guardado.Value.Equal(decimal.NewFromFloat(72.9)),
		"la última escritura gana")
	assert.True(t, segundo.ExpiresAt.After(primero.ExpiresAt) || segundo.ExpiresAt.Equal(primero.ExpiresAt),
		"la vigencia se extiende con cada escritura")
}

// Sin indicar TTL, la entrada vence ahora + 60 minutos.
func TestUpsert_TTLPorDefecto(t *testing.T) {
	uc := kpi.New(newRepoFake())

	antes := time.Now()
	entry, err := uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Module: "Insights",
		Key:    "trend_index",
		Value:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	esperado := antes.Add(time.Duration(kpi.DefaultTTLMinutes) * time.Minute)
	assert.WithinDuration(t, esperado, entry.ExpiresAt, 5*time.Second)
}

// Un TTL explícito se respeta.
func TestUpsert_TTLExplicito(t *testing.T) {
	uc := kpi.New(newRepoFake())

	antes := time.Now()
	entry, err := uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Module:           "Insights",
		Key:              "trend_index",
		Value:            decimal.NewFromInt(10),
		ExpiresInMinutes: 5,
	})
	require.NoError(t, err)

	assert.WithinDuration(t, antes.Add(5*time.Minute), entry.ExpiresAt, 5*time.Second)
}

// Module y Key son obligatorios.
func TestUpsert_ClaveIncompleta(t *testing.T) {
	uc := kpi.New(newRepoFake())

	_, err := uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Key:   "trend_index",
		Value: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Module: "Insights",
		Value:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// List no devuelve entradas vencidas: la expiración es un filtro de lectura.
func TestList_FiltraVencidas(t *testing.T) {
	repo := newRepoFake()
	uc := kpi.New(repo)

	vencida := &entity.KpiEntry{
		TenantID: "camp-a", Module: "Insights", Key: "vieja",
		Value:     decimal.NewFromInt(1),
		ExpiresAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, repo.Upsert(context.Background(), "camp-a", vencida))

	_, err := uc.Upsert(context.Background(), "camp-a", dto.KpiWriteRequest{
		Module: "Insights", Key: "vigente", Value: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	out, err := uc.List(context.Background(), "camp-a")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "vigente", out[0].Key)
}
