// Package memory adaptador en proceso del libro mayor para desarrollo y tests.
// Serializa las transacciones completas con un mutex: no apto para varias réplicas.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado completo en memoria. Cada Run trabaja sobre una copia y la publica solo si fn no falla.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	products      map[string]entity.Product // tenant|id
	levels        map[string]entity.StockLevel
	movements     []*entity.StockMovement
	transfers     map[string]*entity.Transfer // tenant|id
	transferOrder []string
}

// New crea un store vacío.
func New() *Store {
	return &Store{state: &state{
		products:  map[string]entity.Product{},
		levels:    map[string]entity.StockLevel{},
		transfers: map[string]*entity.Transfer{},
	}}
}

func (s *state) clone() *state {
	c := &state{
		products:      make(map[string]entity.Product, len(s.products)),
		levels:        make(map[string]entity.StockLevel, len(s.levels)),
		movements:     make([]*entity.StockMovement, len(s.movements)),
		transfers:     make(map[string]*entity.Transfer, len(s.transfers)),
		transferOrder: make([]string, len(s.transferOrder)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	// Las filas del libro mayor son inmutables: basta copiar los punteros
	copy(c.movements, s.movements)
	for k, v := range s.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	copy(c.transferOrder, s.transferOrder)
	return c
}

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	c.Items = append([]entity.TransferItem(nil), t.Items...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

func tenantKey(tenantID, id string) string { return tenantID + "|" + id }

// Run ejecuta fn con repositorios sobre una copia del estado; la copia reemplaza al estado
// confirmado solo si fn devuelve nil. Mientras tanto ninguna otra transacción avanza.
func (s *Store) Run(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	transferRepo repository.TransferRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	working := s.state.clone()
	v := &view{st: working}
	if err := fn(&levelRepo{v: v}, &movementRepo{v: v}, &transferRepo{v: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.state = working
	return nil
}

// view da acceso al estado: dentro de Run apunta a la copia de trabajo (mutex ya tomado);
// fuera de una transacción toma el mutex del store en cada llamada.
type view struct {
	st    *state
	store *Store
}

func (v *view) do(fn func(st *state) error) error {
	if v.store == nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func (s *Store) committed() *view { return &view{store: s} }

// Levels repositorio de saldos fuera de transacción (lecturas de alertas y verificación).
func (s *Store) Levels() repository.StockLevelRepository { return &levelRepo{v: s.committed()} }

// Movements repositorio del libro mayor fuera de transacción (kardex).
func (s *Store) Movements() repository.StockMovementRepository {
	return &movementRepo{v: s.committed()}
}

// Transfers repositorio de transferencias fuera de transacción (consultas).
func (s *Store) Transfers() repository.TransferRepository { return &transferRepo{v: s.committed()} }

// Products catálogo en memoria.
func (s *Store) Products() repository.ProductRepository { return &productRepo{v: s.committed()} }

type levelRepo struct{ v *view }

func (r *levelRepo) GetForUpdate(_ context.Context, key entity.LevelKey) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.v.do(func(st *state) error {
		l, ok := st.levels[key.String()]
		if !ok {
			l = *entity.NewEmptyLevel(key)
			st.levels[key.String()] = l
		}
		out = &l
		return nil
	})
	return out, err
}

func (r *levelRepo) Get(_ context.Context, key entity.LevelKey) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.v.do(func(st *state) error {
		if l, ok := st.levels[key.String()]; ok {
			out = &l
			return nil
		}
		out = entity.NewEmptyLevel(key)
		return nil
	})
	return out, err
}

func (r *levelRepo) Save(_ context.Context, level *entity.StockLevel) error {
	return r.v.do(func(st *state) error {
		k := level.Key().String()
		if _, ok := st.levels[k]; !ok {
			return fmt.Errorf("update stock level: fila %s no encontrada", k)
		}
		st.levels[k] = *level
		return nil
	})
}

func (r *levelRepo) ListWithThresholds(_ context.Context, tenantID string, scope entity.LocationScope) ([]entity.LevelWithThreshold, error) {
	var out []entity.LevelWithThreshold
	err := r.v.do(func(st *state) error {
		for _, l := range st.levels {
			if l.TenantID != tenantID || !scope.Matches(l.LocationID) {
				continue
			}
			p, ok := st.products[tenantKey(tenantID, l.ProductID)]
			if !ok {
				continue
			}
			out = append(out, entity.LevelWithThreshold{Level: l, ProductName: p.Name, MinThreshold: p.MinThreshold})
		}
		return nil
	})
	// Mismo orden que el adaptador PostgreSQL: nombre, producto, central primero
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if a.Level.ProductID != b.Level.ProductID {
			return a.Level.ProductID < b.Level.ProductID
		}
		return a.Level.Key().LocationString() < b.Level.Key().LocationString()
	})
	return out, err
}

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.do(func(st *state) error {
		c := *m
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r *movementRepo) ListByProduct(_ context.Context, tenantID, productID string, scope entity.LocationScope) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.ProductID == productID && scope.Matches(m.LocationID) {
				c := *m
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByReference(_ context.Context, tenantID, referenceID string) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.ReferenceID != nil && *m.ReferenceID == referenceID {
				c := *m
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

type transferRepo struct{ v *view }

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.v.do(func(st *state) error {
		k := tenantKey(t.TenantID, t.ID)
		if _, ok := st.transfers[k]; ok {
			return fmt.Errorf("insert stock transfer: %s duplicada", t.ID)
		}
		st.transfers[k] = cloneTransfer(t)
		st.transferOrder = append(st.transferOrder, k)
		return nil
	})
}

func (r *transferRepo) Get(_ context.Context, tenantID, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.v.do(func(st *state) error {
		if t, ok := st.transfers[tenantKey(tenantID, id)]; ok {
			out = cloneTransfer(t)
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el mutex del store ya aísla la transacción.
func (r *transferRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.Get(ctx, tenantID, id)
}

func (r *transferRepo) UpdateStatus(_ context.Context, t *entity.Transfer) error {
	return r.v.do(func(st *state) error {
		k := tenantKey(t.TenantID, t.ID)
		cur, ok := st.transfers[k]
		if !ok {
			return fmt.Errorf("update stock transfer: %s no encontrada", t.ID)
		}
		next := cloneTransfer(cur)
		next.Status = t.Status
		next.CompletedAt = t.CompletedAt
		st.transfers[k] = next
		return nil
	})
}

func (r *transferRepo) ListByTenant(_ context.Context, tenantID string) ([]*entity.Transfer, error) {
	out := []*entity.Transfer{}
	err := r.v.do(func(st *state) error {
		for i := len(st.transferOrder) - 1; i >= 0; i-- {
			t := st.transfers[st.transferOrder[i]]
			if t.TenantID == tenantID {
				out = append(out, cloneTransfer(t))
			}
		}
		return nil
	})
	// Más recientes primero; a igual fecha gana el orden de creación inverso
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

type productRepo struct{ v *view }

func (r *productRepo) Upsert(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		st.products[tenantKey(p.TenantID, p.ID)] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		if p, ok := st.products[tenantKey(tenantID, id)]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}
