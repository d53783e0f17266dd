package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransferUseCase orquesta transferencias entre ubicaciones.
// PENDING -> COMPLETED | CANCELLED; la creación no reserva stock.
type TransferUseCase struct {
	txRunner     TxRunner
	movements    *MovementUseCase
	transferRepo repository.TransferRepository
	movRepo      repository.StockMovementRepository
	hooks        *CommitHooks
	log          *logger.Logger
	now          func() time.Time
}

// NewTransferUseCase construye el orquestador. transferRepo y movRepo se usan para lecturas fuera de transacción.
func NewTransferUseCase(
	txRunner TxRunner,
	movements *MovementUseCase,
	transferRepo repository.TransferRepository,
	movRepo repository.StockMovementRepository,
	hooks *CommitHooks,
	log *logger.Logger,
) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:     txRunner,
		movements:    movements,
		transferRepo: transferRepo,
		movRepo:      movRepo,
		hooks:        hooks,
		log:          log,
		now:          time.Now,
	}
}

// TransferItemInput línea solicitada.
type TransferItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateTransferInput entrada para crear una transferencia PENDING.
type CreateTransferInput struct {
	TenantID       string
	FromLocationID *string
	ToLocationID   *string
	Items          []TransferItemInput
	ActorID        string
}

func (in CreateTransferInput) validate() error {
	if in.TenantID == "" || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	// Origen y destino iguales (incluido central -> central) no redistribuyen nada
	if entity.SameLocation(in.FromLocationID, in.ToLocationID) {
		return domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() || !inventory.FitsScale(it.Quantity, inventory.QuantityScale) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// CreateTransfer inserta la transferencia PENDING con sus ítems. Sin efecto sobre el stock.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*entity.Transfer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	t := &entity.Transfer{
		ID:             uuid.New().String(),
		TenantID:       input.TenantID,
		FromLocationID: input.FromLocationID,
		ToLocationID:   input.ToLocationID,
		Status:         entity.TransferPending,
		CreatedBy:      input.ActorID,
		CreatedAt:      uc.now(),
	}
	for _, it := range input.Items {
		t.Items = append(t.Items, entity.TransferItem{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
		})
	}

	err := uc.txRunner.Run(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
	) error {
		return transferRepo.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CompleteTransfer aplica TRANSFER_OUT en origen y TRANSFER_IN en destino para cada ítem
// y marca la transferencia COMPLETED, todo en una sola transacción. Si un ítem dejaría el
// origen negativo falla la transferencia completa: sigue PENDING y no se registra ningún movimiento.
func (uc *TransferUseCase) CompleteTransfer(ctx context.Context, tenantID, transferID, actorID string) (*entity.Transfer, error) {
	var (
		done      *entity.Transfer
		movements []*entity.StockMovement
	)
	err := uc.txRunner.Run(ctx, func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
	) error {
		movements = movements[:0]

		t, err := transferRepo.GetForUpdate(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTransferNotFound
		}
		if !t.CanTransitionTo(entity.TransferCompleted) {
			return domain.ErrTransferInvalidStatus
		}

		if err := lockTransferLevels(ctx, levelRepo, t); err != nil {
			return err
		}

		ref := t.ID
		note := fmt.Sprintf("Transferencia #%s", t.ID)
		for _, item := range t.Items {
			out, err := uc.movements.ApplyMovementInTx(ctx, levelRepo, movRepo, MovementInput{
				TenantID:    t.TenantID,
				ProductID:   item.ProductID,
				LocationID:  t.FromLocationID,
				Type:        entity.MovementTransferOut,
				Quantity:    item.Quantity,
				ReferenceID: &ref,
				Note:        note,
				ActorID:     actorID,
			})
			if err != nil {
				return err
			}
			in, err := uc.movements.ApplyMovementInTx(ctx, levelRepo, movRepo, MovementInput{
				TenantID:    t.TenantID,
				ProductID:   item.ProductID,
				LocationID:  t.ToLocationID,
				Type:        entity.MovementTransferIn,
				Quantity:    item.Quantity,
				ReferenceID: &ref,
				Note:        note,
				ActorID:     actorID,
			})
			if err != nil {
				return err
			}
			movements = append(movements, out.Movement, in.Movement)
		}

		now := uc.now()
		t.Status = entity.TransferCompleted
		t.CompletedAt = &now
		if err := transferRepo.UpdateStatus(ctx, t); err != nil {
			return err
		}
		done = t
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("tenant_id", tenantID).
			Str("transfer_id", transferID).
			Msg("no se pudo completar la transferencia")
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("transfer_id", transferID).
		Int("items", len(done.Items)).
		Msg("transferencia completada")
	uc.hooks.afterCommit(ctx, tenantID, movements...)
	return done, nil
}

// lockTransferLevels bloquea todos los saldos afectados en orden de clave determinista,
// así dos transferencias cruzadas (A->B y B->A) no se bloquean mutuamente.
func lockTransferLevels(ctx context.Context, levelRepo repository.StockLevelRepository, t *entity.Transfer) error {
	keys := make(map[string]entity.LevelKey, len(t.Items)*2)
	for _, item := range t.Items {
		src := t.SourceKey(item.ProductID)
		dst := t.DestinationKey(item.ProductID)
		keys[src.String()] = src
		keys[dst.String()] = dst
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	for _, k := range ordered {
		if _, err := levelRepo.GetForUpdate(ctx, keys[k]); err != nil {
			return err
		}
	}
	return nil
}

// CancelTransfer solo desde PENDING. Actualización de metadatos: no toca saldos ni libro mayor.
func (uc *TransferUseCase) CancelTransfer(ctx context.Context, tenantID, transferID string) (*entity.Transfer, error) {
	var cancelled *entity.Transfer
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
	) error {
		t, err := transferRepo.GetForUpdate(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTransferNotFound
		}
		if !t.CanTransitionTo(entity.TransferCancelled) {
			return domain.ErrTransferInvalidStatus
		}
		t.Status = entity.TransferCancelled
		if err := transferRepo.UpdateStatus(ctx, t); err != nil {
			return err
		}
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// GetTransfer devuelve la transferencia con sus ítems.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, tenantID, transferID string) (*entity.Transfer, error) {
	t, err := uc.transferRepo.Get(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTransferNotFound
	}
	return t, nil
}

// ListTransfers transferencias del tenant, más recientes primero, con ítems.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, tenantID string) ([]*entity.Transfer, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.transferRepo.ListByTenant(ctx, tenantID)
}

// TransferMovements filas del libro generadas al completar la transferencia (vacío si sigue PENDING o fue cancelada).
func (uc *TransferUseCase) TransferMovements(ctx context.Context, tenantID, transferID string) ([]*entity.StockMovement, error) {
	if _, err := uc.GetTransfer(ctx, tenantID, transferID); err != nil {
		return nil, err
	}
	return uc.movRepo.ListByReference(ctx, tenantID, transferID)
}
