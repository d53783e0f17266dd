package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// MovementUseCase punto único de mutación del stock: bloquea la fila del saldo
// (SELECT FOR UPDATE), recalcula el costo promedio si corresponde, agrega la fila
// al libro mayor y actualiza el saldo, todo en una misma transacción.
type MovementUseCase struct {
	txRunner TxRunner
	hooks    *CommitHooks
	log      *logger.Logger
	now      func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, hooks *CommitHooks, log *logger.Logger) *MovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementUseCase{txRunner: txRunner, hooks: hooks, log: log, now: time.Now}
}

// MovementInput comando ya validado por la capa llamadora.
// LocationID nil = saldo central. UnitCost solo altera el costo promedio en PURCHASE.
type MovementInput struct {
	TenantID    string
	ProductID   string
	LocationID  *string
	Type        entity.MovementType
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	ReferenceID *string
	Note        string
	ActorID     string
}

// MovementResult saldo resultante y fila agregada al libro mayor.
type MovementResult struct {
	Level    *entity.StockLevel
	Movement *entity.StockMovement
}

func (in MovementInput) validate() error {
	if in.TenantID == "" || in.ProductID == "" || !in.Type.Valid() {
		return domain.ErrInvalidInput
	}
	if !in.Quantity.IsPositive() || !inventory.FitsScale(in.Quantity, inventory.QuantityScale) {
		return domain.ErrInvalidInput
	}
	if in.UnitCost != nil && (in.UnitCost.IsNegative() || !inventory.FitsScale(*in.UnitCost, inventory.UnitCostScale)) {
		return domain.ErrInvalidInput
	}
	return nil
}

func (in MovementInput) key() entity.LevelKey {
	return entity.LevelKey{TenantID: in.TenantID, ProductID: in.ProductID, LocationID: in.LocationID}
}

// ApplyMovement abre una transacción propia y aplica un único movimiento.
// Devuelve domain.ErrNegativeStockNotAllowed sin escribir nada si el saldo quedaría negativo.
// No reintenta: el llamador decide qué hacer ante un fallo.
func (uc *MovementUseCase) ApplyMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		_ repository.TransferRepository,
	) error {
		r, err := uc.ApplyMovementInTx(ctx, levelRepo, movRepo, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNegativeStockNotAllowed) {
			uc.log.Warn().
				Str("tenant_id", input.TenantID).
				Str("product_id", input.ProductID).
				Str("movement_type", string(input.Type)).
				Str("quantity", input.Quantity.String()).
				Msg("movimiento rechazado: stock insuficiente")
		}
		return nil, err
	}

	uc.hooks.afterCommit(ctx, input.TenantID, result.Movement)
	return result, nil
}

// ApplyMovementInTx aplica el movimiento con repositorios atados a la transacción del llamador
// (p. ej. cierre de venta o recepción de compra). No hace Commit: el llamador es dueño de la tx
// y, una vez confirmada, debe llamar a Committed con los movimientos devueltos.
func (uc *MovementUseCase) ApplyMovementInTx(
	ctx context.Context,
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	input MovementInput,
) (*MovementResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	// Bloquea la fila del saldo (la crea en cero si no existe) para evitar lost updates
	level, err := levelRepo.GetForUpdate(ctx, input.key())
	if err != nil {
		return nil, err
	}

	// La fecha se toma con la fila ya bloqueada
	now := uc.now()
	qty := input.Quantity.Abs()
	nextQty := level.Quantity.Add(input.Type.Signed(qty))
	if nextQty.IsNegative() {
		return nil, domain.ErrNegativeStockNotAllowed
	}

	if input.Type == entity.MovementPurchase && input.UnitCost != nil {
		level.AverageCost = inventory.WeightedAverageCost(level.Quantity, level.AverageCost, qty, *input.UnitCost)
	}
	level.Quantity = nextQty
	level.UpdatedAt = now

	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		TenantID:    input.TenantID,
		ProductID:   input.ProductID,
		LocationID:  input.LocationID,
		Type:        input.Type,
		ReferenceID: input.ReferenceID,
		Quantity:    qty,
		Note:        input.Note,
		CreatedBy:   input.ActorID,
		CreatedAt:   now,
	}
	if input.UnitCost != nil {
		unitCost := *input.UnitCost
		totalCost := unitCost.Mul(qty).Round(2)
		mov.UnitCost = &unitCost
		mov.TotalCost = &totalCost
	}

	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := levelRepo.Save(ctx, level); err != nil {
		return nil, err
	}
	return &MovementResult{Level: level, Movement: mov}, nil
}

// Committed dispara los efectos posteriores al commit (invalidación de caché de alertas y
// publicación de eventos) para movimientos aplicados con ApplyMovementInTx en una
// transacción del llamador. Solo debe llamarse después de un Commit exitoso.
func (uc *MovementUseCase) Committed(ctx context.Context, tenantID string, movements ...*entity.StockMovement) {
	uc.hooks.afterCommit(ctx, tenantID, movements...)
}
