package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type StockHandler struct {
	uc      *ledger.LedgerUseCase
	queries *ledger.StockQueryService
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.LedgerUseCase, queries *ledger.StockQueryService) *StockHandler {
	return &StockHandler{uc: uc, queries: queries}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Escribe una entrada inmutable del ledger y actualiza el saldo
//
//	en la misma transacción. Con movement_id la operación es idempotente.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if !parseBody(c, &in) {
		return nil
	}
	mov, err := h.uc.RecordMovement(c.Context(), ledger.MovementInput{
		MovementID:   in.MovementID,
		ProductID:    in.ProductID,
		LocationID:   in.LocationID,
		Zone:         in.Zone,
		Type:         in.Type,
		Delta:        in.Delta,
		Reason:       in.Reason,
		UnitCost:     in.UnitCost,
		DocumentType: in.DocumentType,
		DocumentID:   in.DocumentID,
		Lot:          in.Lot,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "filtrar por producto"
// @Param        location_id  query  string  false  "filtrar por ubicación"
// @Param        type         query  string  false  "filtrar por tipo"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.ListMovementsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	in.DefaultPage()
	movements, err := h.queries.ListMovements(c.Context(), repository.StockMovementFilter{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Type:       in.Type,
		Reason:     in.Reason,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.ToStockMovementResponse(m))
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Saldo de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path  string  true  "producto"
// @Param        location_id  path  string  true  "ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/stock/balances/{location_id}/{product_id} [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.queries.GetBalance(c.Context(), c.Params("product_id"), c.Params("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToBalanceResponse(balance))
}

// ListBalances godoc
// @Summary      Saldos de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  path  string  true  "ubicación"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/stock/balances/{location_id} [get]
func (h *StockHandler) ListBalances(c *fiber.Ctx) error {
	balances, err := h.queries.ListBalancesByLocation(c.Context(), c.Params("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.ToBalanceResponse(b))
	}
	return c.JSON(out)
}

// VerifyBalance godoc
// @Summary      Verificar un saldo contra el ledger
// @Description  Recalcula el saldo sumando los deltas del ledger y lo compara
//
//	con la tabla materializada.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path  string  true  "producto"
// @Param        location_id  path  string  true  "ubicación"
// @Success      200  {object}  dto.VerifyBalanceResponse
// @Router       /api/stock/balances/{location_id}/{product_id}/verify [get]
func (h *StockHandler) VerifyBalance(c *fiber.Ctx) error {
	productID, locationID := c.Params("product_id"), c.Params("location_id")
	v, err := h.queries.VerifyBalance(c.Context(), productID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VerifyBalanceResponse{
		ProductID:  productID,
		LocationID: locationID,
		OnHand:     v.OnHand,
		LedgerSum:  v.LedgerSum,
		Consistent: v.Consistent,
	})
}

// Transfer godoc
// @Summary      Traslado entre ubicaciones
// @Description  Escribe el par TRANSFER_OUT/TRANSFER_IN en una sola
//
//	transacción: o ambas patas comprometen o ninguna.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if !parseBody(c, &in) {
		return nil
	}
	result, err := h.uc.Transfer(c.Context(), ledger.TransferInput{
		ProductID:      in.ProductID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		DocumentType:   in.DocumentType,
		DocumentID:     in.DocumentID,
		Lot:            in.Lot,
		Actor:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		TransferID: result.TransferID,
		Out:        dto.ToStockMovementResponse(result.Out),
		In:         dto.ToStockMovementResponse(result.In),
	})
}
