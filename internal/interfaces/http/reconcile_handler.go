package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/reconcile"
)

// ReconcileHandler maneja las peticiones HTTP de reconciliación (protegido).
type ReconcileHandler struct {
	engine *reconcile.Engine
}

// NewReconcileHandler construye el handler.
func NewReconcileHandler(engine *reconcile.Engine) *ReconcileHandler {
	return &ReconcileHandler{engine: engine}
}

// ReconcileSession godoc
// @Summary      Reconciliar una sesión de caja
// @Description  Compara lo contado contra el esperado derivado del ledger.
//
//	Nunca corrige: una diferencia queda registrada como variación.
//
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileSessionRequest  true  "sesión y monto contado"
// @Success      200   {object}  dto.CashReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reconciliation/cash [post]
func (h *ReconcileHandler) ReconcileSession(c *fiber.Ctx) error {
	var in dto.ReconcileSessionRequest
	if !parseBody(c, &in) {
		return nil
	}
	result, err := h.engine.ReconcileSession(c.Context(), in.SessionID, in.Counted)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CashReconciliationResponse{
		SessionID:  result.SessionID,
		Expected:   result.Expected,
		Counted:    result.Counted,
		Difference: result.Difference,
	})
}

// ReconcileInventory godoc
// @Summary      Reconciliar inventario contra conteo físico
// @Description  Recalcula el esperado de cada producto sumando el ledger y lo
//
//	compara con lo contado. Las diferencias no se corrigen solas:
//	requieren un movimiento ADJUSTMENT explícito con motivo.
//
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InventoryReconciliationRequest  true  "ubicación y conteos"
// @Success      200   {array}   dto.VarianceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reconciliation/inventory [post]
func (h *ReconcileHandler) ReconcileInventory(c *fiber.Ctx) error {
	var in dto.InventoryReconciliationRequest
	if !parseBody(c, &in) {
		return nil
	}
	counted := make(map[string]decimal.Decimal, len(in.Counts))
	for _, line := range in.Counts {
		counted[line.ProductID] = line.Counted
	}
	variances, err := h.engine.ReconcileInventory(c.Context(), in.LocationID, counted)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.VarianceResponse, 0, len(variances))
	for _, v := range variances {
		out = append(out, dto.VarianceResponse{
			ProductID:  v.ProductID,
			LocationID: v.LocationID,
			Expected:   v.Expected,
			Counted:    v.Counted,
			Delta:      v.Delta,
		})
	}
	return c.JSON(out)
}
