package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
)

// ReservationHandler maneja las peticiones HTTP de reservas (protegido).
type ReservationHandler struct {
	uc *ledger.LedgerUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *ledger.LedgerUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar cantidad
// @Description  Retiene cantidad sobre un saldo sin mover stock: reduce lo
//
//	disponible, no lo en mano.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "reserva"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if !parseBody(c, &in) {
		return nil
	}
	res, err := h.uc.Reserve(c.Context(), ledger.ReserveInput{
		ProductID:    in.ProductID,
		LocationID:   in.LocationID,
		Quantity:     in.Quantity,
		DocumentType: in.DocumentType,
		DocumentID:   in.DocumentID,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToReservationResponse(res))
}

// Release godoc
// @Summary      Liberar una reserva
// @Description  Devuelve la cantidad retenida a disponible. No escribe en el
//
//	ledger: nada se movió físicamente.
//
// @Tags         reservations
// @Security     Bearer
// @Param        id  path  string  true  "reserva"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	if err := h.uc.Release(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Fulfill godoc
// @Summary      Cumplir una reserva
// @Description  Convierte la retención en un movimiento OUT real con la
//
//	referencia documental de la reserva.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "reserva"
// @Param        body  body  dto.FulfillRequest  false  "motivo opcional"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillRequest
	if len(c.Body()) > 0 && !parseBody(c, &in) {
		return nil
	}
	mov, err := h.uc.Fulfill(c.Context(), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockMovementResponse(mov))
}

// ListActive godoc
// @Summary      Reservas activas
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "filtrar por producto"
// @Param        location_id  query  string  false  "filtrar por ubicación"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/stock/reservations [get]
func (h *ReservationHandler) ListActive(c *fiber.Ctx) error {
	reservations, err := h.uc.ListActiveReservations(c.Context(), c.Query("product_id"), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, dto.ToReservationResponse(r))
	}
	return c.JSON(out)
}
