package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/cash"
	"github.com/tu-usuario/pos-ledger/internal/application/dto"
)

// CashHandler maneja las peticiones HTTP de sesiones de caja (protegido).
type CashHandler struct {
	uc *cash.SessionUseCase
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *cash.SessionUseCase) *CashHandler {
	return &CashHandler{uc: uc}
}

func toCountLines(in []dto.CountLineRequest) []cash.CountLine {
	if len(in) == 0 {
		return nil
	}
	out := make([]cash.CountLine, 0, len(in))
	for _, l := range in {
		out = append(out, cash.CountLine{Denomination: l.Denomination, Quantity: l.Quantity})
	}
	return out
}

// OpenSession godoc
// @Summary      Abrir sesión de caja
// @Description  Crea la sesión OPEN y deja trazado el fondo inicial como
//
//	movimiento OPENING. Solo una sesión abierta por caja.
//
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "apertura"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions [post]
func (h *CashHandler) OpenSession(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if !parseBody(c, &in) {
		return nil
	}
	session, err := h.uc.OpenSession(c.Context(), cash.OpenSessionInput{
		RegisterID:    in.RegisterID,
		OpeningAmount: in.OpeningAmount,
		OpenedBy:      GetUserID(c),
		OpeningCount:  toCountLines(in.OpeningCount),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCashSessionResponse(session))
}

// RecordMovement godoc
// @Summary      Registrar movimiento de caja
// @Description  Escribe un movimiento contra la sesión abierta con el saldo
//
//	antes/después derivado del ledger de la sesión.
//
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "sesión"
// @Param        body  body  dto.CashMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/{id}/movements [post]
func (h *CashHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if !parseBody(c, &in) {
		return nil
	}
	mov, err := h.uc.RecordMovement(c.Context(), cash.MovementInput{
		SessionID:     c.Params("id"),
		Type:          in.Type,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		DocumentType:  in.DocumentType,
		DocumentID:    in.DocumentID,
		Notes:         in.Notes,
		Actor:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCashMovementResponse(mov))
}

// RegisterCount godoc
// @Summary      Arqueo intermedio
// @Description  Registra un conteo físico por denominaciones sin cerrar la
//
//	sesión. El total declarado debe cuadrar con las líneas.
//
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "sesión"
// @Param        body  body  dto.RegisterCountRequest  true  "arqueo"
// @Success      201   {object}  dto.CashCountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/{id}/counts [post]
func (h *CashHandler) RegisterCount(c *fiber.Ctx) error {
	var in dto.RegisterCountRequest
	if !parseBody(c, &in) {
		return nil
	}
	count, err := h.uc.RegisterCount(c.Context(), cash.CountInput{
		SessionID:    c.Params("id"),
		TotalCounted: in.TotalCounted,
		Lines:        toCountLines(in.Lines),
		CountedBy:    GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCashCountResponse(count))
}

// CloseSession godoc
// @Summary      Cerrar sesión de caja
// @Description  Deriva el esperado del ledger, registra la diferencia contra
//
//	lo contado y escribe la pata CLOSING. El cierre es terminal.
//
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "sesión"
// @Param        body  body  dto.CloseSessionRequest  true  "cierre"
// @Success      200   {object}  dto.CashSessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/{id}/close [post]
func (h *CashHandler) CloseSession(c *fiber.Ctx) error {
	var in dto.CloseSessionRequest
	if !parseBody(c, &in) {
		return nil
	}
	session, err := h.uc.CloseSession(c.Context(), cash.CloseInput{
		SessionID:     c.Params("id"),
		CountedAmount: in.CountedAmount,
		ClosingCount:  toCountLines(in.ClosingCount),
		ClosedBy:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCashSessionResponse(session))
}

// GetSession godoc
// @Summary      Detalle de una sesión con sus movimientos
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "sesión"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/{id} [get]
func (h *CashHandler) GetSession(c *fiber.Ctx) error {
	session, movements, err := h.uc.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	movs := make([]*dto.CashMovementResponse, 0, len(movements))
	for _, m := range movements {
		movs = append(movs, dto.ToCashMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"session":   dto.ToCashSessionResponse(session),
		"movements": movs,
	})
}

// GetSummary godoc
// @Summary      Resumen de una sesión
// @Description  Esperado derivado del ledger, totales por tipo y arqueos.
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "sesión"
// @Success      200  {object}  dto.SessionSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/{id}/summary [get]
func (h *CashHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	counts := make([]*dto.CashCountResponse, 0, len(summary.Counts))
	for _, ct := range summary.Counts {
		counts = append(counts, dto.ToCashCountResponse(ct))
	}
	return c.JSON(dto.SessionSummaryResponse{
		Session:  dto.ToCashSessionResponse(summary.Session),
		Expected: summary.Expected,
		Totals:   summary.Totals,
		Counts:   counts,
	})
}

// ListSessions godoc
// @Summary      Sesiones de una caja
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        register_id  query  string  true  "caja"
// @Success      200  {array}  dto.CashSessionResponse
// @Router       /api/cash/sessions [get]
func (h *CashHandler) ListSessions(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	sessions, err := h.uc.ListSessions(c.Context(), c.Query("register_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.CashSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.ToCashSessionResponse(s))
	}
	return c.JSON(out)
}
