package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LedgerHandler expone el ledger de stock (protegido).
type LedgerHandler struct {
	writer     *app.LedgerWriter
	transfers  *app.TransferCoordinator
	reconciler *app.Reconciler
	adjuster   *app.AbsoluteAdjuster
	query      *app.LedgerQueryUseCase
	log        *logger.Logger
}

// NewLedgerHandler construye el handler. log nil usa un logger descartable.
func NewLedgerHandler(
	writer *app.LedgerWriter,
	transfers *app.TransferCoordinator,
	reconciler *app.Reconciler,
	adjuster *app.AbsoluteAdjuster,
	query *app.LedgerQueryUseCase,
	log *logger.Logger,
) *LedgerHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerHandler{writer: writer, transfers: transfers, reconciler: reconciler, adjuster: adjuster, query: query, log: log}
}

// Mutate godoc
// @Summary      Registrar movimiento (IN, OUT o ADJUSTMENT)
// @Description  La cantidad se expresa como measurement_entries y/o raw_base_amount, o measurement_unit_id + quantity.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        locationId  path  string             true  "Ubicación"
// @Param        body        body  dto.MutateRequest  true  "item_id, kind, cantidad"
// @Success      201  {object}  dto.MutateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/movements [post]
func (h *LedgerHandler) Mutate(c *fiber.Ctx) error {
	var in dto.MutateRequest
	if e := bindBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	res, err := h.writer.Apply(c.UserContext(), app.MutationInput{
		LocationID:    c.Params("locationId"),
		ItemID:        in.ItemID,
		Kind:          entity.MovementType(in.Kind),
		Quantity:      toQuantitySpec(in.QuantityRequest),
		Direction:     entity.Direction(in.Direction),
		AllowNegative: in.AllowNegative,
		Reference:     in.Reference,
		Note:          in.Note,
		ActorID:       GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MutateResponse{
		LedgerEntryID:     res.Entry.ID,
		ConvertedQuantity: res.ConvertedQuantity,
		NewBalance:        res.NewBalance,
	})
}

// Transfer godoc
// @Summary      Transferir stock entre ubicaciones
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "origen, destino, item y cantidad"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if e := bindBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	res, err := h.transfers.Transfer(c.UserContext(), app.TransferInput{
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		ItemID:         in.ItemID,
		Quantity:       toQuantitySpec(in.QuantityRequest),
		AllowNegative:  in.AllowNegative,
		Reference:      in.Reference,
		Note:           in.Note,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		TransferID:        res.TransferID,
		OutEntryID:        res.OutEntry.ID,
		InEntryID:         res.InEntry.ID,
		ConvertedQuantity: res.ConvertedQuantity,
		FromBalance:       res.From.Balance,
		ToBalance:         res.To.Balance,
	})
}

// Rebuild godoc
// @Summary      Reconstruir el saldo desde el ledger (admin)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        locationId  path  string  true  "Ubicación"
// @Param        itemId      path  string  true  "Item"
// @Success      200  {object}  dto.RebuildResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/items/{itemId}/rebuild [post]
func (h *LedgerHandler) Rebuild(c *fiber.Ctx) error {
	res, err := h.reconciler.Rebuild(c.UserContext(), c.Params("locationId"), c.Params("itemId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toRebuildResponse(res))
}

// RebuildLocation godoc
// @Summary      Reconstruir todas las cuentas de una ubicación (admin)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        locationId  path  string  true  "Ubicación"
// @Success      200  {object}  dto.RebuildLocationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/rebuild [post]
func (h *LedgerHandler) RebuildLocation(c *fiber.Ctx) error {
	locationID := c.Params("locationId")
	results, err := h.reconciler.RebuildLocation(c.UserContext(), locationID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.RebuildLocationResponse{LocationID: locationID, Accounts: make([]dto.RebuildResponse, 0, len(results))}
	for _, r := range results {
		out.Accounts = append(out.Accounts, toRebuildResponse(r))
		if r.Drifted() {
			out.Drifted++
		}
	}
	return c.JSON(out)
}

// Drift godoc
// @Summary      Comparar saldo en caché con el ledger
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        locationId  path  string  true  "Ubicación"
// @Param        itemId      path  string  true  "Item"
// @Success      200  {object}  dto.DriftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/items/{itemId}/drift [get]
func (h *LedgerHandler) Drift(c *fiber.Ctx) error {
	r, err := h.reconciler.Drift(c.UserContext(), c.Params("locationId"), c.Params("itemId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.DriftResponse{
		LocationID:      r.LocationID,
		ItemID:          r.ItemID,
		CachedBalance:   r.CachedBalance,
		ReplayedBalance: r.ReplayedBalance,
		Drift:           r.Drift,
		EntryCount:      r.EntryCount,
		InSync:          r.InSync(),
	})
}

// SetAbsolute godoc
// @Summary      Fijar el saldo a un valor absoluto (admin)
// @Description  Crea un ADJUSTMENT por la diferencia; sin diferencia no se crea movimiento.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        locationId  path  string                  true  "Ubicación"
// @Param        itemId      path  string                  true  "Item"
// @Param        body        body  dto.SetAbsoluteRequest  true  "target_balance, reason"
// @Success      200  {object}  dto.SetAbsoluteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/items/{itemId}/balance [put]
func (h *LedgerHandler) SetAbsolute(c *fiber.Ctx) error {
	var in dto.SetAbsoluteRequest
	if e := bindBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	res, err := h.adjuster.SetAbsolute(c.UserContext(), app.SetAbsoluteInput{
		LocationID:    c.Params("locationId"),
		ItemID:        c.Params("itemId"),
		TargetBalance: *in.TargetBalance,
		Reason:        in.Reason,
		ActorID:       GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.SetAbsoluteResponse{PreviousBalance: res.PreviousBalance, NewBalance: res.NewBalance}
	if res.Entry != nil {
		out.AdjustmentEntryID = &res.Entry.ID
	}
	return c.JSON(out)
}

// ListLedger godoc
// @Summary      Movimientos de una cuenta (más recientes primero)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        locationId  path   string  true   "Ubicación"
// @Param        itemId      path   string  true   "Item"
// @Param        page        query  int     false  "Página (desde 1)"
// @Param        limit       query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.LedgerPageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/items/{itemId}/ledger [get]
func (h *LedgerHandler) ListLedger(c *fiber.Ctx) error {
	var pq dto.PageRequest
	if e := bindQuery(c, &pq); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	locationID, itemID := c.Params("locationId"), c.Params("itemId")
	p, err := h.query.ListLedger(c.UserContext(), locationID, itemID, pq.Page, pq.Limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	entries := make([]dto.LedgerEntryResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, toLedgerEntryResponse(e))
	}
	return c.JSON(dto.LedgerPageResponse{
		LocationID:   locationID,
		ItemID:       itemID,
		Entries:      entries,
		PageResponse: dto.PageResponse{Page: p.Page, Limit: p.Limit, Total: p.Total},
	})
}

// GetAccount godoc
// @Summary      Saldo actual de un item en una ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        locationId  path  string  true  "Ubicación"
// @Param        itemId      path  string  true  "Item"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/items/{itemId} [get]
func (h *LedgerHandler) GetAccount(c *fiber.Ctx) error {
	acct, item, err := h.query.GetAccount(c.UserContext(), c.Params("locationId"), c.Params("itemId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := toAccountResponse(acct)
	out.ItemCode, out.ItemName, out.BaseUnit = item.Code, item.Name, item.BaseUnit
	return c.JSON(out)
}

// ListLocationStock godoc
// @Summary      Saldos de una ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        locationId  path   string  true   "Ubicación"
// @Param        page        query  int     false  "Página (desde 1)"
// @Param        limit       query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.StockPageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/stock [get]
func (h *LedgerHandler) ListLocationStock(c *fiber.Ctx) error {
	return h.listStock(c, c.Params("locationId"))
}

// MyStock godoc
// @Summary      Saldos de la ubicación del usuario (la del token)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        page   query  int  false  "Página (desde 1)"
// @Param        limit  query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.StockPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *LedgerHandler) MyStock(c *fiber.Ctx) error {
	locationID := GetLocationID(c)
	if locationID == "" {
		return respondError(c, h.log, domain.Errorf(domain.CodeValidation, "el token no tiene ubicación asociada"))
	}
	return h.listStock(c, locationID)
}

func (h *LedgerHandler) listStock(c *fiber.Ctx, locationID string) error {
	var pq dto.PageRequest
	if e := bindQuery(c, &pq); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	p, err := h.query.ListLocationStock(c.UserContext(), locationID, pq.Page, pq.Limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	accounts := make([]dto.AccountResponse, 0, len(p.Levels))
	for _, l := range p.Levels {
		a := toAccountResponse(&l.StockAccount)
		a.ItemCode, a.ItemName, a.BaseUnit = l.ItemCode, l.ItemName, l.BaseUnit
		accounts = append(accounts, a)
	}
	return c.JSON(dto.StockPageResponse{
		LocationID:   locationID,
		Accounts:     accounts,
		PageResponse: dto.PageResponse{Page: p.Page, Limit: p.Limit, Total: p.Total},
	})
}

// GetEntry godoc
// @Summary      Movimiento del ledger por id
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Id del movimiento"
// @Success      200  {object}  dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger-entries/{id} [get]
func (h *LedgerHandler) GetEntry(c *fiber.Ctx) error {
	e, err := h.query.GetEntry(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toLedgerEntryResponse(e))
}

// Statement godoc
// @Summary      Kardex en PDF de una cuenta
// @Tags         ledger
// @Security     Bearer
// @Produce      application/pdf
// @Param        locationId  path  string  true  "Ubicación"
// @Param        itemId      path  string  true  "Item"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/items/{itemId}/statement [get]
func (h *LedgerHandler) Statement(c *fiber.Ctx) error {
	locationID, itemID := c.Params("locationId"), c.Params("itemId")
	pdf, err := h.query.Statement(c.UserContext(), locationID, itemID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s-%s.pdf"`, locationID, itemID))
	return c.Send(pdf)
}
