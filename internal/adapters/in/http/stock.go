package http

import (
	"net/http"
	"strconv"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// locationParam reads the optional location and agent_id query parameters.
// A nil location means no filter.
func locationParam(c echo.Context) (*kernel.StockLocation, error) {
	switch c.QueryParam("location") {
	case "":
		return nil, nil
	case string(kernel.LocationWarehouse):
		loc := kernel.Warehouse()
		return &loc, nil
	case string(kernel.LocationVan):
		agentID, err := kernel.UUIDFromString(c.QueryParam("agent_id"))
		if err != nil {
			return nil, err
		}
		loc, err := kernel.Van(agentID)
		if err != nil {
			return nil, err
		}
		return &loc, nil
	default:
		return nil, echo.NewHTTPError(http.StatusBadRequest, "location must be warehouse or van")
	}
}

func agentOf(loc kernel.StockLocation) string {
	if loc.IsWarehouse() {
		return ""
	}
	return loc.AgentID().String()
}

// GetStockLevels handles GET /api/v1/stock?location=warehouse|van&agent_id=.
func (s *Server) GetStockLevels(c echo.Context) error {
	loc, err := locationParam(c)
	if err != nil {
		return badRequest(c, "invalid location", err.Error())
	}

	query, err := queries.NewGetStockLevelsQuery(loc)
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}
	levels, err := s.h.StockLevels.Handle(c.Request().Context(), query)
	if err != nil {
		return queryFailed(c, err)
	}

	response := make([]stockLevelResponse, 0, len(levels))
	for _, l := range levels {
		response = append(response, stockLevelResponse{
			Location:  string(l.Location.Kind()),
			AgentID:   agentOf(l.Location),
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UpdatedAt: l.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// GetStockMovements handles GET /api/v1/stock/movements with the optional
// filters location, agent_id, product_id, ref and limit.
func (s *Server) GetStockMovements(c echo.Context) error {
	loc, err := locationParam(c)
	if err != nil {
		return badRequest(c, "invalid location", err.Error())
	}
	filter := queries.MovementFilter{Location: loc, CorrelationRef: c.QueryParam("ref")}

	if raw := c.QueryParam("product_id"); raw != "" {
		if filter.ProductID, err = kernel.UUIDFromString(raw); err != nil {
			return badRequest(c, "invalid product_id")
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil {
			return badRequest(c, "invalid limit")
		}
	}

	query, err := queries.NewGetStockMovementsQuery(filter)
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}
	movements, err := s.h.Movements.Handle(c.Request().Context(), query)
	if err != nil {
		return queryFailed(c, err)
	}

	response := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		item := movementResponse{
			ID:             m.ID.String(),
			Location:       string(m.Location.Kind()),
			AgentID:        agentOf(m.Location),
			ProductID:      m.ProductID.String(),
			Delta:          m.Delta,
			Reason:         m.Reason.String(),
			CorrelationRef: m.CorrelationRef,
			CreatedAt:      m.CreatedAt,
		}
		if !m.ActorID.IsZero() {
			item.ActorID = m.ActorID.String()
		}
		response = append(response, item)
	}
	return c.JSON(http.StatusOK, response)
}

// GetReconciliation handles GET /api/v1/stock/reconciliation.
func (s *Server) GetReconciliation(c echo.Context) error {
	report, err := s.h.Reconciliation.Handle(c.Request().Context(), queries.NewGetReconciliationQuery())
	if err != nil {
		return queryFailed(c, err)
	}

	response := reconciliationResponse{
		Checked:    report.Checked,
		Consistent: report.Consistent(),
		Mismatches: make([]mismatchResponse, 0, len(report.Mismatches)),
	}
	for _, m := range report.Mismatches {
		response.Mismatches = append(response.Mismatches, mismatchResponse{
			Location:    string(m.Location.Kind()),
			AgentID:     agentOf(m.Location),
			ProductID:   m.ProductID.String(),
			Quantity:    m.Quantity,
			MovementSum: m.MovementSum,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// ReceiveStock handles POST /api/v1/stock/receipts. write_off=true books the
// quantity out of the warehouse instead.
func (s *Server) ReceiveStock(c echo.Context) error {
	var req receiptRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	productID, _ := kernel.UUIDFromString(req.ProductID)
	build := commands.NewReceiveStockCommand
	if req.WriteOff {
		build = commands.NewWriteOffStockCommand
	}
	cmd, err := build(productID, req.Quantity, req.Reference, actorFrom(c))
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.ReceiveStock.Handle(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res.Result)
	}
	return c.JSON(http.StatusCreated, receiptResponse{MovementID: res.MovementID.String()})
}
