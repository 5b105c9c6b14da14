package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	agentID, _ := kernel.UUIDFromString(req.AgentID)
	customerID, _ := kernel.UUIDFromString(req.CustomerID)
	lines := make([]order.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, _ := kernel.UUIDFromString(l.ProductID)
		line, err := order.NewLine(productID, l.Quantity)
		if err != nil {
			return badRequest(c, commands.MsgInvalidInput, err.Error())
		}
		lines = append(lines, line)
	}

	cmd, err := commands.NewCreateOrderCommand(agentID, customerID, lines, actorFrom(c))
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res.Result)
	}
	return c.JSON(http.StatusCreated, orderCreatedResponse{ID: res.OrderID.String(), Number: res.Number})
}

// TransitionOrder handles POST /api/v1/orders/:id/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	var req transitionOrderRequest
	if ok, bindErr := bindAndValidate(c, &req); !ok {
		return bindErr
	}
	to := order.Status(req.To)
	if err = to.Validate(); err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, to, actorFrom(c), req.Reason, req.Notes)
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.TransitionOrder.Handle(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

// GetOrderHistory handles GET /api/v1/orders/:id/history.
func (s *Server) GetOrderHistory(c echo.Context) error {
	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	query, err := queries.NewGetOrderHistoryQuery(orderID)
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}
	view, err := s.h.OrderHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return queryFailed(c, err)
	}

	response := orderHistoryResponse{
		ID:         view.ID.String(),
		Number:     view.Number,
		AgentID:    view.AgentID.String(),
		CustomerID: view.CustomerID.String(),
		Status:     view.Status.String(),
		Lines:      make([]orderLineResponse, 0, len(view.Lines)),
		CreatedAt:  view.CreatedAt,
		UpdatedAt:  view.UpdatedAt,
		History:    make([]historyEntryResponse, 0, len(view.Entries)),
	}
	for _, l := range view.Lines {
		response.Lines = append(response.Lines, orderLineResponse{ProductID: l.ProductID.String(), Quantity: l.Quantity})
	}
	for _, e := range view.Entries {
		response.History = append(response.History, historyEntryResponse{
			ID:        e.ID.String(),
			From:      e.From.String(),
			To:        e.To.String(),
			ActorID:   e.ActorID.String(),
			ActorRole: e.ActorRole.String(),
			Reason:    e.Reason,
			Notes:     e.Notes,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, response)
}
