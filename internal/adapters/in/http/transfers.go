package http

import (
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"

	"github.com/labstack/echo/v4"
)

// CreateTransfer handles POST /api/v1/transfers. The response carries both
// confirmation codes; they are never readable again.
func (s *Server) CreateTransfer(c echo.Context) error {
	var req createTransferRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	agentID, _ := kernel.UUIDFromString(req.AgentID)
	counterpartyID, _ := kernel.UUIDFromString(req.CounterpartyID)
	lines := make([]transfer.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, _ := kernel.UUIDFromString(l.ProductID)
		line, err := transfer.NewLine(productID, l.Quantity)
		if err != nil {
			return badRequest(c, commands.MsgInvalidInput, err.Error())
		}
		lines = append(lines, line)
	}

	cmd, err := commands.NewCreateTransferCommand(transfer.Kind(req.Kind), agentID, actorFrom(c), counterpartyID,
		lines, req.Note, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.Transfers.Create(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res.Result)
	}
	return c.JSON(http.StatusCreated, transferCreatedResponse{
		ID:        res.RequestID.String(),
		ExpiresAt: res.ExpiresAt,
		Codes: transferCodesResponse{
			Initiator:    res.Codes.Initiator,
			Counterparty: res.Codes.Counterparty,
		},
	})
}

// ConfirmTransfer handles POST /api/v1/transfers/:id/confirm. A confirmation
// that was stored but whose completion failed answers with the completion
// error and confirmed=true.
func (s *Server) ConfirmTransfer(c echo.Context) error {
	requestID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid transfer id")
	}

	var req confirmTransferRequest
	if ok, bindErr := bindAndValidate(c, &req); !ok {
		return bindErr
	}

	cmd, err := commands.NewConfirmTransferCommand(requestID, transfer.PartyRole(req.Role), req.Code, actorFrom(c))
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.Transfers.Confirm(c.Request().Context(), cmd)
	body := confirmTransferResponse{Confirmed: res.Confirmed, Completed: res.Completed, Message: res.Message}
	if !res.Success {
		return c.JSON(statusFor(res.Result), body)
	}
	return c.JSON(http.StatusOK, body)
}

// CompleteTransfer handles POST /api/v1/transfers/:id/complete, the operator
// retry after a failed completion.
func (s *Server) CompleteTransfer(c echo.Context) error {
	requestID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid transfer id")
	}

	cmd, err := commands.NewCompleteTransferCommand(requestID, actorFrom(c))
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.Transfers.Complete(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

// CancelTransfer handles POST /api/v1/transfers/:id/cancel.
func (s *Server) CancelTransfer(c echo.Context) error {
	requestID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid transfer id")
	}

	cmd, err := commands.NewCancelTransferCommand(requestID, actorFrom(c))
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.Transfers.Cancel(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

// GetPendingTransfers handles GET /api/v1/transfers?agent_id=.
func (s *Server) GetPendingTransfers(c echo.Context) error {
	var agentID kernel.UUID
	if raw := c.QueryParam("agent_id"); raw != "" {
		var err error
		if agentID, err = kernel.UUIDFromString(raw); err != nil {
			return badRequest(c, "invalid agent_id")
		}
	}

	pending, err := s.h.PendingTransfers.Handle(c.Request().Context(), queries.NewGetPendingTransfersQuery(agentID))
	if err != nil {
		return queryFailed(c, err)
	}

	response := make([]pendingTransferResponse, 0, len(pending))
	for _, p := range pending {
		lines := make([]orderLineResponse, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, orderLineResponse{ProductID: l.ProductID.String(), Quantity: l.Quantity})
		}
		response = append(response, pendingTransferResponse{
			ID:                    p.ID.String(),
			Kind:                  p.Kind.String(),
			AgentID:               p.AgentID.String(),
			InitiatorID:           p.InitiatorID.String(),
			CounterpartyID:        p.CounterpartyID.String(),
			InitiatorConfirmed:    p.InitiatorConfirmed,
			CounterpartyConfirmed: p.CounterpartyConfirmed,
			Lines:                 lines,
			Note:                  p.Note,
			CreatedAt:             p.CreatedAt,
			ExpiresAt:             p.ExpiresAt,
		})
	}

	return c.JSON(http.StatusOK, response)
}
