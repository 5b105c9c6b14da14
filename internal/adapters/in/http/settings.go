package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
)

// UpdateSetting handles PUT /api/v1/settings/:key.
func (s *Server) UpdateSetting(c echo.Context) error {
	var req updateSettingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	cmd, err := commands.NewUpdateSettingCommand(c.Param("key"), req.Value, actorFrom(c))
	if err != nil {
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	}

	res := s.h.UpdateSetting.Handle(c.Request().Context(), cmd)
	if !res.Success {
		return failed(c, res)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}
