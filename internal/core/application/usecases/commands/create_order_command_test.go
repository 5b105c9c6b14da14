package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	agentID, customerID := kernel.NewUUID(), kernel.NewUUID()
	line := mustOrderLine(kernel.NewUUID(), 4)
	actor := mustActor(kernel.RoleSalesRep)

	cmd, err := commands.NewCreateOrderCommand(agentID, customerID, []order.Line{line}, actor)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, agentID, cmd.AgentID())
	assert.Equal(t, customerID, cmd.CustomerID())
	assert.Equal(t, []order.Line{line}, cmd.Lines())
	assert.Equal(t, actor, cmd.Actor())
}

func TestNewCreateOrderCommand_NoLines(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), nil, mustActor(kernel.RoleAdmin))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewCreateOrderCommand_InvalidIDs(t *testing.T) {
	line := mustOrderLine(kernel.NewUUID(), 1)
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, kernel.UUID{}, []order.Line{line}, kernel.Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, kernel.ErrActorIsNotConstructed)
}

func TestCreateOrderCommand_ZeroValueFailsValidation(t *testing.T) {
	var cmd commands.CreateOrderCommand
	assert.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)
}
