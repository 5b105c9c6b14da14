package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/rs/zerolog"
)

const maxSettingKeyLength = 128

var ErrUpdateSettingCommandIsNotConstructed = errors.New(
	"UpdateSettingCommand must be created via NewUpdateSettingCommand constructor",
)

// UpdateSettingCommand stores one key/value setting. Values of the keys the
// stock listings read are checked up front. Only admins may change settings.
type UpdateSettingCommand struct { //nolint:recvcheck //using for validation
	key   string
	value string
	actor kernel.Actor

	guard guard.ConstructorGuard
}

func NewUpdateSettingCommand(key, value string, actor kernel.Actor) (UpdateSettingCommand, error) {
	cmd := UpdateSettingCommand{value: strings.TrimSpace(value), guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setKey(key),
		cmd.setActor(actor),
	); err != nil {
		return UpdateSettingCommand{}, err
	}
	if err := queries.ValidateSetting(cmd.key, cmd.value); err != nil {
		return UpdateSettingCommand{}, err
	}

	return cmd, nil
}

func (c UpdateSettingCommand) Validate() error {
	return c.guard.Validate(ErrUpdateSettingCommandIsNotConstructed)
}

func (c UpdateSettingCommand) Key() string         { return c.key }
func (c UpdateSettingCommand) Value() string       { return c.value }
func (c UpdateSettingCommand) Actor() kernel.Actor { return c.actor }

func (c *UpdateSettingCommand) setKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errs.NewValueIsRequiredError("key")
	}
	if len(key) > maxSettingKeyLength {
		return errs.NewValueIsInvalidErrorWithCause("key",
			fmt.Errorf("longer than %d characters", maxSettingKeyLength))
	}
	c.key = key
	return nil
}

func (c *UpdateSettingCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

type UpdateSettingCommandHandler struct {
	store ports.SettingsStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewUpdateSettingCommandHandler(
	store ports.SettingsStore,
	now func() time.Time,
	log zerolog.Logger,
) *UpdateSettingCommandHandler {
	return &UpdateSettingCommandHandler{
		store: store,
		now:   now,
		log:   log.With().Str("handler", "update_setting").Logger(),
	}
}

func (h *UpdateSettingCommandHandler) Handle(ctx context.Context, cmd UpdateSettingCommand) Result {
	if err := h.handle(ctx, cmd); err != nil {
		return resultFromError(h.log, err)
	}

	h.log.Info().Str("key", cmd.Key()).Str("actor_id", cmd.Actor().ID().String()).Msg("setting updated")
	return succeeded("setting updated")
}

func (h *UpdateSettingCommandHandler) handle(ctx context.Context, cmd UpdateSettingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if role := cmd.Actor().Role(); role != kernel.RoleAdmin {
		return errs.NewForbiddenError(role.String(), "change settings")
	}
	return h.store.Put(ctx, cmd.Key(), cmd.Value(), h.now())
}
