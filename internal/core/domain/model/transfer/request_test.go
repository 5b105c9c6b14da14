package transfer_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

type fixture struct {
	keeperID kernel.UUID
	agentID  kernel.UUID
	request  *transfer.Request
	codes    transfer.Codes
}

func newLoad(t *testing.T, qty int64) fixture {
	t.Helper()
	f := fixture{keeperID: kernel.NewUUID(), agentID: kernel.NewUUID()}

	line, err := transfer.NewLine(kernel.NewUUID(), qty)
	require.NoError(t, err)

	f.request, f.codes, err = transfer.NewRequest(transfer.KindLoad, f.agentID, f.keeperID, f.agentID,
		[]transfer.Line{line}, "morning load", baseTime, 0)
	require.NoError(t, err)
	return f
}

func TestKind(t *testing.T) {
	assert.Equal(t, stock.ReasonLoad, transfer.KindLoad.Reason())
	assert.Equal(t, stock.ReasonReturn, transfer.KindReturn.Reason())
	assert.Equal(t, stock.ReasonAdjustment, transfer.KindAdjustment.Reason())

	assert.Equal(t, 30*time.Minute, transfer.KindLoad.DefaultTTL())
	assert.Equal(t, 2*time.Hour, transfer.KindReturn.DefaultTTL())
	assert.Equal(t, 15*time.Minute, transfer.KindAdjustment.DefaultTTL())

	require.ErrorIs(t, transfer.Kind("gift").Validate(), errs.ErrValueIsInvalid)
}

func TestKind_AllowsRole(t *testing.T) {
	tests := []struct {
		kind  transfer.Kind
		party transfer.PartyRole
		role  kernel.Role
		want  bool
	}{
		{transfer.KindLoad, transfer.Initiator, kernel.RoleWarehouse, true},
		{transfer.KindLoad, transfer.Initiator, kernel.RoleSalesRep, false},
		{transfer.KindLoad, transfer.Counterparty, kernel.RoleSalesRep, true},
		{transfer.KindReturn, transfer.Initiator, kernel.RoleSalesRep, true},
		{transfer.KindReturn, transfer.Counterparty, kernel.RoleWarehouse, true},
		{transfer.KindReturn, transfer.Counterparty, kernel.RoleSalesRep, false},
		{transfer.KindAdjustment, transfer.Counterparty, kernel.RoleAdmin, true},
		{transfer.KindAdjustment, transfer.Counterparty, kernel.RoleSalesRep, false},
		{transfer.KindAdjustment, transfer.Counterparty, kernel.RoleSystem, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind)+"/"+tc.party.String()+"/"+tc.role.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.AllowsRole(tc.party, tc.role))
		})
	}
}

func TestNewRequest(t *testing.T) {
	t.Run("issues two distinct six digit codes and stores only hashes", func(t *testing.T) {
		f := newLoad(t, 5)

		assert.Regexp(t, `^\d{6}$`, f.codes.Initiator)
		assert.Regexp(t, `^\d{6}$`, f.codes.Counterparty)
		assert.NotEqual(t, f.codes.Initiator, f.codes.Counterparty)
		assert.NotContains(t, f.request.Initiator().CodeHash(), f.codes.Initiator)
		assert.NotEmpty(t, f.request.Counterparty().CodeHash())
	})

	t.Run("defaults ttl per kind", func(t *testing.T) {
		f := newLoad(t, 5)

		assert.Equal(t, baseTime.Add(30*time.Minute), f.request.ExpiresAt())
		assert.Equal(t, transfer.StatePending, f.request.State(baseTime))
	})

	t.Run("explicit ttl wins", func(t *testing.T) {
		agentID := kernel.NewUUID()
		line, _ := transfer.NewLine(kernel.NewUUID(), 1)

		r, _, err := transfer.NewRequest(transfer.KindReturn, agentID, agentID, kernel.NewUUID(),
			[]transfer.Line{line}, "", baseTime, 10*time.Minute)

		require.NoError(t, err)
		assert.Equal(t, baseTime.Add(10*time.Minute), r.ExpiresAt())
	})

	t.Run("same person on both sides", func(t *testing.T) {
		agentID := kernel.NewUUID()
		line, _ := transfer.NewLine(kernel.NewUUID(), 1)

		_, _, err := transfer.NewRequest(transfer.KindReturn, agentID, agentID, agentID,
			[]transfer.Line{line}, "", baseTime, 0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("agent must hold the prescribed role", func(t *testing.T) {
		agentID := kernel.NewUUID()
		line, _ := transfer.NewLine(kernel.NewUUID(), 1)

		// a load is confirmed by the agent as counterparty, not as initiator
		_, _, err := transfer.NewRequest(transfer.KindLoad, agentID, agentID, kernel.NewUUID(),
			[]transfer.Line{line}, "", baseTime, 0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("negative lines only for adjustments", func(t *testing.T) {
		agentID := kernel.NewUUID()
		line, _ := transfer.NewLine(kernel.NewUUID(), -2)

		_, _, err := transfer.NewRequest(transfer.KindReturn, agentID, agentID, kernel.NewUUID(),
			[]transfer.Line{line}, "", baseTime, 0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, _, err = transfer.NewRequest(transfer.KindAdjustment, agentID, agentID, kernel.NewUUID(),
			[]transfer.Line{line}, "", baseTime, 0)
		require.NoError(t, err)
	})

	t.Run("no lines", func(t *testing.T) {
		agentID := kernel.NewUUID()

		_, _, err := transfer.NewRequest(transfer.KindReturn, agentID, agentID, kernel.NewUUID(), nil, "", baseTime, 0)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRequest_Confirm(t *testing.T) {
	t.Run("one confirmation leaves the request pending", func(t *testing.T) {
		f := newLoad(t, 5)

		both, err := f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.False(t, both)
		assert.True(t, f.request.Initiator().IsConfirmed())
		assert.False(t, f.request.Counterparty().IsConfirmed())
		assert.Equal(t, transfer.StatePending, f.request.State(baseTime.Add(time.Minute)))
	})

	t.Run("second confirmation reports both", func(t *testing.T) {
		f := newLoad(t, 5)

		_, err := f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)
		require.NoError(t, err)
		both, err := f.request.Confirm(transfer.Counterparty, f.codes.Counterparty, baseTime)

		require.NoError(t, err)
		assert.True(t, both)
	})

	t.Run("re-confirming is a no-op", func(t *testing.T) {
		f := newLoad(t, 5)
		first := baseTime.Add(time.Minute)

		_, err := f.request.Confirm(transfer.Initiator, f.codes.Initiator, first)
		require.NoError(t, err)
		_, err = f.request.Confirm(transfer.Initiator, f.codes.Initiator, first.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, first, *f.request.Initiator().ConfirmedAt())
	})

	t.Run("re-confirming after both confirmed does not report both again", func(t *testing.T) {
		f := newLoad(t, 5)

		_, err := f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)
		require.NoError(t, err)
		both, err := f.request.Confirm(transfer.Counterparty, f.codes.Counterparty, baseTime)
		require.NoError(t, err)
		require.True(t, both)

		both, err = f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.False(t, both)
		assert.True(t, f.request.BothConfirmed())
	})

	t.Run("the other party's code is rejected", func(t *testing.T) {
		f := newLoad(t, 5)

		_, err := f.request.Confirm(transfer.Initiator, f.codes.Counterparty, baseTime)

		require.ErrorIs(t, err, errs.ErrConfirmationFailed)
		assert.False(t, f.request.Initiator().IsConfirmed())
	})

	t.Run("malformed code is rejected", func(t *testing.T) {
		f := newLoad(t, 5)

		_, err := f.request.Confirm(transfer.Counterparty, "12", baseTime)

		require.ErrorIs(t, err, errs.ErrConfirmationFailed)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newLoad(t, 5)

		_, err := f.request.Confirm(transfer.PartyRole("witness"), f.codes.Initiator, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("any code at or after expiry fails", func(t *testing.T) {
		f := newLoad(t, 5)
		expiry := f.request.ExpiresAt()

		for _, tc := range []struct {
			role transfer.PartyRole
			code string
		}{
			{transfer.Initiator, f.codes.Initiator},
			{transfer.Counterparty, f.codes.Counterparty},
			{transfer.Counterparty, "000000"},
		} {
			_, err := f.request.Confirm(tc.role, tc.code, expiry)
			require.ErrorIs(t, err, errs.ErrExpired)
		}
		assert.False(t, f.request.BothConfirmed())
		assert.Equal(t, transfer.StateExpired, f.request.State(expiry))
	})

	t.Run("completed request rejects confirmation", func(t *testing.T) {
		f := newLoad(t, 5)
		_, _ = f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)
		_, _ = f.request.Confirm(transfer.Counterparty, f.codes.Counterparty, baseTime)
		require.NoError(t, f.request.MarkCompleted(baseTime))

		_, err := f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)

		require.ErrorIs(t, err, errs.ErrAlreadyCompleted)
	})
}

func TestRequest_Completion(t *testing.T) {
	t.Run("requires both confirmations", func(t *testing.T) {
		f := newLoad(t, 5)
		_, _ = f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)

		err := f.request.MarkCompleted(baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Nil(t, f.request.CompletedAt())
	})

	t.Run("completes once", func(t *testing.T) {
		f := newLoad(t, 5)
		_, _ = f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)
		_, _ = f.request.Confirm(transfer.Counterparty, f.codes.Counterparty, baseTime)

		require.NoError(t, f.request.MarkCompleted(baseTime))
		err := f.request.MarkCompleted(baseTime.Add(time.Second))

		require.ErrorIs(t, err, errs.ErrAlreadyCompleted)
		assert.Equal(t, baseTime, *f.request.CompletedAt())
		assert.Equal(t, transfer.StateCompleted, f.request.State(baseTime))
	})

	t.Run("confirmed request stays completable after its deadline", func(t *testing.T) {
		f := newLoad(t, 5)
		_, _ = f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)
		_, _ = f.request.Confirm(transfer.Counterparty, f.codes.Counterparty, baseTime)
		late := f.request.ExpiresAt().Add(time.Hour)

		assert.Equal(t, transfer.StatePending, f.request.State(late))
		assert.False(t, f.request.MarkExpired(late))
		require.NoError(t, f.request.EnsureCompletable())
	})
}

func TestRequest_CancelAndExpire(t *testing.T) {
	t.Run("cancel is terminal", func(t *testing.T) {
		f := newLoad(t, 5)

		require.NoError(t, f.request.Cancel(baseTime))

		assert.Equal(t, transfer.StateCancelled, f.request.State(baseTime))
		_, err := f.request.Confirm(transfer.Initiator, f.codes.Initiator, baseTime)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		require.ErrorIs(t, f.request.Cancel(baseTime), errs.ErrInvalidTransition)
	})

	t.Run("expired request cannot be cancelled", func(t *testing.T) {
		f := newLoad(t, 5)

		err := f.request.Cancel(f.request.ExpiresAt())

		require.ErrorIs(t, err, errs.ErrExpired)
	})

	t.Run("mark expired only past the deadline and only once", func(t *testing.T) {
		f := newLoad(t, 5)

		assert.False(t, f.request.MarkExpired(baseTime))
		assert.True(t, f.request.MarkExpired(f.request.ExpiresAt()))
		assert.False(t, f.request.MarkExpired(f.request.ExpiresAt().Add(time.Minute)))
		assert.NotNil(t, f.request.ExpiredAt())
	})
}
