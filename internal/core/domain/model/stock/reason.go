package stock

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Reason classifies why a movement happened.
type Reason string

const (
	ReasonTransferIn        Reason = "transfer_in"
	ReasonTransferOut       Reason = "transfer_out"
	ReasonOrderFulfillment  Reason = "order_fulfillment"
	ReasonOrderCancellation Reason = "order_cancellation"
	ReasonReturn            Reason = "return"
	ReasonLoad              Reason = "load"
	ReasonAdjustment        Reason = "adjustment"
)

var validReasons = map[Reason]struct{}{
	ReasonTransferIn:        {},
	ReasonTransferOut:       {},
	ReasonOrderFulfillment:  {},
	ReasonOrderCancellation: {},
	ReasonReturn:            {},
	ReasonLoad:              {},
	ReasonAdjustment:        {},
}

func (r Reason) Validate() error {
	if _, ok := validReasons[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("reason", fmt.Errorf("unknown movement reason %q", string(r)))
	}
	return nil
}

func (r Reason) String() string {
	return string(r)
}
