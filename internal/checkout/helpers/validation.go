package helpers

import (
	"strings"

	"github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

// ValidatePaymentMethod rejects labels outside the known set.
func ValidatePaymentMethod(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return nil
}

// NormalizeShipping trims the destination and requires name, phone and
// address. The memo stays optional.
func NormalizeShipping(info orders.ShippingInfo) (orders.ShippingInfo, error) {
	out := orders.ShippingInfo{
		Name:    strings.TrimSpace(info.Name),
		Phone:   strings.TrimSpace(info.Phone),
		Address: strings.TrimSpace(info.Address),
		Memo:    strings.TrimSpace(info.Memo),
	}
	missing := map[string]string{}
	if out.Name == "" {
		missing["name"] = "required"
	}
	if out.Phone == "" {
		missing["phone"] = "required"
	}
	if out.Address == "" {
		missing["address"] = "required"
	}
	if len(missing) > 0 {
		return orders.ShippingInfo{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping information is incomplete").WithDetails(missing)
	}
	return out, nil
}
