package enums

// PaymentStatus records whether the customer has settled an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded}

func (p PaymentStatus) String() string { return string(p) }
func (p PaymentStatus) IsValid() bool  { return known(paymentStatuses, p) }

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	return parse("payment status", paymentStatuses, raw)
}
