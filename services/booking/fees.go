package booking

import (
	"zeena/models"
)

// FeeSchedule is the two-tier flat platform fee: prices at or below the
// threshold pay the low fee, everything above pays the high fee. Fees are
// stamped onto the booking once at commit time and never recomputed.
type FeeSchedule struct {
	Threshold models.Money
	LowFee    models.Money
	HighFee   models.Money
}

// FeeBreakdown is the monetary result stamped onto a new booking.
type FeeBreakdown struct {
	TotalAmount      models.Money
	PlatformFee      models.Money
	ProviderEarnings models.Money
}

// Calculate maps a service price to its fee tier. Pure; all arithmetic in
// integer fils.
func (f FeeSchedule) Calculate(price models.Money) FeeBreakdown {
	fee := f.LowFee
	if price > f.Threshold {
		fee = f.HighFee
	}
	return FeeBreakdown{
		TotalAmount:      price,
		PlatformFee:      fee,
		ProviderEarnings: price.Sub(fee),
	}
}
