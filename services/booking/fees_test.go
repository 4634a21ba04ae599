package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zeena/models"
)

func testFees() FeeSchedule {
	return FeeSchedule{
		Threshold: models.MoneyFromFils(25000), // 25.000
		LowFee:    models.MoneyFromFils(1000),
		HighFee:   models.MoneyFromFils(2000),
	}
}

func TestFeeTierBoundary(t *testing.T) {
	fees := testFees()

	// Exactly at the threshold stays in the low tier; one fils over tips it.
	at := fees.Calculate(models.MoneyFromFils(25000))
	assert.Equal(t, int64(1000), at.PlatformFee.Fils())
	assert.Equal(t, int64(24000), at.ProviderEarnings.Fils())

	over := fees.Calculate(models.MoneyFromFils(25001))
	assert.Equal(t, int64(2000), over.PlatformFee.Fils())
	assert.Equal(t, int64(23001), over.ProviderEarnings.Fils())
}

func TestFeeBreakdownSums(t *testing.T) {
	fees := testFees()
	for _, price := range []int64{500, 10000, 25000, 25001, 90000} {
		b := fees.Calculate(models.MoneyFromFils(price))
		assert.Equal(t, b.TotalAmount, b.PlatformFee.Add(b.ProviderEarnings), "price %d", price)
	}
}
