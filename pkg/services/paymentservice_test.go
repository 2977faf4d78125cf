package services

import (
	"testing"

	"fonegitim-api-io/api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDonationFee(t *testing.T) {
	// Amounts in kuruş.
	cases := []struct {
		name      string
		amount    int64
		coverFees bool
		want      models.DonationFee
	}{
		{
			name:   "hundred lira donor pays net of fees",
			amount: 10000,
			want: models.DonationFee{
				GrossAmount:   10000,
				PlatformFee:   500,
				ProcessingFee: 390,
				NetToCampaign: 9110,
			},
		},
		{
			name:      "hundred lira with fees covered",
			amount:    10000,
			coverFees: true,
			want: models.DonationFee{
				GrossAmount:    10890,
				PlatformFee:    500,
				ProcessingFee:  390,
				NetToCampaign:  10000,
				CoveredByDonor: true,
			},
		},
		{
			name:   "small donation hits platform fee floor",
			amount: 500,
			want: models.DonationFee{
				GrossAmount:   500,
				PlatformFee:   50,
				ProcessingFee: 114,
				NetToCampaign: 336,
			},
		},
		{
			name:   "tiny donation never nets negative",
			amount: 100,
			want: models.DonationFee{
				GrossAmount:   100,
				PlatformFee:   50,
				ProcessingFee: 102,
				NetToCampaign: 0,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateDonationFee(tc.amount, tc.coverFees)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculateDonationFeeCoveredGrossBalances(t *testing.T) {
	for _, amount := range []int64{100, 500, 2500, 10000, 1000000} {
		fee := CalculateDonationFee(amount, true)

		assert.Equal(t, amount, fee.NetToCampaign, "amount %d", amount)
		assert.Equal(t, fee.NetToCampaign+fee.PlatformFee+fee.ProcessingFee, fee.GrossAmount, "amount %d", amount)
	}
}
