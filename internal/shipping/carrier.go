package shipping

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is one carrier tier priced for a destination and load.
type Quote struct {
	ServiceType        ServiceType
	Price              decimal.Decimal
	DeliveryTimeInDays int
	IsFree             bool
}

// CarrierClient quotes the available delivery services for a destination.
type CarrierClient interface {
	Quote(ctx context.Context, zipCode string, totalWeightKg float64, totalItems int) ([]Quote, error)
}

// SimulatedCarrier reproduces the Correios tier table without calling the
// real carrier APIs: base fare is R$5 per kg with a R$15 floor, faster tiers
// are multiples of it, and in-town destinations get a free pick-up option.
type SimulatedCarrier struct{}

func NewSimulatedCarrier() *SimulatedCarrier {
	return &SimulatedCarrier{}
}

var (
	minimumFare   = decimal.NewFromInt(15)
	farePerKg     = decimal.NewFromInt(5)
	sedexFactor   = decimal.NewFromFloat(1.5)
	sedex10Factor = decimal.NewFromFloat(2.5)
)

// pickUpPrefix marks destinations served by the physical store. Zip codes in
// this range get a store pick-up tier.
const pickUpPrefix = "01"

func (s *SimulatedCarrier) Quote(_ context.Context, zipCode string, totalWeightKg float64, _ int) ([]Quote, error) {
	base := decimal.NewFromFloat(totalWeightKg).Mul(farePerKg)
	if base.LessThan(minimumFare) {
		base = minimumFare
	}

	quotes := []Quote{
		{ServiceType: ServicePAC, Price: base, DeliveryTimeInDays: 7},
		{ServiceType: ServiceSEDEX, Price: base.Mul(sedexFactor), DeliveryTimeInDays: 3},
		{ServiceType: ServiceSEDEX10, Price: base.Mul(sedex10Factor), DeliveryTimeInDays: 1},
	}

	if strings.HasPrefix(CleanZipCode(zipCode), pickUpPrefix) {
		quotes = append(quotes, Quote{
			ServiceType:        ServicePickUp,
			Price:              decimal.Zero,
			DeliveryTimeInDays: 1,
			IsFree:             true,
		})
	}

	return quotes, nil
}
