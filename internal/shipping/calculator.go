package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/enums"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

const (
	// fallback weight adjustment: +20% of the base per kg above 1.5, capped at 3x
	weightThresholdKg   = 1.5
	weightStepPerKg     = 0.2
	weightMultiplierCap = 3.0
	fallbackDaysMin     = 2
	fallbackDaysMax     = 5

	preciseCarrierLabel  = "Transportista Local"
	fallbackCarrierLabel = "Starken / Chilexpress"
)

// Calculator resolves a shipping cost for a destination, preferring exact
// zone configuration and falling back to the regional rate table.
type Calculator struct {
	repo  Repository
	rates map[string]int
}

// NewCalculator wires the calculator. rates is read-only after construction;
// pass DefaultRegionalRates() unless a test needs custom values.
func NewCalculator(repo Repository, rates map[string]int) (*Calculator, error) {
	if repo == nil {
		return nil, errors.New("shipping: repository is required")
	}
	if rates == nil {
		rates = DefaultRegionalRates()
	}
	return &Calculator{repo: repo, rates: rates}, nil
}

// Quote resolves the shipping cost for the given destination and weight.
// A missing region yields a zero-cost error quote, not a Go error: the
// storefront renders it as "shipping unavailable" rather than failing the
// whole page.
func (c *Calculator) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	weight := input.WeightKg
	if weight.LessThanOrEqual(decimal.Zero) {
		weight = decimal.NewFromFloat(1.0)
	}

	if input.CommuneID != nil {
		quote, err := c.preciseQuote(ctx, *input.CommuneID, input.CarrierID, weight)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			return quote, nil
		}
	}

	return c.fallbackQuote(ctx, input, weight)
}

func (c *Calculator) preciseQuote(ctx context.Context, communeID uuid.UUID, carrierID *uuid.UUID, weight decimal.Decimal) (*Quote, error) {
	zone, err := c.repo.FindZone(ctx, communeID, carrierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shipping zone")
	}

	cost := zone.BaseRate.Add(weight.Mul(zone.PerKgRate))
	if zone.ExtremeZoneSurcharge.IsPositive() {
		extreme, err := c.destinationIsExtreme(ctx, communeID)
		if err != nil {
			return nil, err
		}
		if extreme {
			cost = cost.Add(zone.ExtremeZoneSurcharge)
		}
	}

	return &Quote{
		CostCLP: int(cost.Round(0).IntPart()),
		Method:  enums.QuoteMethodZonePrecise,
		Carrier: preciseCarrierLabel,
		DaysMin: zone.EstimatedDaysMin,
		DaysMax: zone.EstimatedDaysMax,
	}, nil
}

func (c *Calculator) fallbackQuote(ctx context.Context, input QuoteInput, weight decimal.Decimal) (*Quote, error) {
	region, err := c.repo.FindRegion(ctx, input.RegionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Quote{
				CostCLP: 0,
				Method:  enums.QuoteMethodError,
				Reason:  "region not found",
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading region")
	}

	baseCost, ok := c.rates[region.Code]
	if !ok {
		baseCost = DefaultFallbackRateCLP
	}

	multiplier := decimal.NewFromInt(1)
	if weight.GreaterThan(decimal.NewFromFloat(weightThresholdKg)) {
		extra := weight.Sub(decimal.NewFromFloat(weightThresholdKg))
		multiplier = multiplier.Add(extra.Mul(decimal.NewFromFloat(weightStepPerKg)))
		maxMult := decimal.NewFromFloat(weightMultiplierCap)
		if multiplier.GreaterThan(maxMult) {
			multiplier = maxMult
		}
	}

	cost := decimal.NewFromInt(int64(baseCost)).Mul(multiplier)
	// round to the nearest 100 CLP
	rounded := cost.Div(decimal.NewFromInt(100)).Round(0).Mul(decimal.NewFromInt(100))

	return &Quote{
		CostCLP: int(rounded.IntPart()),
		Method:  enums.QuoteMethodRegionalFallback,
		Carrier: fallbackCarrierLabel,
		DaysMin: fallbackDaysMin,
		DaysMax: fallbackDaysMax,
	}, nil
}

func (c *Calculator) destinationIsExtreme(ctx context.Context, communeID uuid.UUID) (bool, error) {
	commune, err := c.repo.FindCommune(ctx, communeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading commune")
	}
	if commune.IsExtremeZone {
		return true, nil
	}
	return commune.Region != nil && commune.Region.IsExtremeZone, nil
}
