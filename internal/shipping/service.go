package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
)

// Service produces per-carrier shipping options for a cart.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the shipping options service.
func NewService(repo Repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("shipping: repository is required")
	}
	if logg == nil {
		return nil, errors.New("shipping: logger is required")
	}
	return &Service{repo: repo, logg: logg}, nil
}

// Options returns one priced option per eligible carrier with a configured
// zone for the destination commune. Carriers without a zone row are skipped;
// an empty slice means no carrier can serve the destination.
func (s *Service) Options(ctx context.Context, input OptionsInput) ([]Option, error) {
	if input.CommuneID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commune is required")
	}

	commune, err := s.repo.FindCommune(ctx, input.CommuneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "commune not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading commune")
	}

	carriers, err := s.repo.ListActiveCarriers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing carriers")
	}

	weight := input.WeightKg
	if weight.LessThanOrEqual(decimal.Zero) {
		weight = decimal.NewFromFloat(1.0)
	}

	zones, err := s.repo.FindZonesByCommune(ctx, commune.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shipping zones")
	}
	zoneByCarrier := make(map[uuid.UUID]models.ShippingZone, len(zones))
	for _, zone := range zones {
		zoneByCarrier[zone.CarrierID] = zone
	}

	options := make([]Option, 0, len(carriers))
	for _, carrier := range EligibleCarriers(carriers, input.ShippingClassIDs) {
		zone, ok := zoneByCarrier[carrier.ID]
		if !ok {
			continue
		}

		options = append(options, Option{
			CarrierID:   carrier.ID,
			CarrierName: carrier.Name,
			CarrierCode: carrier.Code,
			CostCLP:     zoneCost(&zone, commune, weight),
			DaysMin:     zone.EstimatedDaysMin,
			DaysMax:     zone.EstimatedDaysMax,
		})
	}

	if len(options) == 0 {
		s.logg.Info(s.logg.WithField(ctx, "commune_id", commune.ID.String()), "no shipping options for destination")
	}
	return options, nil
}

// TotalWeightKg sums variant weight times quantity across cart lines.
func TotalWeightKg(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		weight := line.WeightKg
		if weight.LessThanOrEqual(decimal.Zero) {
			weight = decimal.NewFromFloat(1.0)
		}
		total = total.Add(weight.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CartLine carries the weight-relevant slice of a cart item.
type CartLine struct {
	WeightKg decimal.Decimal
	Quantity int
}

func zoneCost(zone *models.ShippingZone, commune *models.Commune, weight decimal.Decimal) int {
	cost := zone.BaseRate.Add(weight.Mul(zone.PerKgRate))
	if zone.ExtremeZoneSurcharge.IsPositive() && destinationExtreme(commune) {
		cost = cost.Add(zone.ExtremeZoneSurcharge)
	}
	return int(cost.Round(0).IntPart())
}

func destinationExtreme(commune *models.Commune) bool {
	if commune.IsExtremeZone {
		return true
	}
	return commune.Region != nil && commune.Region.IsExtremeZone
}
