package shipping

import (
	"github.com/google/uuid"

	"github.com/andesgear/tienda-backend/pkg/db/models"
)

// EligibleCarriers filters carriers down to those able to transport every
// shipping class present in the cart. The capability matrix is closed-world:
// a missing row counts as unsupported. A nil class id (product without a
// class) constrains nothing.
func EligibleCarriers(carriers []models.Carrier, classIDs []uuid.UUID) []models.Carrier {
	required := make([]uuid.UUID, 0, len(classIDs))
	seen := make(map[uuid.UUID]struct{}, len(classIDs))
	for _, id := range classIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		required = append(required, id)
	}

	eligible := make([]models.Carrier, 0, len(carriers))
	for _, carrier := range carriers {
		if !carrier.IsActive {
			continue
		}
		if supportsAll(carrier, required) {
			eligible = append(eligible, carrier)
		}
	}
	return eligible
}

func supportsAll(carrier models.Carrier, required []uuid.UUID) bool {
	for _, classID := range required {
		supported := false
		for _, cap := range carrier.Capabilities {
			if cap.ShippingClassID == classID && cap.IsSupported {
				supported = true
				break
			}
		}
		if !supported {
			return false
		}
	}
	return true
}
