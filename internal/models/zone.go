package models

import "fmt"

// CapacityWarningPercent is the utilisation at which a zone is considered
// close to full.
const CapacityWarningPercent = 90

// ValidateCapacity checks the zone invariant 0 <= capacity <= max_capacity.
func (z WarehouseZone) ValidateCapacity() error {
	if z.MaxCapacity <= 0 {
		return fmt.Errorf("%w: max_capacity must be positive", ErrValidation)
	}
	if z.Capacity < 0 {
		return fmt.Errorf("%w: zone %s would hold %d units", ErrCapacityExceeded, z.ID, z.Capacity)
	}
	if z.Capacity > z.MaxCapacity {
		return fmt.Errorf("%w: zone %s would hold %d of %d units",
			ErrCapacityExceeded, z.ID, z.Capacity, z.MaxCapacity)
	}
	return nil
}

// ApplyDelta returns the zone with delta units added to its capacity. It is
// the only way stock moves in or out of a zone; the receiver is unchanged.
func (z WarehouseZone) ApplyDelta(delta int) (WarehouseZone, error) {
	next := z
	next.Capacity = z.Capacity + delta
	if err := next.ValidateCapacity(); err != nil {
		return z, err
	}
	return next, nil
}

// UtilizationPercent returns capacity as a percentage of max_capacity.
func (z WarehouseZone) UtilizationPercent() float64 {
	if z.MaxCapacity <= 0 {
		return 0
	}
	return float64(z.Capacity) * 100 / float64(z.MaxCapacity)
}
