package state

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// reduceLocations maintains the location lookup table. As with shift
// types, deletions with live references never reach this reducer as
// LocationDeleted: the conflict guard rejects them first.
func reduceLocations(s LocationsState, a Action) LocationsState {
	switch a := a.(type) {
	case HydrateState:
		locs := make(map[uuid.UUID]*model.Location, len(a.Locations))
		for i := range a.Locations {
			loc := a.Locations[i]
			locs[loc.ID] = &loc
		}
		s.Locations = locs
		return s

	case LocationCreated:
		loc := a.Location
		s.Locations = cloneLocations(s.Locations)
		s.Locations[loc.ID] = &loc
		return s

	case LocationUpdated:
		if _, ok := s.Locations[a.Location.ID]; !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "location", ID: a.Location.ID.String()}).Error()
			return s
		}
		loc := a.Location
		s.Locations = cloneLocations(s.Locations)
		s.Locations[loc.ID] = &loc
		return s

	case LocationDeleted:
		if _, ok := s.Locations[a.LocationID]; !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "location", ID: a.LocationID.String()}).Error()
			return s
		}
		s.Locations = cloneLocations(s.Locations)
		delete(s.Locations, a.LocationID)
		return s

	case DeleteLocationRejected:
		s.ErrorMessage = (&model.ConflictError{
			Reason: fmt.Sprintf("location %s still has shift types", a.LocationID),
			Refs:   a.Refs,
		}).Error()
		return s

	case ErrorRaised:
		if a.Slice == SliceLocations {
			s.ErrorMessage = a.Message
		}
		return s

	case ErrorDismissed:
		if a.Slice == SliceLocations {
			s.ErrorMessage = ""
		}
		return s

	default:
		return s
	}
}

func cloneLocations(m map[uuid.UUID]*model.Location) map[uuid.UUID]*model.Location {
	out := make(map[uuid.UUID]*model.Location, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
