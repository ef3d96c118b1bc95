package state

// Reduce is the root reducer. It threads the action through every slice
// reducer in a fixed order and merges the results. Slices never see each
// other's post-update state within one dispatch; anything cross-slice
// happens through middleware dispatching follow-up actions.
func Reduce(s State, a Action) State {
	return State{
		Schedule:   reduceSchedule(s.Schedule, a),
		Today:      reduceToday(s.Today, a),
		ShiftTypes: reduceShiftTypes(s.ShiftTypes, a),
		Locations:  reduceLocations(s.Locations, a),
		ChangeLog:  reduceChangeLog(s.ChangeLog, a),
		Settings:   reduceSettings(s.Settings, a),
	}
}
