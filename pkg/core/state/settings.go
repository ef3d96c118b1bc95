package state

// reduceSettings maintains user preferences.
func reduceSettings(s SettingsState, a Action) SettingsState {
	switch a := a.(type) {
	case SetRetention:
		s.Retention = a.Retention
		return s

	case SetActorName:
		s.ActorName = a.Name
		return s

	case SetCalendarSync:
		s.CalendarSync = a.Enabled
		return s

	case ErrorRaised:
		if a.Slice == SliceSettings {
			s.ErrorMessage = a.Message
		}
		return s

	case ErrorDismissed:
		if a.Slice == SliceSettings {
			s.ErrorMessage = ""
		}
		return s

	default:
		return s
	}
}
