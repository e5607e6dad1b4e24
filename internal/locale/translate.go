package locale

// Pick returns the text matching the request language, defaulting to French.
func Pick(language, english, french string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return french
	}
	if french != "" {
		return french
	}
	return english
}

// Message keys surfaced to the app after user actions.
const (
	MsgHabitCompleted   = "habit_completed"
	MsgAlreadyCompleted = "already_completed"
	MsgProofPending     = "proof_pending"
	MsgNotDue           = "not_due"
	MsgHabitUnchecked   = "habit_unchecked"
	MsgHabitCreated     = "habit_created"
	MsgHabitUpdated     = "habit_updated"
	MsgHabitDeactivated = "habit_deactivated"
	MsgDecayApplied     = "decay_applied"
)

var messages = map[string][2]string{
	MsgHabitCompleted:   {"Habit completed!", "✅ Habitude validée !"},
	MsgAlreadyCompleted: {"Already done today.", "Déjà faite aujourd'hui."},
	MsgProofPending:     {"📸 Proof required, coming soon.", "📸 Preuve requise — fonctionnalité à venir."},
	MsgNotDue:           {"Not planned for today.", "Pas prévue aujourd'hui."},
	MsgHabitUnchecked:   {"Habit unchecked.", "Habitude décochée."},
	MsgHabitCreated:     {"Habit created. Let's see if you keep your word.", "Habitude créée. On verra si tu tiens parole."},
	MsgHabitUpdated:     {"Habit updated.", "Habitude mise à jour."},
	MsgHabitDeactivated: {"Habit archived.", "Habitude archivée."},
	MsgDecayApplied:     {"You slacked off. XP lost.", "Tu t'es relâché. XP perdue."},
}

// Message returns the localized text for key, or key itself when unknown.
func Message(language, key string) string {
	pair, ok := messages[key]
	if !ok {
		return key
	}
	return Pick(language, pair[0], pair[1])
}
