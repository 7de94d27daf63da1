package catalog

// Step is one stage of the guided self-check. Instructions are ordered page
// message keys shown before the conversational phase; Questions lists the
// catalog question IDs the conversational component walks through for this
// step. Question IDs are globally unique across steps.
type Step struct {
	ID           string
	Accent       string
	Instructions []string
	Questions    []string
}

var steps = []Step{
	{
		ID:     "visual_inspection",
		Accent: "rose",
		Instructions: []string{
			"selfcheck.visual.intro",
			"selfcheck.visual.mirror",
			"selfcheck.visual.arms_raised",
		},
		Questions: []string{"skin_dimpling", "nipple_retraction", "size_change"},
	},
	{
		ID:     "palpation_standing",
		Accent: "coral",
		Instructions: []string{
			"selfcheck.standing.intro",
			"selfcheck.standing.finger_pads",
			"selfcheck.standing.pattern",
		},
		Questions: []string{"lump_found", MassCharacteristicsID, "lump_location"},
	},
	{
		ID:     "palpation_lying",
		Accent: "mauve",
		Instructions: []string{
			"selfcheck.lying.intro",
			"selfcheck.lying.pillow",
		},
		Questions: []string{"nipple_discharge", "breast_pain", "pain_location"},
	},
}

// Steps returns the ordered self-check steps. Read-only for callers.
func Steps() []Step {
	return steps
}

// StepByID looks up a self-check step definition.
func StepByID(id string) (Step, bool) {
	for _, s := range steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
