package answer

// presetQA is the built-in fallback table consulted when retrieval produced
// nothing. Deliberately small: it covers the questions asked most often in
// production, so the service stays useful even with the FAQ dataset and the
// vector index both unavailable. Ordered; the first match wins.
var presetQA = []struct {
	question string
	answer   string
}{
	{
		"how do i apply for disability benefit",
		"Submit the disability benefit claim form together with a disability certificate " +
			"issued by an accredited medical facility. Claims can be filed at any branch " +
			"office or through the insurance bureau's online portal.",
	},
	{
		"what documents do i need for a claim",
		"You need the completed claim form, a medical certificate or diagnosis issued by " +
			"an accredited facility, a copy of your identity document, and your bankbook " +
			"cover for benefit deposit.",
	},
	{
		"how are benefit days calculated",
		"Benefit days depend on the assessed disability level (1 to 15). Occupational " +
			"injury claims receive 1.5 times the day count of ordinary injury claims at " +
			"the same level. The actual amount is the day count multiplied by your " +
			"average insured daily salary.",
	},
	{
		"where is the nearest branch office",
		"Use the facility lookup with your location to list branch offices sorted by " +
			"distance, including service hours and phone numbers.",
	},
	{
		"how long does a claim take",
		"Most complete claims are processed within 10 working days. Claims requiring " +
			"additional medical review can take longer; you will be notified in writing " +
			"if more documents are needed.",
	},
}

// lookupPreset matches against the built-in table with the same
// normalize-then-overlap strategy the FAQ matcher uses.
func lookupPreset(question string) string {
	clean := normalize(question)

	for _, p := range presetQA {
		if p.question == clean {
			return p.answer
		}
	}

	askedTokens := tokenSet(clean)
	for _, p := range presetQA {
		if overlaps(askedTokens, tokenSet(p.question)) {
			return p.answer
		}
	}
	return ""
}
