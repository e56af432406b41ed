package safety

const (
	EmergencyMessage = "⚠️ CRITICAL: This appears to be a medical emergency. " +
		"Seek immediate professional medical attention. Call emergency services."
	BlockedMessage          = "Response blocked: Contains dangerous substances or practices."
	PassMessage             = "Response passed safety checks."
	AdvisoryMessage         = "Response passed safety checks with advisories."
	RulesUnavailableMessage = "Response withheld: safety rules are unavailable."

	// InteractionDisclaimer is attached to every Safe verdict.
	InteractionDisclaimer = "If thou takest draughts from a modern leech (physician), " +
		"consult them ere mixing remedies."

	MedicalDisclaimer = "\n\n⚠️ CRITICAL DISCLAIMER: This is an educational/experimental project only. " +
		"It is NOT medical advice. Always consult qualified healthcare professionals " +
		"for medical concerns. Do not use this to diagnose or treat any medical condition."

	RefusalMessage = "I cannot safely advise on this. Please consult a qualified healthcare professional."
)
