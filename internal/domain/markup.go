package domain

// Structural markers around blocks the system appends to a rewritten body.
// They are removed again before anything leaves for the publishing backend.
const (
	AttributionOpen  = "<!-- feedrewriter:attribution -->"
	AttributionClose = "<!-- /feedrewriter:attribution -->"
	SourceLinkOpen   = "<!-- feedrewriter:source-link -->"
	SourceLinkClose  = "<!-- /feedrewriter:source-link -->"
)
