package enums

// QuoteMethod labels which pricing path produced a shipping quote.
type QuoteMethod string

const (
	QuoteMethodZonePrecise      QuoteMethod = "zone_precise"
	QuoteMethodRegionalFallback QuoteMethod = "regional_fallback"
	QuoteMethodError            QuoteMethod = "error"
)

// String implements fmt.Stringer.
func (q QuoteMethod) String() string {
	return string(q)
}
