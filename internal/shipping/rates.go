package shipping

// Regional base rates in CLP, origin Zona Central. These are business
// constants agreed with the carriers, reviewed quarterly. Keyed by the
// roman-numeral region code.
const DefaultFallbackRateCLP = 7000

// DefaultRegionalRates returns the per-region fallback base rates. The map
// is built fresh on each call so callers can safely hold it read-only.
func DefaultRegionalRates() map[string]int {
	return map[string]int{
		"RM":   4500,  // Metropolitana
		"V":    5500,  // Valparaíso
		"VI":   5500,  // O'Higgins
		"VII":  5000,  // Maule
		"XVI":  5500,  // Ñuble
		"VIII": 6000,  // Biobío
		"IV":   6500,  // Coquimbo
		"IX":   6500,  // Araucanía
		"XIV":  7000,  // Los Ríos
		"X":    7500,  // Los Lagos
		"III":  8500,  // Atacama
		"II":   9500,  // Antofagasta
		"I":    10500, // Tarapacá
		"XV":   11500, // Arica y Parinacota
		"XI":   12500, // Aysén
		"XII":  13500, // Magallanes
	}
}
