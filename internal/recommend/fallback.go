// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package recommend

// FallbackRecommendations returns the static, known-good dataset served
// when the provider is unreachable after all retries. Always exactly
// three well-formed entries, so the dashboard renders a full list even
// during provider outages.
func FallbackRecommendations() []Recommendation {
	return []Recommendation{
		{
			Name:     "The Orchard Pavilion",
			Reason:   "Flexible indoor-outdoor space that comfortably hosts 80-150 guests with on-site parking.",
			Features: []string{"Garden ceremony lawn", "Covered pavilion", "Bridal suite", "Free parking"},
			Setup:    "Banquet rounds for dinner with a separate ceremony lawn; setup crew included.",
			Catering: "In-house catering with seasonal menus; outside caterers allowed for a fee.",
			CostBreakdown: CostBreakdown{
				Venue:    2800,
				Catering: 1600,
				Extras:   400,
				Total:    4800,
			},
		},
		{
			Name:     "Harborview Loft",
			Reason:   "Industrial loft with waterfront views, well suited to evening receptions up to 120 guests.",
			Features: []string{"Floor-to-ceiling windows", "Built-in bar", "AV system", "Rooftop terrace"},
			Setup:    "Open floor plan; tables and chairs included, configured by the venue team.",
			Catering: "Preferred caterer list; licensed bar service in-house.",
			CostBreakdown: CostBreakdown{
				Venue:    3200,
				Catering: 1900,
				Extras:   600,
				Total:    5700,
			},
		},
		{
			Name:     "Cedar Hall",
			Reason:   "Classic banquet hall with predictable pricing and full-service staff for up to 200 guests.",
			Features: []string{"Stage and dance floor", "Commercial kitchen", "Coat check", "Accessible entrance"},
			Setup:    "Theater or banquet configuration; day-of coordinator included.",
			Catering: "Full in-house catering with plated or buffet service.",
			CostBreakdown: CostBreakdown{
				Venue:    2200,
				Catering: 2100,
				Extras:   300,
				Total:    4600,
			},
		},
	}
}
