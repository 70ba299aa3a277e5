package recommend

import (
	"fmt"
	"strings"
)

// Rule thresholds, in kg CO2 over the monthly window, above which a category
// earns targeted advice.
const (
	transportThreshold = 50
	energyThreshold    = 100
	dietThreshold      = 30
)

func defaultRecommendations(stats Stats) []string {
	var recommendations []string

	if stats.Transport > transportThreshold {
		recommendations = append(recommendations,
			"Consider carpooling or using public transport for your daily commute. This could reduce your transport emissions by up to 50%.",
			"For short trips under 5km, try cycling or walking instead of driving. You can save about 1kg CO2 per trip.")
	}
	if stats.Energy > energyThreshold {
		recommendations = append(recommendations,
			"Switch to LED bulbs and turn off lights when leaving rooms. This simple change can reduce your electricity usage by 15%.",
			"Consider lowering your thermostat by 2°C. This can reduce heating emissions by up to 10%.")
	}
	if stats.Diet > dietThreshold {
		recommendations = append(recommendations,
			"Try having 2-3 meat-free days per week. Replacing beef with plant-based meals can save up to 4.5kg CO2 per meal.",
			"Reduce food waste by planning meals ahead. About 8% of global emissions come from wasted food.")
	}

	recommendations = append(recommendations,
		"Track your emissions daily to build awareness and identify opportunities for improvement.",
		"Set a monthly carbon budget goal and challenge yourself to stay under it.")

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

func defaultChatResponse(message string, stats Stats) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "transport", "car", "drive"):
		return fmt.Sprintf("Based on your transport emissions of %s this month, here are some tips:\n\n"+
			"• Use public transport when possible - buses emit about 60%% less CO2 per passenger-km than cars\n"+
			"• Consider carpooling to share the emissions\n"+
			"• For short distances, walking or cycling produces zero emissions\n"+
			"• If buying a new car, consider an electric or hybrid vehicle",
			FormatEmission(stats.Transport))
	case containsAny(lower, "energy", "electricity", "power"):
		return fmt.Sprintf("Your energy emissions are %s this month. Here's how to reduce them:\n\n"+
			"• Switch to a renewable energy provider if available\n"+
			"• Use LED bulbs - they use 75%% less energy\n"+
			"• Unplug devices when not in use\n"+
			"• Set your thermostat 1-2°C lower in winter",
			FormatEmission(stats.Energy))
	case containsAny(lower, "food", "diet", "eat", "meat"):
		return fmt.Sprintf("Your diet emissions are %s this month. Tips for lower-carbon eating:\n\n"+
			"• Beef has the highest carbon footprint - try replacing it with chicken or plant-based alternatives\n"+
			"• Eat seasonal and local produce when possible\n"+
			"• Reduce food waste by planning meals\n"+
			"• Try having one or two meat-free days per week",
			FormatEmission(stats.Diet))
	case containsAny(lower, "goal", "target", "reduce"):
		return fmt.Sprintf("Great question! The average person's carbon footprint is about 4-8 tonnes per year. Here's how to set meaningful goals:\n\n"+
			"• Start by reducing 10%% from your current emissions\n"+
			"• Focus on your highest emission category first\n"+
			"• Small daily changes add up over time\n"+
			"• Currently you're at %s this month",
			FormatEmission(stats.Monthly))
	}

	return fmt.Sprintf("I'm here to help you reduce your carbon footprint! Your current monthly emissions are %s.\n\n"+
		"You can ask me about:\n"+
		"• Transportation alternatives\n"+
		"• Energy saving tips\n"+
		"• Low-carbon diet choices\n"+
		"• Setting reduction goals\n\n"+
		"What would you like to know more about?",
		FormatEmission(stats.Monthly))
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
