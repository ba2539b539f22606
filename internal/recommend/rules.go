package recommend

// Recommendation one suggested product with the reason it was picked.
type Recommendation struct {
	Icon    string   `json:"icon"`
	Brand   string   `json:"brand"`
	Product string   `json:"product"`
	Reason  string   `json:"reason"`
	Tags    []string `json:"tags"`
}

type rule struct {
	name    string
	match   func(AnimalProfile) bool
	entries []Recommendation
}

func entry(tag, icon, brand, product, reason string) Recommendation {
	return Recommendation{Icon: icon, Brand: brand, Product: product, Reason: reason, Tags: []string{tag}}
}

func isType(t AnimalType) func(AnimalProfile) bool {
	return func(p AnimalProfile) bool { return p.Type == t }
}

func hasConcern(c HealthConcern) func(AnimalProfile) bool {
	return func(p AnimalProfile) bool { return p.hasConcern(c) }
}

const (
	reasonGrowth      = "Balanced calcium/phosphorus ratio ideal for growing horses. Supports bone development."
	reasonGroNWin     = "Ration balancer for young horses on forage-based diets."
	reasonMaintenance = "Balanced nutrition for easy keepers and light work horses. Won't cause overheating."
	reasonStarchWise  = "Low NSC formula for horses with EMS/IR. Maintains energy without metabolic spikes."
)

// rules is evaluated top to bottom; matching rules contribute their entries in order.
// Joint concerns and the generic health_issues type have no dedicated rule.
var rules = []rule{
	{
		name: "performance",
		match: func(p AnimalProfile) bool {
			return p.Type == TypeCompetition || p.ActivityLevel == ActivityHeavy
		},
		entries: []Recommendation{
			entry("Performance", "🏆", "Cavalor", "Performix", "High-energy formula perfect for performance & competition horses. Supports stamina and recovery."),
			entry("Performance", "⚡", "Pro Elite", "Performance", "Advanced formula for intense training. Optimal protein and fat ratios for peak performance."),
			entry("Performance", "🌟", "Red Mills", "Competition 14 Mix", "High protein competition feed trusted by professional riders worldwide."),
		},
	},
	{
		name:  "senior",
		match: isType(TypeSenior),
		entries: []Recommendation{
			entry("Senior", "🤍", "Nutrena", "SafeChoice Senior", "Easy to chew, digestible formula with extra calories for senior horses that need weight support."),
			entry("Senior", "🏥", "Buckeye", "EQ8 Senior", "Gut-health focused senior formula. Supports digestion and maintains body condition."),
			entry("Senior", "💊", "Pro Elite", "Senior", "Complete senior nutrition with joint support and easy digestibility."),
		},
	},
	{
		name:  "young",
		match: isType(TypeYoung),
		entries: []Recommendation{
			entry("Growth", "🌱", "Pro Elite", "Growth", reasonGrowth),
			entry("Growth", "💪", "Buckeye", "Gro-N-Win", reasonGroNWin),
		},
	},
	{
		name:  "hard_keeper",
		match: isType(TypeHardKeeper),
		entries: []Recommendation{
			entry("Hard Keeper", "💪", "Cavalor", "Wholegain", "High-fat conditioning supplement for hard keepers. Safe weight gain without excitability."),
			entry("Hard Keeper", "🌟", "Nutrena", "ProForce Senior", "High fat, high fiber formula for horses needing more calories."),
		},
	},
	{
		name: "pleasure_light",
		match: func(p AnimalProfile) bool {
			return p.Type == TypePleasure && p.ActivityLevel == ActivityLight
		},
		entries: []Recommendation{
			entry("Pleasure", "🌿", "Nutrena", "SafeChoice Maintenance", reasonMaintenance),
			entry("Pleasure", "🌾", "Nutrena", "SafeChoice Original", "Versatile all-rounder for everyday pleasure horses. Safe starch levels."),
		},
	},
	{
		name:  "broodmare",
		match: isType(TypeBroodmare),
		entries: []Recommendation{
			entry("Broodmare", "🌱", "Pro Elite", "Growth", "Formulated for broodmares in late gestation and lactation as well as foals. "+reasonGrowth),
			entry("Broodmare", "💪", "Buckeye", "Gro-N-Win", "Concentrated protein, vitamins and minerals for mares that hold condition on forage."),
		},
	},
	{
		name:  "easy_keeper",
		match: isType(TypeEasyKeeper),
		entries: []Recommendation{
			entry("Easy Keeper", "🌿", "Nutrena", "SafeChoice Maintenance", reasonMaintenance),
			entry("Easy Keeper", "⚖️", "Pro Elite", "Starch Wise", reasonStarchWise),
		},
	},
	{
		name:  "digestive",
		match: hasConcern(ConcernDigestive),
		entries: []Recommendation{
			entry("Digestive", "🩺", "Cavalor", "FiberForce Gastro", "Specifically formulated for horses prone to gastric ulcers. Low starch, high fiber."),
			entry("Digestive", "🌿", "Havens", "Gastro Plus", "Gentle on the digestive system. Supports gut flora and reduces ulcer risk."),
		},
	},
	{
		name:  "metabolic",
		match: hasConcern(ConcernMetabolic),
		entries: []Recommendation{
			entry("Metabolic", "⚖️", "Pro Elite", "Starch Wise", reasonStarchWise),
			entry("Metabolic", "🌱", "Crypto Aero", "Wholefood Feed", "Grain-free, low sugar/starch natural feed. Ideal for metabolic horses."),
		},
	},
	{
		name:  "hoof_coat",
		match: hasConcern(ConcernHoofCoat),
		entries: []Recommendation{
			entry("Hoof & Coat", "✨", "Supplement", "Horseshoer's Secret", "Pelleted hoof supplement with biotin for stronger, healthier hooves."),
			entry("Hoof & Coat", "🌟", "Supplement", "Max-E-Glo Rice Bran", "Stabilized rice bran supplement for improved coat shine and weight."),
		},
	},
	{
		name:  "muscle",
		match: hasConcern(ConcernMuscle),
		entries: []Recommendation{
			entry("Muscle", "💪", "Cavalor", "Muscle Force", "Amino acid complex to support muscle building and recovery."),
			entry("Muscle", "🏋️", "Pro Elite", "Topline Advantage", "High-quality protein for topline development and muscle definition."),
		},
	},
	{
		name:  "respiratory",
		match: hasConcern(ConcernRespiratory),
		entries: []Recommendation{
			entry("Respiratory", "💨", "Cavalor", "Bronchix Pure", "Supports respiratory health. Contains herbs to keep airways clear and healthy."),
		},
	},
}

var fallback = []Recommendation{
	entry("General", "🌾", "Nutrena", "SafeChoice Original", "Our most popular all-around feed. Balanced nutrition for most adult horses."),
	entry("General", "🏇", "Pro Elite", "Omega Advantage", "Great for coat, immune system, and overall health. The omega-3 boost horses love."),
	entry("General", "📞", "Expert Advice", "Free Consultation", "Call us at (561) 633-6003 for a personalized recommendation!"),
}
