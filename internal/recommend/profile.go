package recommend

import "strings"

// AnimalType the customer's description of the horse.
type AnimalType string

const (
	TypeCompetition  AnimalType = "competition"
	TypePleasure     AnimalType = "pleasure"
	TypeSenior       AnimalType = "senior"
	TypeYoung        AnimalType = "young"
	TypeHardKeeper   AnimalType = "hard_keeper"
	TypeHealthIssues AnimalType = "health_issues"
	TypeBroodmare    AnimalType = "broodmare"
	TypeEasyKeeper   AnimalType = "easy_keeper"
)

type ActivityLevel string

const (
	ActivityLight    ActivityLevel = "light"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHeavy    ActivityLevel = "heavy"
)

type HealthConcern string

const (
	ConcernDigestive   HealthConcern = "digestive"
	ConcernMetabolic   HealthConcern = "metabolic"
	ConcernJoint       HealthConcern = "joint"
	ConcernRespiratory HealthConcern = "respiratory"
	ConcernHoofCoat    HealthConcern = "hoof_coat"
	ConcernMuscle      HealthConcern = "muscle"
)

// MaxConcerns caps how many health concerns a profile carries.
const MaxConcerns = 6

// AnimalProfile is the recommendation input. It is never persisted.
type AnimalProfile struct {
	Type           AnimalType      `json:"type"`
	ActivityLevel  ActivityLevel   `json:"activityLevel"`
	HealthConcerns []HealthConcern `json:"healthConcerns"`
}

func (p AnimalProfile) hasConcern(c HealthConcern) bool {
	for _, hc := range p.HealthConcerns {
		if hc == c {
			return true
		}
	}
	return false
}

// Labels shown by the storefront's feed finder map onto the same values as the slugs.
var typeAliases = map[string]AnimalType{
	"competition":              TypeCompetition,
	"competition / show horse": TypeCompetition,
	"show":                     TypeCompetition,
	"pleasure":                 TypePleasure,
	"pleasure / trail horse":   TypePleasure,
	"trail":                    TypePleasure,
	"senior":                   TypeSenior,
	"senior horse (15+ years)": TypeSenior,
	"young":                    TypeYoung,
	"young / growing horse":    TypeYoung,
	"growing":                  TypeYoung,
	"hard_keeper":              TypeHardKeeper,
	"hard keeper":              TypeHardKeeper,
	"health_issues":            TypeHealthIssues,
	"horse with health issues": TypeHealthIssues,
	"broodmare":                TypeBroodmare,
	"broodmare / breeding":     TypeBroodmare,
	"easy_keeper":              TypeEasyKeeper,
	"easy keeper":              TypeEasyKeeper,
}

var activityAliases = map[string]ActivityLevel{
	"light":                            ActivityLight,
	"light (1-3 days/week)":            ActivityLight,
	"moderate":                         ActivityModerate,
	"moderate (4-5 days/week)":         ActivityModerate,
	"heavy":                            ActivityHeavy,
	"intense":                          ActivityHeavy,
	"heavy / intense (daily training)": ActivityHeavy,
}

var concernAliases = map[string]HealthConcern{
	"digestive":               ConcernDigestive,
	"digestive / ulcers":      ConcernDigestive,
	"ulcers":                  ConcernDigestive,
	"metabolic":               ConcernMetabolic,
	"metabolic (ems/ir)":      ConcernMetabolic,
	"joint":                   ConcernJoint,
	"joint / mobility issues": ConcernJoint,
	"respiratory":             ConcernRespiratory,
	"respiratory issues":      ConcernRespiratory,
	"hoof_coat":               ConcernHoofCoat,
	"hoof / coat issues":      ConcernHoofCoat,
	"muscle":                  ConcernMuscle,
	"muscle development":      ConcernMuscle,
}

func aliasKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ParseProfile resolves free-form input into a profile. It never fails:
// unknown values are dropped and concerns are deduplicated and capped.
func ParseProfile(animalType, activity string, concerns []string) AnimalProfile {
	p := AnimalProfile{
		Type:           typeAliases[aliasKey(animalType)],
		ActivityLevel:  activityAliases[aliasKey(activity)],
		HealthConcerns: []HealthConcern{},
	}
	for _, c := range concerns {
		hc, ok := concernAliases[aliasKey(c)]
		if !ok || p.hasConcern(hc) {
			continue
		}
		p.HealthConcerns = append(p.HealthConcerns, hc)
		if len(p.HealthConcerns) == MaxConcerns {
			break
		}
	}
	return p
}
