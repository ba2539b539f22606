package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func products(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Brand+" "+r.Product)
	}
	return out
}

func TestSeniorLight(t *testing.T) {
	recs := Recommend(AnimalProfile{Type: TypeSenior, ActivityLevel: ActivityLight})
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"Nutrena SafeChoice Senior", "Buckeye EQ8 Senior", "Pro Elite Senior"}, products(recs))
	for _, r := range recs {
		assert.Equal(t, []string{"Senior"}, r.Tags)
	}
}

func TestFallback(t *testing.T) {
	for _, p := range []AnimalProfile{
		{},
		{Type: TypeHealthIssues},
		{Type: TypePleasure, ActivityLevel: ActivityModerate},
		{HealthConcerns: []HealthConcern{ConcernJoint}},
		{Type: "zebra", ActivityLevel: "sometimes"},
	} {
		recs := Recommend(p)
		require.Len(t, recs, 3)
		assert.Equal(t, []string{"Nutrena SafeChoice Original", "Pro Elite Omega Advantage", "Expert Advice Free Consultation"}, products(recs))
	}
}

func TestTruncatesInDeclarationOrder(t *testing.T) {
	recs := Recommend(AnimalProfile{
		Type:           TypeCompetition,
		ActivityLevel:  ActivityHeavy,
		HealthConcerns: []HealthConcern{ConcernRespiratory, ConcernDigestive},
	})
	assert.Equal(t, []string{"Cavalor Performix", "Pro Elite Performance", "Red Mills Competition 14 Mix"}, products(recs))

	recs = Recommend(AnimalProfile{Type: TypeHardKeeper, HealthConcerns: []HealthConcern{ConcernRespiratory}})
	assert.Equal(t, []string{"Cavalor Wholegain", "Nutrena ProForce Senior", "Cavalor Bronchix Pure"}, products(recs))
}

func TestHeavyActivityTriggersPerformance(t *testing.T) {
	recs := Recommend(AnimalProfile{Type: TypePleasure, ActivityLevel: ActivityHeavy})
	assert.Equal(t, "Cavalor", recs[0].Brand)
	assert.Equal(t, []string{"performance"}, MatchedRules(AnimalProfile{Type: TypePleasure, ActivityLevel: ActivityHeavy}))
}

func TestDeduplicatesByBrandAndProduct(t *testing.T) {
	recs := Recommend(AnimalProfile{Type: TypeEasyKeeper, HealthConcerns: []HealthConcern{ConcernMetabolic}})
	assert.Equal(t, []string{"Nutrena SafeChoice Maintenance", "Pro Elite Starch Wise", "Crypto Aero Wholefood Feed"}, products(recs))
	assert.Equal(t, []string{"Easy Keeper"}, recs[1].Tags, "first occurrence wins")
}

func TestDeterministic(t *testing.T) {
	p := AnimalProfile{Type: TypeYoung, HealthConcerns: []HealthConcern{ConcernMuscle, ConcernHoofCoat}}
	first := Recommend(p)
	second := Recommend(p)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)

	first[0].Tags[0] = "mutated"
	assert.Equal(t, "Growth", Recommend(p)[0].Tags[0])
}

func TestParseProfile(t *testing.T) {
	p := ParseProfile("Senior Horse (15+ years)", "Heavy / Intense (Daily training)",
		[]string{"Digestive / Ulcers", "digestive", "Metabolic (EMS/IR)", "wings"})
	assert.Equal(t, TypeSenior, p.Type)
	assert.Equal(t, ActivityHeavy, p.ActivityLevel)
	assert.Equal(t, []HealthConcern{ConcernDigestive, ConcernMetabolic}, p.HealthConcerns)

	p = ParseProfile("  HARD   keeper ", "", nil)
	assert.Equal(t, TypeHardKeeper, p.Type)
	assert.Equal(t, ActivityLevel(""), p.ActivityLevel)
	assert.Empty(t, p.HealthConcerns)

	p = ParseProfile("unicorn", "light", nil)
	assert.Equal(t, AnimalType(""), p.Type)
	assert.Equal(t, ActivityLight, p.ActivityLevel)
}

func TestEveryRuleBounded(t *testing.T) {
	all := []HealthConcern{ConcernDigestive, ConcernMetabolic, ConcernJoint, ConcernRespiratory, ConcernHoofCoat, ConcernMuscle}
	types := []AnimalType{TypeCompetition, TypePleasure, TypeSenior, TypeYoung, TypeHardKeeper, TypeHealthIssues, TypeBroodmare, TypeEasyKeeper}
	levels := []ActivityLevel{ActivityLight, ActivityModerate, ActivityHeavy}
	for _, ty := range types {
		for _, lv := range levels {
			recs := Recommend(AnimalProfile{Type: ty, ActivityLevel: lv, HealthConcerns: all})
			assert.LessOrEqual(t, len(recs), MaxResults)
			assert.NotEmpty(t, recs)
		}
	}
}
