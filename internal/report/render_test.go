package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"zoowatch/internal/submission/models"
)

type RenderSuite struct {
	suite.Suite
	now time.Time
}

func (s *RenderSuite) SetupTest() {
	s.now = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func fullObservation() *models.StructuredObservation {
	return &models.StructuredObservation{
		SchemaVersion:              models.ObservationSchemaVersion,
		Date:                       "2024-05-01",
		AnimalObservedOnTime:       models.BoolPtr(true),
		CleanDrinkingWaterProvided: models.BoolPtr(true),
		EnclosureCleanedProperly:   models.BoolPtr(false),
		NormalBehaviourStatus:      models.BoolPtr(true),
		FeedSupplementsAvailable:   models.BoolPtr(true),
		FeedGivenAsPrescribed:      models.BoolPtr(true),
		NormalBehaviourDetails:     models.StringPtr("Calm and responsive"),
		OtherRequirements:          models.StringPtr("Extra bedding for the cold nights"),
		InchargeSignature:          models.StringPtr("Dr. Meera Nair"),
		DailyHealthMonitoring:      models.StringPtr("All animals in good health"),
		CarnivoreFeedingChart:      models.StringPtr("Fed at 08:00 and 16:00"),
		MedicineStockRegister:      models.StringPtr("Stock levels adequate"),
		DailyWildlifeMonitoring:    models.StringPtr("Perimeter checked twice"),
	}
}

func (s *RenderSuite) TestFullReportLayout() {
	out := string(Render(fullObservation(), "Akhil Sharma", "2024-05-01", s.now))

	s.Run("header carries date, keeper, and generation time", func() {
		s.Contains(out, "ZOO ANIMAL MONITORING REPORT\n")
		s.Contains(out, "Date: 2024-05-01\n")
		s.Contains(out, "Zoo Keeper: Akhil Sharma\n")
		s.Contains(out, "Generated: 2024-05-01 10:30:00\n")
	})

	s.Run("boolean flags render as yes or no", func() {
		s.Contains(out, "Animal Observed on Time: Yes\n")
		s.Contains(out, "Enclosure Cleaned Properly: No\n")
	})

	s.Run("summaries render heading then body", func() {
		s.Contains(out, "Daily Animal Health Monitoring:\nAll animals in good health\n")
		s.Contains(out, "Carnivorous Animal Feeding Chart:\nFed at 08:00 and 16:00\n")
	})

	s.Run("special requirements section present when set", func() {
		s.Contains(out, "SPECIAL REQUIREMENTS\n--------------------\nExtra bedding for the cold nights\n")
	})

	s.Run("explicit signature wins over author name", func() {
		s.Contains(out, "In-charge Signature: Dr. Meera Nair\n")
	})

	s.Run("footer closes the report", func() {
		s.True(strings.HasSuffix(out, "This report was generated automatically by the Zoo Management System.\n"))
	})

	s.Run("section order is fixed", func() {
		details := strings.Index(out, "OBSERVATION DETAILS")
		summaries := strings.Index(out, "MONITORING SUMMARIES")
		special := strings.Index(out, "SPECIAL REQUIREMENTS")
		auth := strings.Index(out, "AUTHORIZATION")
		s.Less(details, summaries)
		s.Less(summaries, special)
		s.Less(special, auth)
	})
}

func (s *RenderSuite) TestMissingFieldsOmitted() {
	obs := &models.StructuredObservation{
		SchemaVersion:        models.ObservationSchemaVersion,
		Date:                 "2024-05-01",
		AnimalObservedOnTime: models.BoolPtr(true),
	}
	out := string(Render(obs, "Akhil Sharma", "2024-05-01", s.now))

	s.Run("unset flags leave no line", func() {
		s.NotContains(out, "Clean Drinking Water Provided")
		s.NotContains(out, "Behaviour Details")
	})

	s.Run("empty summaries leave no heading", func() {
		s.NotContains(out, "Medicine Stock Register")
		s.NotContains(out, "Daily Wildlife Monitoring")
	})

	s.Run("special requirements section absent entirely", func() {
		s.NotContains(out, "SPECIAL REQUIREMENTS")
	})

	s.Run("signature falls back to author name", func() {
		s.Contains(out, "In-charge Signature: Akhil Sharma\n")
	})
}

func (s *RenderSuite) TestDeterministicModuloTimestamp() {
	first := string(Render(fullObservation(), "Akhil Sharma", "2024-05-01", s.now))
	second := string(Render(fullObservation(), "Akhil Sharma", "2024-05-01", s.now.Add(3*time.Hour)))

	strip := func(report string) string {
		lines := strings.Split(report, "\n")
		kept := lines[:0]
		for _, l := range lines {
			if strings.HasPrefix(l, "Generated: ") {
				continue
			}
			kept = append(kept, l)
		}
		return strings.Join(kept, "\n")
	}
	s.Equal(strip(first), strip(second))
}
