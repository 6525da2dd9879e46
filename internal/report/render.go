// Package report renders the plain-text monitoring report for one submission.
// Rendering is deterministic: identical observation, author, and date produce
// byte-identical output except for the Generated timestamp line.
package report

import (
	"fmt"
	"strings"
	"time"

	"zoowatch/internal/submission/models"
)

// Render produces the report artifact. Section order is fixed: header,
// observation details, monitoring summaries, special requirements (optional),
// authorization signature, generation footer. Missing optional fields omit
// their line or section entirely.
func Render(obs *models.StructuredObservation, authorName, date string, now time.Time) []byte {
	var b strings.Builder

	b.WriteString("ZOO ANIMAL MONITORING REPORT\n")
	b.WriteString("============================\n\n")
	fmt.Fprintf(&b, "Date: %s\n", date)
	fmt.Fprintf(&b, "Zoo Keeper: %s\n", authorName)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	b.WriteString("OBSERVATION DETAILS\n")
	b.WriteString("-------------------\n")
	writeFlag(&b, "Animal Observed on Time", obs.AnimalObservedOnTime)
	writeFlag(&b, "Clean Drinking Water Provided", obs.CleanDrinkingWaterProvided)
	writeFlag(&b, "Enclosure Cleaned Properly", obs.EnclosureCleanedProperly)
	writeFlag(&b, "Normal Behaviour Status", obs.NormalBehaviourStatus)
	writeText(&b, "Behaviour Details", obs.NormalBehaviourDetails)
	writeFlag(&b, "Feed and Supplements Available", obs.FeedSupplementsAvailable)
	writeFlag(&b, "Feed Given as Prescribed", obs.FeedGivenAsPrescribed)
	b.WriteString("\n")

	b.WriteString("MONITORING SUMMARIES\n")
	b.WriteString("--------------------\n")
	writeSummary(&b, "Daily Animal Health Monitoring", obs.DailyHealthMonitoring)
	writeSummary(&b, "Carnivorous Animal Feeding Chart", obs.CarnivoreFeedingChart)
	writeSummary(&b, "Medicine Stock Register", obs.MedicineStockRegister)
	writeSummary(&b, "Daily Wildlife Monitoring", obs.DailyWildlifeMonitoring)

	if obs.OtherRequirements != nil && *obs.OtherRequirements != "" {
		b.WriteString("SPECIAL REQUIREMENTS\n")
		b.WriteString("--------------------\n")
		b.WriteString(*obs.OtherRequirements)
		b.WriteString("\n\n")
	}

	b.WriteString("AUTHORIZATION\n")
	b.WriteString("-------------\n")
	signature := authorName
	if obs.InchargeSignature != nil && *obs.InchargeSignature != "" {
		signature = *obs.InchargeSignature
	}
	fmt.Fprintf(&b, "In-charge Signature: %s\n\n", signature)

	b.WriteString("---\n")
	b.WriteString("This report was generated automatically by the Zoo Management System.\n")

	return []byte(b.String())
}

func writeFlag(b *strings.Builder, label string, v *bool) {
	if v == nil {
		return
	}
	answer := "No"
	if *v {
		answer = "Yes"
	}
	fmt.Fprintf(b, "%s: %s\n", label, answer)
}

func writeText(b *strings.Builder, label string, v *string) {
	if v == nil || *v == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, *v)
}

func writeSummary(b *strings.Builder, heading string, v *string) {
	if v == nil || *v == "" {
		return
	}
	fmt.Fprintf(b, "%s:\n%s\n\n", heading, *v)
}
