package catalog

import "time"

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Defaults returns the catalog the portal ships with.
func Defaults() []*Scholarship {
	defaults := []*Scholarship{
		{
			Title:             "Merit-Based Excellence Award",
			Summary:           "Recognizing outstanding academic achievement and leadership potential in undergraduate students.",
			Category:          "Merit-Based",
			Eligibility:       "Minimum GPA 3.5, enrolled in accredited university, demonstrated leadership experience",
			Amount:            2500,
			RequiredDocuments: []string{"Academic Transcripts", "Letter of Recommendation", "Personal Statement"},
			Deadline:          date(2027, time.March, 15),
		},
		{
			Title:             "STEM Innovation Grant",
			Summary:           "Supporting students pursuing degrees in Science, Technology, Engineering, and Mathematics.",
			Category:          "STEM",
			Eligibility:       "STEM major, minimum GPA 3.0, research project proposal required",
			Amount:            3000,
			RequiredDocuments: []string{"Research Proposal", "Academic Records", "Faculty Endorsement"},
			Deadline:          date(2027, time.April, 1),
		},
		{
			Title:             "Community Service Leadership Award",
			Summary:           "For students who have demonstrated exceptional commitment to community service and social impact.",
			Category:          "Community Service",
			Eligibility:       "Minimum 100 hours community service, leadership role in community organization",
			Amount:            1500,
			RequiredDocuments: []string{"Service Hours Log", "Community Leader Reference", "Impact Essay"},
			Deadline:          date(2027, time.February, 28),
		},
		{
			Title:             "Financial Need Assistance Program",
			Summary:           "Supporting students from low-income families to pursue higher education opportunities.",
			Category:          "Need-Based",
			Eligibility:       "Family income below $50,000, enrolled full-time, minimum GPA 2.5",
			Amount:            4000,
			RequiredDocuments: []string{"Tax Returns", "FAFSA", "Financial Hardship Statement"},
			Deadline:          date(2027, time.May, 15),
		},
		{
			Title:             "Arts and Humanities Excellence Grant",
			Summary:           "Celebrating creativity and academic excellence in arts, literature, and humanities.",
			Category:          "Arts & Humanities",
			Eligibility:       "Arts/Humanities major, portfolio submission, minimum GPA 3.2",
			Amount:            2000,
			RequiredDocuments: []string{"Portfolio", "Artist Statement", "Academic Transcripts"},
			Deadline:          date(2027, time.March, 30),
		},
		{
			Title:             "Entrepreneurship Innovation Fund",
			Summary:           "Supporting student entrepreneurs with innovative business ideas and startup potential.",
			Category:          "Entrepreneurship",
			Eligibility:       "Business plan required, prototype or proof of concept, undergraduate/graduate students",
			Amount:            5000,
			RequiredDocuments: []string{"Business Plan", "Prototype Demo", "Market Analysis"},
			Deadline:          date(2027, time.April, 20),
		},
	}

	for _, s := range defaults {
		s.ID = StableID(s.Title)
	}

	return defaults
}
