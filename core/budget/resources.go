package budget

type Link struct {
	Name string `json:"name"`
	URL  string `json:"link"`
}

// ResourceGroup is a titled list of external planning links shown next to the calculator.
type ResourceGroup struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []Link `json:"items"`
}

var resources = []ResourceGroup{
	{
		Title:       "Study Guides",
		Description: "Comprehensive guides for test preparation and academic success.",
		Items: []Link{
			{Name: "SAT/ACT Preparation Guide", URL: "https://www.khanacademy.org/test-prep/sat"},
			{Name: "TOEFL Study Materials", URL: "https://www.ets.org/toefl/test-takers/ibt/prepare.html"},
			{Name: "GRE/GMAT Resources", URL: "https://www.mba.com/exams/gmat/prepare"},
			{Name: "Academic Writing Guidelines", URL: "https://owl.purdue.edu/owl/general_writing/academic_writing/"},
		},
	},
	{
		Title:       "Budget Planning",
		Description: "Tools and resources for financial planning and management.",
		Items: []Link{
			{Name: "Financial Planning Worksheet", URL: "https://educationusa.state.gov/financial-aid-financial-planning"},
			{Name: "Scholarship Guide", URL: "https://www.internationalstudent.com/scholarships/"},
			{Name: "Cost Comparison Tool", URL: "https://www.collegedata.com/college-search"},
			{Name: "Budget Template", URL: "https://www.salliemae.com/college-planning/tools/college-planning-calculator/"},
		},
	},
	{
		Title:       "Application Resources",
		Description: "Templates and guides for your application process.",
		Items: []Link{
			{Name: "SOP Writing Guide", URL: "https://www.prepscholar.com/gre/blog/statement-of-purpose-format/"},
			{Name: "Resume Templates", URL: "https://www.indeed.com/career-advice/resumes-cover-letters/college-student-resume-template"},
			{Name: "LOR Guidelines", URL: "https://www.princetonreview.com/grad-school-advice/letter-of-recommendation"},
			{Name: "Application Checklist", URL: "https://bigfuture.collegeboard.org/plan-for-college/your-college-application"},
		},
	},
	{
		Title:       "Important Dates",
		Description: "Key deadlines and events for your academic journey.",
		Items: []Link{
			{Name: "2024 Application Calendar", URL: "https://www.commonapp.org/apply/first-time-students"},
			{Name: "Test Dates Schedule", URL: "https://collegereadiness.collegeboard.org/sat/register/dates-deadlines"},
			{Name: "Visa Interview Guide", URL: "https://travel.state.gov/content/travel/en/us-visas/study/student-visa.html"},
			{Name: "Pre-departure Checklist", URL: "https://educationusa.state.gov/your-5-steps-us-study/prepare-your-departure"},
		},
	},
}

// Resources returns the planning resources, grouped.
func Resources() []ResourceGroup {
	groups := make([]ResourceGroup, len(resources))
	copy(groups, resources)
	return groups
}
