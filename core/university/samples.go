package university

import "github.com/edumedsolutions/edumed/core/gateway"

var samples = []gateway.University{
	{
		ID:             "1",
		Name:           "University of Texas at Austin",
		State:          "Texas",
		Lat:            30.2849,
		Lng:            -97.7341,
		Ranking:        10,
		AcceptanceRate: 32.0,
		TuitionMin:     38000,
		TuitionMax:     48000,
		Description:    "The University of Texas at Austin is a public research university and the flagship institution of the University of Texas System.",
	},
	{
		ID:             "2",
		Name:           "Texas A&M University",
		State:          "Texas",
		Lat:            30.6188,
		Lng:            -96.3365,
		Ranking:        25,
		AcceptanceRate: 63.0,
		TuitionMin:     35000,
		TuitionMax:     45000,
		Description:    "Texas A&M University is a public land-grant research university known for its engineering and agriculture programs.",
	},
	{
		ID:             "3",
		Name:           "Rice University",
		State:          "Texas",
		Lat:            29.7174,
		Lng:            -95.4018,
		Ranking:        15,
		AcceptanceRate: 11.0,
		TuitionMin:     52000,
		TuitionMax:     62000,
		Description:    "Rice University is a private research university known for its science and engineering programs.",
	},
	{
		ID:             "4",
		Name:           "University of Oklahoma",
		State:          "Oklahoma",
		Lat:            35.2058,
		Lng:            -97.4451,
		Ranking:        35,
		AcceptanceRate: 80.0,
		TuitionMin:     32000,
		TuitionMax:     42000,
		Description:    "The University of Oklahoma is a public research university known for its meteorology and energy programs.",
	},
	{
		ID:             "5",
		Name:           "Tulane University",
		State:          "Louisiana",
		Lat:            29.9407,
		Lng:            -90.1209,
		Ranking:        30,
		AcceptanceRate: 13.0,
		TuitionMin:     54000,
		TuitionMax:     64000,
		Description:    "Tulane University is a private research university in New Orleans, known for its medical and business programs.",
	},
	{
		ID:             "6",
		Name:           "Louisiana State University",
		State:          "Louisiana",
		Lat:            30.4133,
		Lng:            -91.1800,
		Ranking:        45,
		AcceptanceRate: 75.0,
		TuitionMin:     28000,
		TuitionMax:     38000,
		Description:    "LSU is a public land-grant research university and the flagship institution of Louisiana.",
	},
}

// SampleUniversities returns a copy of the built-in sample set, in its fixed order.
func SampleUniversities() []gateway.University {
	univs := make([]gateway.University, len(samples))
	copy(univs, samples)
	return univs
}
