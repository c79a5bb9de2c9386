package scorecard

var scoreDescriptions = [MaxScore + 1]string{
	"N/A",
	"Issue identified, but no plans for further actions",
	"Issue identified, starts planning further actions",
	"Action plan with clear targets and deadlines in place",
	"Action plan operational - some progress in established targets",
	"Action plan operational - achieving the target set",
}

// ScoreDescription returns the rubric text for a 0..5 score.
func ScoreDescription(score int) string {
	if score < MinScore || score > MaxScore {
		return "Unknown"
	}
	return scoreDescriptions[score]
}

var goalDescriptions = [NumGoals]string{
	"No Poverty",
	"Zero Hunger",
	"Good Health & Well-being",
	"Ensure inclusive and equitable quality education and promote lifelong learning opportunities for all",
	"Gender Equality",
	"Clean Water & Sanitation",
	"Affordable and Clean Energy",
	"Decent Work & Economic Growth",
	"Build resilient infrastructure, promote inclusive and sustainable industrialization and foster innovation",
	"Reduce inequality within and among countries",
	"Make cities and human settlements inclusive, safe, resilient and sustainable",
	"Ensure sustainable consumption and production patterns",
	"Climate Action",
	"Life Below Water",
	"Life on Land",
	"Peace, Justice and Strong Institutions",
	"Partnerships for the Goals",
}

// GoalDescription returns the canonical SDG title, or "" out of range.
func GoalDescription(goal int) string {
	if goal < MinGoal || goal > MaxGoal {
		return ""
	}
	return goalDescriptions[goal-MinGoal]
}
