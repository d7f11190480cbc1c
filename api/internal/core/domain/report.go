package domain

import "time"

// ReportPayload is the plaintext sealed into an exported report.
type ReportPayload struct {
	UserID        string               `json:"userId"`
	Conversations []StoredConversation `json:"conversations"`
	AnalysisCache *UserAnalysisCache   `json:"analysisCache"`
}

// UserAnalysisCache holds the most recent admin analyses for one user.
// Each entry either carries data or, when the analysis failed, only Error.
type UserAnalysisCache struct {
	Trajectory      *TrajectoryAnalysis  `json:"trajectory,omitempty"`
	SkillMatching   *SkillMatchingResult `json:"skillMatching,omitempty"`
	HiddenPotential *HiddenPotential     `json:"hiddenPotential,omitempty"`
}

type ConsultationEntry struct {
	DateTime                 string `json:"dateTime"`
	EstimatedDurationMinutes int    `json:"estimatedDurationMinutes"`
}

type TrajectoryAnalysis struct {
	KeyTakeaways        []string            `json:"keyTakeaways,omitempty"`
	UserID              string              `json:"userId,omitempty"`
	TotalConsultations  int                 `json:"totalConsultations,omitempty"`
	Consultations       []ConsultationEntry `json:"consultations,omitempty"`
	KeyThemes           []string            `json:"keyThemes,omitempty"`
	DetectedStrengths   []string            `json:"detectedStrengths,omitempty"`
	AreasForDevelopment []string            `json:"areasForDevelopment,omitempty"`
	SuggestedNextSteps  []string            `json:"suggestedNextSteps,omitempty"`
	OverallSummary      string              `json:"overallSummary,omitempty"` // Markdown
	Error               string              `json:"error,omitempty"`
}

type RecommendedRole struct {
	Role       string `json:"role"`
	Reason     string `json:"reason"`
	MatchScore int    `json:"matchScore"` // 0-100
}

type SkillToDevelop struct {
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

type LearningResource struct {
	Title string `json:"title"`
	Type  string `json:"type"` // course, book, article, video
	URL   string `json:"url"`
}

type SkillMatchingResult struct {
	AnalysisSummary   string             `json:"analysisSummary,omitempty"` // Markdown
	RecommendedRoles  []RecommendedRole  `json:"recommendedRoles,omitempty"`
	SkillsToDevelop   []SkillToDevelop   `json:"skillsToDevelop,omitempty"`
	LearningResources []LearningResource `json:"learningResources,omitempty"`
	Error             string             `json:"error,omitempty"`
}

type HiddenPotential struct {
	HiddenSkills []SkillToDevelop `json:"hiddenSkills,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Report is the downloadable artifact handed to the caller.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
	Container   string
	CreatedAt   time.Time
}
