package report

// Labels are the visible strings of the viewer. They are also handed to the
// inline script as a JSON object, so field names double as script keys.
type Labels struct {
	DocumentTitle       string
	FormTitle           string
	FormHint            string
	PasswordPlaceholder string
	Submit              string
	Decrypting          string
	DecryptError        string
	ReportTitle         string
	UserID              string
	GeneratedAt         string
	AnalysisHeading     string
	Trajectory          string
	SkillMatching       string
	HiddenPotential     string
	History             string
	ConsultedAt         string
	Assistant           string
	Summary             string
}

var locales = map[string]Labels{
	"ja": {
		DocumentTitle:       "暗号化された相談レポート",
		FormTitle:           "レポート閲覧",
		FormHint:            "このレポートは暗号化されています。閲覧するにはパスワードを入力してください。",
		PasswordPlaceholder: "パスワード",
		Submit:              "閲覧する",
		Decrypting:          "復号中...",
		DecryptError:        "パスワードが違うか、データが破損しています。",
		ReportTitle:         "相談者レポート",
		UserID:              "相談者ID",
		GeneratedAt:         "作成日時",
		AnalysisHeading:     "分析レポート",
		Trajectory:          "相談の軌跡",
		SkillMatching:       "適性診断",
		HiddenPotential:     "隠れた可能性",
		History:             "対話履歴",
		ConsultedAt:         "相談日時",
		Assistant:           "担当AI",
		Summary:             "相談サマリー",
	},
	"en": {
		DocumentTitle:       "Encrypted consultation report",
		FormTitle:           "View report",
		FormHint:            "This report is encrypted. Enter the password to view it.",
		PasswordPlaceholder: "Password",
		Submit:              "View",
		Decrypting:          "Decrypting...",
		DecryptError:        "Password incorrect or data corrupted.",
		ReportTitle:         "Client report",
		UserID:              "Client ID",
		GeneratedAt:         "Generated",
		AnalysisHeading:     "Analysis",
		Trajectory:          "Consultation trajectory",
		SkillMatching:       "Skill matching",
		HiddenPotential:     "Hidden potential",
		History:             "Conversation history",
		ConsultedAt:         "Consulted at",
		Assistant:           "Assistant",
		Summary:             "Session summary",
	},
}

// SupportedLocale reports whether the viewer has labels for lang.
func SupportedLocale(lang string) bool {
	_, ok := locales[lang]
	return ok
}
