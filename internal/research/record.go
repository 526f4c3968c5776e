package research

// CompanyResearch is the structured result of researching a company URL.
// LangfusePrompt holds the complete chatbot system prompt with every
// placeholder already filled in.
type CompanyResearch struct {
	CompanyName     string   `json:"companyName"`
	Industry        string   `json:"industry"`
	Services        string   `json:"services"`
	TargetCustomers string   `json:"targetCustomers"`
	CommonQuestions []string `json:"commonQuestions"`
	BrandTone       string   `json:"brandTone"`
	PrimaryColor    string   `json:"primaryColor"`
	LangfusePrompt  string   `json:"langfusePrompt"`
}

// RequiredFields are the keys a research reply must carry, non-blank.
var RequiredFields = []string{"companyName", "industry", "langfusePrompt"}
