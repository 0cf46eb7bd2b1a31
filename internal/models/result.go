package models

type MatchRequest struct {
	JobDescription string
	Resume         ResumeInput
}

type RefineRequest struct {
	JobDescription string `json:"job_description" form:"job_description"`
	Goals          string `json:"goals" form:"goals"`
}

type CoverLetterRequest struct {
	JobDescription string `json:"job_description" form:"job_description"`
}

type ImproveRequest struct {
	JobDescription string
	Resume         ResumeInput
}

type MatchResult struct {
	MatchPercentage float64 `json:"match_percentage"`
	Verdict         string  `json:"verdict"`
	Analysis        string  `json:"analysis"`
	UserEmail       string  `json:"user_email"`
	DriveLink       *string `json:"drive_link,omitempty"`
}

type RefinedJobDescription struct {
	RefinedJD string `json:"refined_jd"`
}

type CoverLetter struct {
	CoverLetter string `json:"cover_letter"`
}

type ResumeImprovement struct {
	Strengths   string `json:"strengths"`
	Gaps        string `json:"gaps"`
	Suggestions string `json:"suggestions"`
}

// ErrorResponse carries the message twice: "error" for API clients and
// "detail" for the web client.
type ErrorResponse struct {
	Error       string `json:"error"`
	Detail      string `json:"detail"`
	Kind        string `json:"kind"`
	Code        int    `json:"code"`
	RawResponse string `json:"raw_response,omitempty"`
}
