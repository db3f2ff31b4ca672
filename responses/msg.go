package responses

type Message struct {
	Type    string `json:"type"` // "error", etc
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"` // application-level logic code
}

// Application-level codes of error Messages
const (
	CodeValidation     = 1001
	CodeTemplateAbsent = 1002
	CodeRemoteAuth     = 1003
	CodeRemoteFailure  = 1004
	CodeArchiveMissing = 1005
)
