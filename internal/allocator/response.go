package allocator

// Response is the invoke envelope shared by the success and failure paths.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       map[string]any    `json:"body"`
	Headers    map[string]string `json:"headers"`
}

// SuccessResponse wraps an allocation result in a 200 envelope.
func SuccessResponse(apiVersion string, result *Result) Response {
	return Response{
		StatusCode: 200,
		Body: map[string]any{
			"AccountName":       result.AccountName,
			"AccountEmail":      result.AccountEmail,
			"AccountType":       result.AccountType,
			"EmailVerification": result.EmailVerification,
		},
		Headers: responseHeaders(apiVersion),
	}
}

// FailureResponse wraps a failure message in a 500 envelope.
func FailureResponse(apiVersion, message string) Response {
	return Response{
		StatusCode: 500,
		Body: map[string]any{
			"message": message,
		},
		Headers: responseHeaders(apiVersion),
	}
}

func responseHeaders(apiVersion string) map[string]string {
	if apiVersion == "" {
		apiVersion = "<UNKNOWN>"
	}
	return map[string]string{"x-api-version": apiVersion}
}
