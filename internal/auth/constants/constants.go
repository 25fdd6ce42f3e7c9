package constants

const (
	// GrantTypeAuthorizationCode is the only grant this tool redeems
	GrantTypeAuthorizationCode = "authorization_code"

	// ResponseTypeCode is requested from the authorize endpoint
	ResponseTypeCode = "code"

	// Query parameters read from the provider redirect
	CodeQueryParam             = "code"
	StateQueryParam            = "state"
	ErrorQueryParam            = "error"
	ErrorDescriptionQueryParam = "error_description"
)

// AcknowledgePage is served to the browser once the redirect arrived.
const AcknowledgePage = "<html><body><p>Code received. You can close this tab.</p></body></html>"
