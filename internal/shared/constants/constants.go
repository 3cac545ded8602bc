package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	HeaderContentType = "Content-Type"
	HeaderXRequestID  = "X-Request-ID"
	HeaderAdminToken  = "X-Admin-Token"

	ContentTypeJSON = "application/json"

	ContextKeyRequestID = "request_id"

	TableMembers  = "members"
	TablePayments = "payments"
	TablePlans    = "plans"
)
