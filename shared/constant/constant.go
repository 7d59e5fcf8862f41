package constant

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyUserID     contextKey = "user_id"
	ContextKeyUserEmail  contextKey = "user_email"
	ContextKeyUserRole   contextKey = "user_role"
	ContextKeyUserCampus contextKey = "user_campus"
	ContextKeyTokenID    contextKey = "token_id"
)

const (
	RoleStudent         = "student"
	RoleLecturer        = "lecturer"
	RoleAdmin           = "admin"
	RoleFacilityManager = "facility_manager"
)

const (
	CampusHCM = "HCM"
	CampusNVH = "NVH"
)

const (
	RequestParamPage    = "page"
	RequestParamLimit   = "limit"
	RequestParamSortBy  = "sort_by"
	RequestParamSortDir = "sort_dir"
)

const (
	RequestParamID     = "id"
	RequestParamDate   = "date"
	RequestParamDays   = "days"
	RequestParamCampus = "campus"
	RequestParamStatus = "status"
	RequestParamSearch = "search"

	RequestMaxMemory = 10 << 20 // 10 MB
)

const (
	DefaultValuePage  = 1
	DefaultValueLimit = 10
)

const (
	// DateFormat is the wire format this service emits.
	DateFormat     = "2006-01-02T15:04:05Z07:00"
	DayFormat      = "2006-01-02"
	ClockFormat    = "15:04"
	// BackendLegacyFormat is the locale-specific timestamp format some booking
	// core endpoints still emit. Tried before RFC3339 when parsing.
	BackendLegacyFormat = "02/01/2006 15:04:05"
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelUpstreamScopeName   = "upstream"
	OtelS3ScopeName         = "s3"

	OtelQueryAttributeKey = "query"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderRequestID          = "X-Request-ID"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
	RequestHeaderAPIKey             = "X-API-Key"
)

const (
	ContentTypeJSON              = "application/json"
	ContentTypeMultipartFormData = "multipart/form-data"
	FormFieldImages              = "images"
	FormFieldNote                = "note"

	// EvidencePhotoRules validates each uploaded check-in/out photo.
	EvidencePhotoRules = "mimetypes=image/jpeg image/png image/webp,maxfilesize=10"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

const (
	Asterix = "*"
	Empty   = ""
)
